/* Copyright 2025 Daylily Catalog Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/daylilycatalog/catalog/pkg/clock"
	"github.com/daylilycatalog/catalog/pkg/prompt"
	"github.com/daylilycatalog/catalog/pkg/server/app"
	"github.com/daylilycatalog/catalog/pkg/server/config"
	"github.com/daylilycatalog/catalog/pkg/server/database"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const dbPathUsage = "Path to SQLite database file or postgres:// DSN (env: DBPath, default: $XDG_DATA_HOME/catalog/server.db)"

func initDB(dsn string) (*gorm.DB, error) {
	db, err := database.Open(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err := database.InitSchema(db); err != nil {
		return nil, errors.Wrap(err, "initializing schema")
	}
	if err := database.Migrate(db); err != nil {
		return nil, errors.Wrap(err, "running migrations")
	}

	return db, nil
}

func initApp(cfg config.Config) (app.App, error) {
	db, err := initDB(cfg.DBPath)
	if err != nil {
		return app.App{}, err
	}

	return app.App{
		DB:               db,
		Clock:            clock.New(),
		Retention:        cfg.Retention,
		Port:             cfg.Port,
		DisableRateLimit: cfg.DisableRateLimit,
	}, nil
}

// loadEnv loads the dotenv file of the working directory and exits on failure
func loadEnv() {
	if err := config.LoadEnvFile(config.DefaultEnvFile); err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
}

// printFlags prints flags with -- prefix for consistency with CLI
func printFlags(fs *flag.FlagSet) {
	fs.VisitAll(func(f *flag.Flag) {
		fmt.Printf("  --%s", f.Name)

		name, usage := flag.UnquoteUsage(f)
		if name != "" {
			fmt.Printf(" %s", name)
		}
		fmt.Println()

		if usage != "" {
			fmt.Printf("    \t%s", usage)
			if f.DefValue != "" && f.DefValue != "false" {
				fmt.Printf(" (default: %s)", f.DefValue)
			}
			fmt.Println()
		}
	})
}

// setupFlagSet creates a FlagSet with standard usage format
func setupFlagSet(name, usageCmd string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Printf(`Usage:
  %s [flags]

Flags:
`, usageCmd)
		printFlags(fs)
	}
	return fs
}

// requireString validates that a required string flag is not empty
func requireString(fs *flag.FlagSet, value, fieldName string) {
	if value == "" {
		fmt.Printf("Error: %s is required\n", fieldName)
		fs.Usage()
		os.Exit(1)
	}
}

// setupAppWithDB creates config, initializes app, and returns cleanup function
func setupAppWithDB(fs *flag.FlagSet, dbPath string) (*app.App, func()) {
	cfg, err := config.New(config.Params{
		DBPath: dbPath,
	})
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		fs.Usage()
		os.Exit(1)
	}

	a, err := initApp(cfg)
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}

	cleanup := func() {
		database.Close(a.DB)
	}

	return &a, cleanup
}

// confirm prompts for user input to confirm a choice
func confirm(r io.Reader, question string, optimistic bool) (bool, error) {
	message := prompt.FormatQuestion(question, optimistic)
	fmt.Print(message + " ")

	confirmed, err := prompt.ReadYesNo(r, optimistic)
	if err != nil {
		return false, errors.Wrap(err, "reading stdin")
	}

	return confirmed, nil
}

// printSubcommands prints the usage of a command group and exits
func printSubcommands(usage string) {
	fmt.Println(usage)
	os.Exit(1)
}
