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
	"fmt"
	"io"
	"os"

	"github.com/daylilycatalog/catalog/pkg/server/config"
	"github.com/daylilycatalog/catalog/pkg/server/database"
	"github.com/daylilycatalog/catalog/pkg/server/job"
	"github.com/daylilycatalog/catalog/pkg/server/log"
)

// expungeCmd runs the expunge job once
func expungeCmd(args []string) {
	runExpunge(args, os.Stdout)
}

func runExpunge(args []string, w io.Writer) {
	loadEnv()

	fs := setupFlagSet("expunge", "catalog-server expunge")

	dbPath := fs.String("dbPath", "", dbPathUsage)
	retention := fs.String("retention", "", "How long deleted rows stay visible to sync, as a duration or a number of days (env: RETENTION, default: 30)")

	fs.Parse(args)

	cfg, err := config.New(config.Params{
		DBPath:    *dbPath,
		Retention: *retention,
	})
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		fs.Usage()
		os.Exit(1)
	}

	a, err := initApp(cfg)
	if err != nil {
		log.ErrorWrap(err, "initializing app")
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(a.DB); err != nil {
			log.ErrorWrap(err, "closing database")
		}
	}()

	runner, err := job.NewRunner(&a)
	if err != nil {
		log.ErrorWrap(err, "initializing job runner")
		os.Exit(1)
	}

	removed, err := runner.Expunge()
	if err != nil {
		log.ErrorWrap(err, "expunging")
		os.Exit(1)
	}

	var total int64
	for _, n := range removed {
		total += n
	}
	fmt.Fprintf(w, "Expunged %d rows deleted before the last %s\n", total, cfg.Retention)
}
