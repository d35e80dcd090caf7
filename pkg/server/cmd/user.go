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
	"time"

	"github.com/daylilycatalog/catalog/pkg/server/app"
	"github.com/daylilycatalog/catalog/pkg/server/log"
	"github.com/pkg/errors"
)

func userCreateCmd(args []string) {
	fs := setupFlagSet("create", "catalog-server user create")

	email := fs.String("email", "", "User email address (required)")
	dbPath := fs.String("dbPath", "", dbPathUsage)

	fs.Parse(args)

	requireString(fs, *email, "email")

	a, cleanup := setupAppWithDB(fs, *dbPath)
	defer cleanup()

	user, err := a.CreateUser(*email)
	if err != nil {
		if errors.Is(err, app.ErrDuplicateEmail) || errors.Is(err, app.ErrEmailRequired) {
			fmt.Printf("Error: %s\n", err)
		} else {
			log.ErrorWrap(err, "creating user")
		}
		os.Exit(1)
	}

	fmt.Printf("User created successfully\n")
	fmt.Printf("ID: %s\n", user.ID)
	fmt.Printf("Email: %s\n", user.Email)
}

// userSessionCmd issues a session key on behalf of the identity provider
func userSessionCmd(args []string, w io.Writer) {
	fs := setupFlagSet("session", "catalog-server user session")

	email := fs.String("email", "", "User email address (required)")
	dbPath := fs.String("dbPath", "", dbPathUsage)

	fs.Parse(args)

	requireString(fs, *email, "email")

	a, cleanup := setupAppWithDB(fs, *dbPath)
	defer cleanup()

	user, err := a.GetUserByEmail(*email)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			fmt.Printf("Error: user with email %s not found\n", *email)
		} else {
			log.ErrorWrap(err, "finding user")
		}
		os.Exit(1)
	}

	session, err := a.CreateSession(user.ID)
	if err != nil {
		log.ErrorWrap(err, "creating session")
		os.Exit(1)
	}

	fmt.Fprintf(w, "Session key: %s\n", session.Key)
	fmt.Fprintf(w, "Expires at: %s\n", session.ExpiresAt.Format(time.RFC3339))
}

func userRemoveCmd(args []string, stdin io.Reader) {
	fs := setupFlagSet("remove", "catalog-server user remove")

	email := fs.String("email", "", "User email address (required)")
	dbPath := fs.String("dbPath", "", dbPathUsage)

	fs.Parse(args)

	requireString(fs, *email, "email")

	a, cleanup := setupAppWithDB(fs, *dbPath)
	defer cleanup()

	_, err := a.GetUserByEmail(*email)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			fmt.Printf("Error: user with email %s not found\n", *email)
		} else {
			log.ErrorWrap(err, "finding user")
		}
		os.Exit(1)
	}

	ok, err := confirm(stdin, fmt.Sprintf("Remove user %s?", *email), false)
	if err != nil {
		log.ErrorWrap(err, "getting confirmation")
		os.Exit(1)
	}
	if !ok {
		fmt.Println("Aborted by user")
		return
	}

	if err := a.RemoveUser(*email); err != nil {
		if errors.Is(err, app.ErrNotFound) {
			fmt.Printf("Error: user with email %s not found\n", *email)
		} else if errors.Is(err, app.ErrUserHasExistingResources) {
			fmt.Printf("Error: %s\n", err)
		} else {
			log.ErrorWrap(err, "removing user")
		}
		os.Exit(1)
	}

	fmt.Printf("User removed successfully\n")
	fmt.Printf("Email: %s\n", *email)
}

const userUsage = `Usage:
  catalog-server user [command]

Available commands:
  create: Create a new user
  session: Issue a session key for a user
  remove: Remove a user (only if they have no listings, lists or images)`

func userCmd(args []string) {
	if len(args) < 1 {
		printSubcommands(userUsage)
	}

	subcommand := args[0]
	subArgs := args[1:]

	switch subcommand {
	case "create":
		userCreateCmd(subArgs)
	case "session":
		userSessionCmd(subArgs, os.Stdout)
	case "remove":
		userRemoveCmd(subArgs, os.Stdin)
	default:
		fmt.Printf("Unknown subcommand: %s\n\n", subcommand)
		printSubcommands(userUsage)
	}
}
