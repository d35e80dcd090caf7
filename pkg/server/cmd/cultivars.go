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

	"github.com/daylilycatalog/catalog/pkg/server/app"
	"github.com/daylilycatalog/catalog/pkg/server/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// readCultivarFile reads a YAML sequence of registry entries
func readCultivarFile(path string) ([]app.CultivarParams, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	var params []app.CultivarParams
	if err := yaml.UnmarshalStrict(b, &params); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	return params, nil
}

func cultivarsImportCmd(args []string, w io.Writer) {
	fs := setupFlagSet("import", "catalog-server cultivars import")

	file := fs.String("file", "", "Path to a YAML file listing cultivar references (required)")
	dbPath := fs.String("dbPath", "", dbPathUsage)

	fs.Parse(args)

	requireString(fs, *file, "file")

	params, err := readCultivarFile(*file)
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}

	a, cleanup := setupAppWithDB(fs, *dbPath)
	defer cleanup()

	result, err := a.ImportCultivarReferences(params)
	if err != nil {
		if app.IsValidationError(err) {
			fmt.Printf("Error: %s\n", err)
		} else {
			log.ErrorWrap(err, "importing cultivar references")
		}
		os.Exit(1)
	}

	fmt.Fprintf(w, "Imported %d cultivar references\n", len(params))
	fmt.Fprintf(w, "Created: %d, updated: %d, unchanged: %d\n", result.Created, result.Updated, result.Unchanged)
}

func cultivarsRemoveCmd(args []string, stdin io.Reader) {
	fs := setupFlagSet("remove", "catalog-server cultivars remove")

	name := fs.String("name", "", "Cultivar name (required)")
	dbPath := fs.String("dbPath", "", dbPathUsage)

	fs.Parse(args)

	requireString(fs, *name, "name")

	a, cleanup := setupAppWithDB(fs, *dbPath)
	defer cleanup()

	ok, err := confirm(stdin, fmt.Sprintf("Remove cultivar %s from the registry?", *name), false)
	if err != nil {
		log.ErrorWrap(err, "getting confirmation")
		os.Exit(1)
	}
	if !ok {
		fmt.Println("Aborted by user")
		return
	}

	if err := a.DeleteCultivarReference(*name); err != nil {
		if errors.Is(err, app.ErrNotFound) {
			fmt.Printf("Error: cultivar %s not found\n", *name)
		} else {
			log.ErrorWrap(err, "removing cultivar reference")
		}
		os.Exit(1)
	}

	fmt.Printf("Cultivar removed successfully\n")
}

const cultivarsUsage = `Usage:
  catalog-server cultivars [command]

Available commands:
  import: Create or update cultivar references from a YAML file
  remove: Remove a cultivar reference`

func cultivarsCmd(args []string) {
	if len(args) < 1 {
		printSubcommands(cultivarsUsage)
	}

	switch args[0] {
	case "import":
		cultivarsImportCmd(args[1:], os.Stdout)
	case "remove":
		cultivarsRemoveCmd(args[1:], os.Stdin)
	default:
		fmt.Printf("Unknown subcommand: %s\n\n", args[0])
		printSubcommands(cultivarsUsage)
	}
}
