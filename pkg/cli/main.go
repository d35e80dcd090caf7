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

package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/daylilycatalog/catalog/pkg/cli/infra"
	"github.com/daylilycatalog/catalog/pkg/cli/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	// commands
	"github.com/daylilycatalog/catalog/pkg/cli/cmd/cultivars"
	"github.com/daylilycatalog/catalog/pkg/cli/cmd/images"
	"github.com/daylilycatalog/catalog/pkg/cli/cmd/listings"
	"github.com/daylilycatalog/catalog/pkg/cli/cmd/lists"
	"github.com/daylilycatalog/catalog/pkg/cli/cmd/login"
	"github.com/daylilycatalog/catalog/pkg/cli/cmd/logout"
	"github.com/daylilycatalog/catalog/pkg/cli/cmd/root"
	"github.com/daylilycatalog/catalog/pkg/cli/cmd/sync"
	"github.com/daylilycatalog/catalog/pkg/cli/cmd/version"
)

// apiEndpoint and versionTag are populated during link time
var apiEndpoint string
var versionTag = "master"

// parseFlag extracts the value of a global flag from command line arguments
// regardless of where it appears. It returns an empty string if the flag is
// absent.
func parseFlag(args []string, name string) string {
	long := "--" + name
	for i, arg := range args {
		if strings.HasPrefix(arg, long+"=") {
			return strings.TrimPrefix(arg, long+"=")
		}
		if arg == long && i+1 < len(args) {
			return args[i+1]
		}
	}

	return ""
}

func main() {
	// the context is built before cobra parses flags
	args := os.Args[1:]

	ctx, err := infra.Init(versionTag, apiEndpoint, parseFlag(args, "dbPath"))
	if err != nil {
		panic(errors.Wrap(err, "initializing context"))
	}
	defer ctx.DB.Close()

	if ep := parseFlag(args, "apiEndpoint"); ep != "" {
		ctx.APIEndpoint = ep
	}

	root.Register(
		login.NewCmd(*ctx),
		logout.NewCmd(*ctx),
		sync.NewCmd(*ctx),
		listings.NewCmd(*ctx),
		lists.NewCmd(*ctx),
		images.NewCmd(*ctx),
		cultivars.NewCmd(*ctx),
		version.NewCmd(*ctx),
	)

	c, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = root.Execute(c)
	stop()

	if err != nil {
		log.Errorf("%s\n", err.Error())
		ctx.DB.Close()
		os.Exit(1)
	}
}
