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

// Package root defines the root command of the catalog cli
package root

import (
	"context"

	"github.com/spf13/cobra"
)

var dbPathFlag string
var apiEndpointFlag string

var root = &cobra.Command{
	Use:           "catalog",
	Short:         "catalog - manage a daylily catalog from the command line",
	SilenceErrors: true,
	SilenceUsage:  true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func init() {
	f := root.PersistentFlags()
	f.StringVar(&dbPathFlag, "dbPath", "", "the path to the database file (defaults to standard location)")
	f.StringVar(&apiEndpointFlag, "apiEndpoint", "", "API endpoint to connect to (defaults to value in config)")
}

// GetRoot returns the root command
func GetRoot() *cobra.Command {
	return root
}

// Register adds new commands
func Register(cmds ...*cobra.Command) {
	root.AddCommand(cmds...)
}

// Execute runs the main command
func Execute(ctx context.Context) error {
	return root.ExecuteContext(ctx)
}
