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

// Package cultivars implements the cultivars command
package cultivars

import (
	"github.com/daylilycatalog/catalog/pkg/cli/context"
	"github.com/daylilycatalog/catalog/pkg/cli/infra"
	"github.com/daylilycatalog/catalog/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewCmd returns a new cultivars command
func NewCmd(ctx context.CatalogCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cultivars",
		Short: "Look up cultivar registry data",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "show <id>...",
		Short:   "Show cultivar references",
		Example: "  catalog cultivars show 8d21 77c0",
		Args:    cobra.MinimumNArgs(1),
		RunE:    newShow(ctx),
	})

	return cmd
}

func newShow(ctx context.CatalogCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		s, err := infra.NewSession(ctx)
		if err != nil {
			return err
		}

		if err := s.Cultivars.Hydrate(cmd.Context(), args); err != nil {
			return errors.Wrap(err, "fetching cultivar references")
		}

		for _, id := range args {
			c, ok := s.Cultivars.Get(id)
			if !ok {
				return errors.Errorf("cultivar %s not found", id)
			}

			output.CultivarInfo(c)
		}

		return nil
	}
}
