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

// Package sync implements the sync command
package sync

import (
	"sort"

	"github.com/daylilycatalog/catalog/pkg/cli/catalog"
	"github.com/daylilycatalog/catalog/pkg/cli/context"
	"github.com/daylilycatalog/catalog/pkg/cli/infra"
	"github.com/daylilycatalog/catalog/pkg/cli/log"
	"github.com/daylilycatalog/catalog/pkg/cli/output"
	"github.com/daylilycatalog/catalog/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  catalog sync

  * Discard the local state and download everything again
  catalog sync --full

  * Sync only some kinds
  catalog sync listings lists`

var isFullSync bool
var yesFlag bool

// NewCmd returns a new sync command
func NewCmd(ctx context.CatalogCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sync [kind...]",
		Aliases: []string{"s"},
		Short:   "Sync the catalog with the server",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVarP(&isFullSync, "full", "f", false, "re-seed instead of syncing only the changed rows")
	f.BoolVarP(&yesFlag, "yes", "y", false, "skip the confirmation of a full sync")

	return cmd
}

func confirmFullSync() (bool, error) {
	if yesFlag {
		return true, nil
	}

	return ui.Confirm("A full sync replaces the local catalog with the server's. Continue?", false)
}

// warnDangling reports list members that do not resolve to a listing
func warnDangling(s *catalog.Session) {
	dangling := s.Membership.Dangling()

	listIDs := make([]string, 0, len(dangling))
	for id := range dangling {
		listIDs = append(listIDs, id)
	}
	sort.Strings(listIDs)

	for _, id := range listIDs {
		log.Warnf("list %s refers to missing listings %v\n", id, dangling[id])
	}
}

func newRun(ctx context.CatalogCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		s, err := infra.NewSession(ctx)
		if err != nil {
			return err
		}

		if isFullSync {
			ok, err := confirmFullSync()
			if err != nil {
				return errors.Wrap(err, "getting confirmation")
			}
			if !ok {
				log.Warnf("aborted by user\n")
				return nil
			}

			if err := s.Reseed(cmd.Context(), args...); err != nil {
				return errors.Wrap(err, "re-seeding")
			}
		} else {
			if err := s.Sync(cmd.Context(), args...); err != nil {
				return errors.Wrap(err, "syncing")
			}
		}

		now := ctx.Clock.Now()
		if err := infra.SaveLastSyncAt(ctx, now); err != nil {
			return errors.Wrap(err, "saving last sync time")
		}

		warnDangling(s)

		log.Successf("synced %d listings, %d lists, %d images\n",
			s.Listings.Collection().Len(), s.Lists.Collection().Len(), s.Images.Collection().Len())
		output.LastSync(now)

		return nil
	}
}
