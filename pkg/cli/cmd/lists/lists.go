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

// Package lists implements the lists command
package lists

import (
	"github.com/daylilycatalog/catalog/pkg/cli/client"
	"github.com/daylilycatalog/catalog/pkg/cli/context"
	"github.com/daylilycatalog/catalog/pkg/cli/infra"
	"github.com/daylilycatalog/catalog/pkg/cli/log"
	"github.com/daylilycatalog/catalog/pkg/cli/output"
	"github.com/daylilycatalog/catalog/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  * Create a list
  catalog lists add --title "Spiders"

  * Add a listing to a list
  catalog lists add-listing 9a2e 3f1c

  * Show the listings of a list
  catalog lists show 9a2e`

var (
	titleFlag       string
	descriptionFlag string
)

// NewCmd returns a new lists command
func NewCmd(ctx context.CatalogCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lists",
		Short:   "Manage lists of listings",
		Example: example,
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Create a list",
		Args:  cobra.NoArgs,
		RunE:  newAdd(ctx),
	}
	f := add.Flags()
	f.StringVarP(&titleFlag, "title", "t", "", "the title of the list")
	f.StringVarP(&descriptionFlag, "description", "d", "", "the description of the list")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "ls",
			Short: "List the lists",
			Args:  cobra.NoArgs,
			RunE:  newLs(ctx),
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show the listings of a list",
			Args:  cobra.ExactArgs(1),
			RunE:  newShow(ctx),
		},
		add,
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Remove a list",
			Args:  cobra.ExactArgs(1),
			RunE:  newRm(ctx),
		},
		&cobra.Command{
			Use:   "add-listing <list id> <listing id>",
			Short: "Add a listing to a list",
			Args:  cobra.ExactArgs(2),
			RunE:  newAddListing(ctx),
		},
		&cobra.Command{
			Use:   "rm-listing <list id> <listing id>",
			Short: "Remove a listing from a list",
			Args:  cobra.ExactArgs(2),
			RunE:  newRmListing(ctx),
		},
	)

	return cmd
}

func newLs(ctx context.CatalogCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		s, err := infra.OpenSession(cmd.Context(), ctx, client.KindLists)
		if err != nil {
			return err
		}

		for _, l := range s.Lists.All() {
			output.ListRow(l)
		}

		return nil
	}
}

func newShow(ctx context.CatalogCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		s, err := infra.OpenSession(cmd.Context(), ctx, client.KindLists, client.KindListings)
		if err != nil {
			return err
		}

		l, ok := s.Lists.Get(args[0])
		if !ok {
			return errors.Errorf("list %s not found", args[0])
		}

		members, err := s.Membership.Members(l.ID)
		if err != nil {
			return errors.Wrap(err, "getting members")
		}

		output.ListRow(l)
		for _, m := range members {
			output.ListingRow(m)
		}
		if missing := len(l.Listings) - len(members); missing > 0 {
			log.Warnf("%d listings of this list are not available locally\n", missing)
		}

		return nil
	}
}

func newAdd(ctx context.CatalogCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate.Title(titleFlag); err != nil {
			return err
		}

		s, err := infra.OpenSession(cmd.Context(), ctx, client.KindLists)
		if err != nil {
			return err
		}

		l, err := s.Lists.Insert(cmd.Context(), client.ListInput{Title: titleFlag, Description: descriptionFlag})
		if err != nil {
			return errors.Wrap(err, "creating list")
		}

		log.Successf("created list %s\n", l.ID)

		return nil
	}
}

func newRm(ctx context.CatalogCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		s, err := infra.OpenSession(cmd.Context(), ctx, client.KindLists)
		if err != nil {
			return err
		}

		if err := s.Lists.Delete(cmd.Context(), args[0]); err != nil {
			return errors.Wrap(err, "removing list")
		}

		log.Successf("removed list %s\n", args[0])

		return nil
	}
}

func newAddListing(ctx context.CatalogCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		s, err := infra.OpenSession(cmd.Context(), ctx, client.KindLists, client.KindListings)
		if err != nil {
			return err
		}

		if _, ok := s.Listings.Get(args[1]); !ok {
			return errors.Errorf("listing %s not found", args[1])
		}

		l, err := s.Membership.AddListing(cmd.Context(), args[0], args[1])
		if err != nil {
			return errors.Wrap(err, "adding listing to list")
		}

		output.ListRow(l)

		return nil
	}
}

func newRmListing(ctx context.CatalogCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		s, err := infra.OpenSession(cmd.Context(), ctx, client.KindLists)
		if err != nil {
			return err
		}

		l, err := s.Membership.RemoveListing(cmd.Context(), args[0], args[1])
		if err != nil {
			return errors.Wrap(err, "removing listing from list")
		}

		output.ListRow(l)

		return nil
	}
}
