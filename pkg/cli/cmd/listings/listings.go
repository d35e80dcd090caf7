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

// Package listings implements the listings command
package listings

import (
	"github.com/daylilycatalog/catalog/pkg/cli/client"
	"github.com/daylilycatalog/catalog/pkg/cli/context"
	"github.com/daylilycatalog/catalog/pkg/cli/infra"
	"github.com/daylilycatalog/catalog/pkg/cli/log"
	"github.com/daylilycatalog/catalog/pkg/cli/output"
	"github.com/daylilycatalog/catalog/pkg/cli/ui"
	"github.com/daylilycatalog/catalog/pkg/cli/utils/diff"
	"github.com/daylilycatalog/catalog/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  * List the listings
  catalog listings ls

  * Add a listing
  catalog listings add --title "Ruby Spider" --price 25

  * Edit the description of a listing in an editor
  catalog listings edit 3f1c

  * Publish a listing
  catalog listings edit 3f1c --status published`

var (
	titleFlag       string
	descriptionFlag string
	priceFlag       float64
	cultivarFlag    string
	statusFlag      string
	yesFlag         bool
)

// NewCmd returns a new listings command
func NewCmd(ctx context.CatalogCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "listings",
		Aliases: []string{"l"},
		Short:   "Manage listings",
		Example: example,
	}

	ls := &cobra.Command{
		Use:   "ls",
		Short: "List the listings",
		Args:  cobra.NoArgs,
		RunE:  newLs(ctx),
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a listing with its cultivar and images",
		Args:  cobra.ExactArgs(1),
		RunE:  newShow(ctx),
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a listing",
		Args:  cobra.NoArgs,
		RunE:  newAdd(ctx),
	}
	addFlags(add)

	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a listing. Opens an editor on the description when no flag is given",
		Args:  cobra.ExactArgs(1),
		RunE:  newEdit(ctx),
	}
	addFlags(edit)

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a listing",
		Args:  cobra.ExactArgs(1),
		RunE:  newRm(ctx),
	}
	rm.Flags().BoolVarP(&yesFlag, "yes", "y", false, "skip the confirmation")

	cmd.AddCommand(ls, show, add, edit, rm)

	return cmd
}

func addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&titleFlag, "title", "t", "", "the title of the listing")
	f.StringVarP(&descriptionFlag, "description", "d", "", "the description of the listing")
	f.Float64VarP(&priceFlag, "price", "p", 0, "the price of the listing")
	f.StringVar(&cultivarFlag, "cultivar", "", "the id of the cultivar reference")
	f.StringVar(&statusFlag, "status", "", "the status of the listing")
}

// buildPatch returns a patch holding the flags that were set
func buildPatch(cmd *cobra.Command) (client.ListingPatch, bool, error) {
	var p client.ListingPatch
	f := cmd.Flags()

	if f.Changed("title") {
		if err := validate.Title(titleFlag); err != nil {
			return p, false, err
		}
		p.Title = &titleFlag
	}
	if f.Changed("description") {
		p.Description = &descriptionFlag
	}
	if f.Changed("price") {
		if err := validate.Price(priceFlag); err != nil {
			return p, false, err
		}
		p.Price = &priceFlag
	}
	if f.Changed("cultivar") {
		p.CultivarReferenceID = &cultivarFlag
	}
	if f.Changed("status") {
		if err := validate.ListingStatus(statusFlag); err != nil {
			return p, false, err
		}
		p.Status = &statusFlag
	}

	changed := p.Title != nil || p.Description != nil || p.Price != nil || p.CultivarReferenceID != nil || p.Status != nil
	return p, changed, nil
}

func newLs(ctx context.CatalogCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		s, err := infra.OpenSession(cmd.Context(), ctx, client.KindListings)
		if err != nil {
			return err
		}

		for _, l := range s.Listings.All() {
			output.ListingRow(l)
		}

		return nil
	}
}

func newShow(ctx context.CatalogCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		s, err := infra.OpenSession(cmd.Context(), ctx, client.KindListings, client.KindImages)
		if err != nil {
			return err
		}

		l, ok := s.Listings.Get(args[0])
		if !ok {
			return errors.Errorf("listing %s not found", args[0])
		}

		var ref *client.CultivarReference
		c, ok, err := s.Listings.Cultivar(cmd.Context(), l)
		if err != nil {
			return errors.Wrap(err, "getting cultivar reference")
		}
		if ok {
			ref = &c
		}

		output.ListingInfo(l, ref, s.Images.ForListing(l.ID))

		return nil
	}
}

func newAdd(ctx context.CatalogCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("title") {
			return errors.New("--title is required")
		}

		p, _, err := buildPatch(cmd)
		if err != nil {
			return err
		}

		s, err := infra.OpenSession(cmd.Context(), ctx, client.KindListings)
		if err != nil {
			return err
		}

		input := client.ListingInput{
			Title:               titleFlag,
			Description:         descriptionFlag,
			Price:               p.Price,
			CultivarReferenceID: p.CultivarReferenceID,
			Status:              statusFlag,
		}

		l, err := s.Listings.Insert(cmd.Context(), input)
		if err != nil {
			return errors.Wrap(err, "adding listing")
		}

		log.Successf("added listing %s\n", l.ID)
		output.ListingRow(l)

		return nil
	}
}

func newEdit(ctx context.CatalogCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		patch, changed, err := buildPatch(cmd)
		if err != nil {
			return err
		}

		s, err := infra.OpenSession(cmd.Context(), ctx, client.KindListings)
		if err != nil {
			return err
		}

		prev, ok := s.Listings.Get(args[0])
		if !ok {
			return errors.Errorf("listing %s not found", args[0])
		}

		if !changed {
			desc, err := ui.GetEditorInput(ctx, prev.Description)
			if err != nil {
				return errors.Wrap(err, "getting editor input")
			}
			patch.Description = &desc
		}

		l, err := s.Listings.Update(cmd.Context(), prev.ID, patch)
		if err != nil {
			return errors.Wrap(err, "editing listing")
		}

		lines := diff.Lines(prev.Description, l.Description)
		if diff.Changed(lines) {
			printDiff(lines)
		}
		log.Successf("edited listing %s\n", l.ID)

		return nil
	}
}

func printDiff(lines []diff.Line) {
	for _, line := range lines {
		switch line.Op {
		case diff.Insert:
			log.Plainf("%s\n", log.ColorGreen.Sprintf("+ %s", line.Text))
		case diff.Delete:
			log.Plainf("%s\n", log.ColorRed.Sprintf("- %s", line.Text))
		default:
			log.Plainf("  %s\n", line.Text)
		}
	}
}

func newRm(ctx context.CatalogCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		s, err := infra.OpenSession(cmd.Context(), ctx, client.KindListings, client.KindLists, client.KindImages)
		if err != nil {
			return err
		}

		l, ok := s.Listings.Get(args[0])
		if !ok {
			return errors.Errorf("listing %s not found", args[0])
		}

		if !yesFlag {
			output.ListingRow(l)
			ok, err := ui.Confirm("remove this listing?", false)
			if err != nil {
				return errors.Wrap(err, "getting confirmation")
			}
			if !ok {
				log.Warnf("aborted by user\n")
				return nil
			}
		}

		if err := s.Listings.Delete(cmd.Context(), l.ID); err != nil {
			return errors.Wrap(err, "removing listing")
		}
		if err := s.Membership.InvalidateRelated(cmd.Context(), client.KindListings); err != nil {
			return errors.Wrap(err, "refreshing related rows")
		}

		log.Successf("removed listing %s\n", l.ID)

		return nil
	}
}
