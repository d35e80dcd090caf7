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

// Package images implements the images command
package images

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
  * List the images of a listing
  catalog images ls 3f1c

  * Attach an image to a listing
  catalog images add 3f1c https://example.com/ruby-spider.jpg`

// NewCmd returns a new images command
func NewCmd(ctx context.CatalogCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "images",
		Short:   "Manage the images of listings",
		Example: example,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "ls <listing id>",
			Short: "List the images of a listing in order",
			Args:  cobra.ExactArgs(1),
			RunE:  newLs(ctx),
		},
		&cobra.Command{
			Use:   "add <listing id> <url>",
			Short: "Attach an image to the end of a listing's images",
			Args:  cobra.ExactArgs(2),
			RunE:  newAdd(ctx),
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Remove an image",
			Args:  cobra.ExactArgs(1),
			RunE:  newRm(ctx),
		},
	)

	return cmd
}

func newLs(ctx context.CatalogCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		s, err := infra.OpenSession(cmd.Context(), ctx, client.KindImages)
		if err != nil {
			return err
		}

		for _, img := range s.Images.ForListing(args[0]) {
			output.ImageRow(img)
		}

		return nil
	}
}

func newAdd(ctx context.CatalogCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate.ImageURL(args[1]); err != nil {
			return err
		}

		s, err := infra.OpenSession(cmd.Context(), ctx, client.KindListings, client.KindImages)
		if err != nil {
			return err
		}

		listingID := args[0]
		if _, ok := s.Listings.Get(listingID); !ok {
			return errors.Errorf("listing %s not found", listingID)
		}

		img, err := s.Images.Insert(cmd.Context(), client.ImageInput{URL: args[1], ListingID: &listingID})
		if err != nil {
			return errors.Wrap(err, "adding image")
		}

		log.Successf("added image %s\n", img.ID)
		output.ImageRow(img)

		return nil
	}
}

func newRm(ctx context.CatalogCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		s, err := infra.OpenSession(cmd.Context(), ctx, client.KindImages)
		if err != nil {
			return err
		}

		if err := s.Images.Delete(cmd.Context(), args[0]); err != nil {
			return errors.Wrap(err, "removing image")
		}

		log.Successf("removed image %s\n", args[0])

		return nil
	}
}
