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

package catalog

import (
	"time"

	"github.com/daylilycatalog/catalog/pkg/cli/client"
)

// listingStatusDraft is the status of a listing created without one
const listingStatusDraft = "draft"

type listingKind struct{}

func (listingKind) MakeTemp(id string, input client.ListingInput, now time.Time) client.Listing {
	status := input.Status
	if status == "" {
		status = listingStatusDraft
	}

	return client.Listing{
		ID:                  id,
		Title:               input.Title,
		Description:         input.Description,
		Price:               input.Price,
		CultivarReferenceID: input.CultivarReferenceID,
		Status:              status,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func (listingKind) ApplyPatch(row client.Listing, patch client.ListingPatch) client.Listing {
	if patch.Title != nil {
		row.Title = *patch.Title
	}
	if patch.Description != nil {
		row.Description = *patch.Description
	}
	if patch.Price != nil {
		row.Price = patch.Price
	}
	if patch.CultivarReferenceID != nil {
		row.CultivarReferenceID = patch.CultivarReferenceID
	}
	if patch.Status != nil {
		row.Status = *patch.Status
	}

	return row
}

type listKind struct{}

func (listKind) MakeTemp(id string, input client.ListInput, now time.Time) client.List {
	return client.List{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		Listings:    []client.ListMember{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (listKind) ApplyPatch(row client.List, patch client.ListPatch) client.List {
	if patch.Title != nil {
		row.Title = *patch.Title
	}
	if patch.Description != nil {
		row.Description = *patch.Description
	}

	return row
}

// imageKind keeps the images of each parent in a dense order sequence
type imageKind struct{}

func (imageKind) MakeTemp(id string, input client.ImageInput, now time.Time) client.Image {
	return client.Image{
		ID:            id,
		URL:           input.URL,
		Order:         input.Order,
		ListingID:     input.ListingID,
		UserProfileID: input.UserProfileID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (imageKind) ApplyPatch(row client.Image, patch client.ImagePatch) client.Image {
	if patch.URL != nil {
		row.URL = *patch.URL
	}
	if patch.Order != nil {
		row.Order = *patch.Order
	}

	return row
}

// Prepare sets the order of a new image to one past the last image of the
// same parent
func (imageKind) Prepare(input client.ImageInput, rows []client.Image) client.ImageInput {
	parent := client.Image{ListingID: input.ListingID, UserProfileID: input.UserProfileID}.Parent()

	max := -1
	for _, r := range rows {
		if r.Parent() == parent && r.Order > max {
			max = r.Order
		}
	}
	input.Order = max + 1

	return input
}

func (imageKind) Group(row client.Image) string { return row.Parent() }

func (imageKind) Position(row client.Image) int { return row.Order }

func (imageKind) WithPosition(row client.Image, pos int) client.Image {
	row.Order = pos
	return row
}

func listingLess(a, b client.Listing) bool {
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.ID < b.ID
}

func listLess(a, b client.List) bool {
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.ID < b.ID
}

func imageLess(a, b client.Image) bool {
	if pa, pb := a.Parent(), b.Parent(); pa != pb {
		return pa < pb
	}
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return a.ID < b.ID
}

func cultivarLess(a, b client.CultivarReference) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}
