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

package client

import (
	"time"
)

// TempIDPrefix marks ids synthesized on the client for rows the server has not
// assigned an id to yet
const TempIDPrefix = "temp:"

// IsTempID reports whether the given id is a client-side placeholder id
func IsTempID(id string) bool {
	return len(id) >= len(TempIDPrefix) && id[:len(TempIDPrefix)] == TempIDPrefix
}

// Listing is a daylily offered by a seller
type Listing struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	Title               string    `json:"title"`
	Slug                string    `json:"slug"`
	Description         string    `json:"description"`
	Price               *float64  `json:"price"`
	CultivarReferenceID *string   `json:"cultivar_reference_id"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	Deleted             bool      `json:"deleted"`
}

// RowID returns the id of the listing
func (l Listing) RowID() string { return l.ID }

// RowUpdatedAt returns the last modification time of the listing
func (l Listing) RowUpdatedAt() time.Time { return l.UpdatedAt }

// IsDeleted reports whether the server marked the listing deleted
func (l Listing) IsDeleted() bool { return l.Deleted }

// ListingInput is the payload for creating a listing
type ListingInput struct {
	Title               string   `json:"title"`
	Description         string   `json:"description,omitempty"`
	Price               *float64 `json:"price,omitempty"`
	CultivarReferenceID *string  `json:"cultivar_reference_id,omitempty"`
	Status              string   `json:"status,omitempty"`
}

// ListingPatch is a partial update of a listing. Nil fields are left untouched.
type ListingPatch struct {
	Title               *string  `json:"title,omitempty"`
	Description         *string  `json:"description,omitempty"`
	Price               *float64 `json:"price,omitempty"`
	CultivarReferenceID *string  `json:"cultivar_reference_id,omitempty"`
	Status              *string  `json:"status,omitempty"`
}

// ListMember is a reference from a list to one of its listings
type ListMember struct {
	ID string `json:"id"`
}

// List is a named, seller-curated group of listings. Its Listings field is
// the authoritative membership record.
type List struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Listings    []ListMember `json:"listings"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Deleted     bool         `json:"deleted"`
}

// RowID returns the id of the list
func (l List) RowID() string { return l.ID }

// RowUpdatedAt returns the last modification time of the list
func (l List) RowUpdatedAt() time.Time { return l.UpdatedAt }

// IsDeleted reports whether the server marked the list deleted
func (l List) IsDeleted() bool { return l.Deleted }

// HasMember reports whether the list contains the given listing
func (l List) HasMember(listingID string) bool {
	for _, m := range l.Listings {
		if m.ID == listingID {
			return true
		}
	}

	return false
}

// ListInput is the payload for creating a list
type ListInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ListPatch is a partial update of a list
type ListPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Image is a photo attached either to a listing or to the seller profile.
// Images under one parent form a dense, zero-based Order sequence.
type Image struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	URL           string    `json:"url"`
	Order         int       `json:"order"`
	ListingID     *string   `json:"listing_id"`
	UserProfileID *string   `json:"user_profile_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Deleted       bool      `json:"deleted"`
}

// RowID returns the id of the image
func (i Image) RowID() string { return i.ID }

// RowUpdatedAt returns the last modification time of the image
func (i Image) RowUpdatedAt() time.Time { return i.UpdatedAt }

// IsDeleted reports whether the server marked the image deleted
func (i Image) IsDeleted() bool { return i.Deleted }

// Parent returns a key identifying the owner of the image
func (i Image) Parent() string {
	if i.ListingID != nil {
		return "listing:" + *i.ListingID
	}
	if i.UserProfileID != nil {
		return "profile:" + *i.UserProfileID
	}

	return ""
}

// ImageInput is the payload for attaching an image
type ImageInput struct {
	URL           string  `json:"url"`
	Order         int     `json:"order"`
	ListingID     *string `json:"listing_id,omitempty"`
	UserProfileID *string `json:"user_profile_id,omitempty"`
}

// ImagePatch is a partial update of an image
type ImagePatch struct {
	URL   *string `json:"url,omitempty"`
	Order *int    `json:"order,omitempty"`
}

// CultivarReference is registry data about a daylily cultivar. It is shared
// reference data and is read-only from the client's perspective.
type CultivarReference struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Hybridizer  string    `json:"hybridizer"`
	Year        int       `json:"year"`
	Ploidy      string    `json:"ploidy"`
	BloomSize   string    `json:"bloom_size"`
	ScapeHeight string    `json:"scape_height"`
	UpdatedAt   time.Time `json:"updated_at"`
	Deleted     bool      `json:"deleted"`
}

// RowID returns the id of the cultivar reference
func (c CultivarReference) RowID() string { return c.ID }

// RowUpdatedAt returns the last modification time of the cultivar reference
func (c CultivarReference) RowUpdatedAt() time.Time { return c.UpdatedAt }

// IsDeleted reports whether the server marked the cultivar reference deleted
func (c CultivarReference) IsDeleted() bool { return c.Deleted }
