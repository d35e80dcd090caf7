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

// Package presenters converts models into the payloads returned by the API
package presenters

import (
	"time"

	"github.com/daylilycatalog/catalog/pkg/server/database"
)

// FormatTS truncates the given timestamp to the microsecond in UTC. Cursors
// derived from a presented timestamp never pass the stored value.
func FormatTS(ts time.Time) time.Time {
	return ts.UTC().Truncate(time.Microsecond)
}

// Me is the payload describing the signed-in user
type Me struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// PresentMe presents the signed-in user
func PresentMe(user database.User) Me {
	return Me{
		UserID: user.ID,
		Email:  user.Email,
	}
}

// Listing is a result of PresentListing
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

// PresentListing presents a listing
func PresentListing(l database.Listing) Listing {
	return Listing{
		ID:                  l.ID,
		UserID:              l.UserID,
		Title:               l.Title,
		Slug:                l.Slug,
		Description:         l.Description,
		Price:               l.Price,
		CultivarReferenceID: l.CultivarReferenceID,
		Status:              l.Status,
		CreatedAt:           FormatTS(l.CreatedAt),
		UpdatedAt:           FormatTS(l.UpdatedAt),
		Deleted:             l.Deleted,
	}
}

// PresentListings presents listings
func PresentListings(listings []database.Listing) []Listing {
	ret := []Listing{}
	for _, l := range listings {
		ret = append(ret, PresentListing(l))
	}

	return ret
}

// ListMember is a reference from a list to one of its listings
type ListMember struct {
	ID string `json:"id"`
}

// List is a result of PresentList
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

// PresentList presents a list with its members in insertion order
func PresentList(l database.List) List {
	members := []ListMember{}
	for _, m := range l.Members {
		members = append(members, ListMember{ID: m.ListingID})
	}

	return List{
		ID:          l.ID,
		UserID:      l.UserID,
		Title:       l.Title,
		Description: l.Description,
		Listings:    members,
		CreatedAt:   FormatTS(l.CreatedAt),
		UpdatedAt:   FormatTS(l.UpdatedAt),
		Deleted:     l.Deleted,
	}
}

// PresentLists presents lists
func PresentLists(lists []database.List) []List {
	ret := []List{}
	for _, l := range lists {
		ret = append(ret, PresentList(l))
	}

	return ret
}

// Image is a result of PresentImage
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

// PresentImage presents an image
func PresentImage(i database.Image) Image {
	return Image{
		ID:            i.ID,
		UserID:        i.UserID,
		URL:           i.URL,
		Order:         i.Position,
		ListingID:     i.ListingID,
		UserProfileID: i.UserProfileID,
		CreatedAt:     FormatTS(i.CreatedAt),
		UpdatedAt:     FormatTS(i.UpdatedAt),
		Deleted:       i.Deleted,
	}
}

// PresentImages presents images
func PresentImages(images []database.Image) []Image {
	ret := []Image{}
	for _, i := range images {
		ret = append(ret, PresentImage(i))
	}

	return ret
}

// CultivarReference is a result of PresentCultivarReference
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

// PresentCultivarReference presents a cultivar reference
func PresentCultivarReference(c database.CultivarReference) CultivarReference {
	return CultivarReference{
		ID:          c.ID,
		Name:        c.Name,
		Hybridizer:  c.Hybridizer,
		Year:        c.Year,
		Ploidy:      c.Ploidy,
		BloomSize:   c.BloomSize,
		ScapeHeight: c.ScapeHeight,
		UpdatedAt:   FormatTS(c.UpdatedAt),
		Deleted:     c.Deleted,
	}
}

// PresentCultivarReferences presents cultivar references
func PresentCultivarReferences(refs []database.CultivarReference) []CultivarReference {
	ret := []CultivarReference{}
	for _, c := range refs {
		ret = append(ret, PresentCultivarReference(c))
	}

	return ret
}
