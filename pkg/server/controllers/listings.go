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

package controllers

import (
	"net/http"

	"github.com/daylilycatalog/catalog/pkg/server/app"
	"github.com/daylilycatalog/catalog/pkg/server/presenters"
)

// NewListings creates a new Listings controller.
func NewListings(app *app.App) *Listings {
	return &Listings{
		app: app,
	}
}

// Listings is a controller for listings
type Listings struct {
	app *app.App
}

type createListingPayload struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Price               *float64 `json:"price"`
	CultivarReferenceID *string  `json:"cultivar_reference_id"`
	Status              string   `json:"status"`
}

type updateListingPayload struct {
	Title               *string  `json:"title"`
	Description         *string  `json:"description"`
	Price               *float64 `json:"price"`
	CultivarReferenceID *string  `json:"cultivar_reference_id"`
	Status              *string  `json:"status"`
}

// Sync returns the listings changed at or after the given cursor
func (l *Listings) Sync(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)

	since, err := parseSyncQuery(r.URL.Query())
	if err != nil {
		handleJSONError(w, err, "parsing sync query")
		return
	}

	listings, err := l.app.SyncListings(user, since)
	if err != nil {
		handleJSONError(w, err, "syncing listings")
		return
	}

	respondRows(w, presenters.PresentListings(listings))
}

// Index returns the live listings of the user
func (l *Listings) Index(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)

	listings, err := l.app.ListListings(user)
	if err != nil {
		handleJSONError(w, err, "listing listings")
		return
	}

	respondRows(w, presenters.PresentListings(listings))
}

// ByIDs returns the listings with the given ids
func (l *Listings) ByIDs(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)

	ids, err := parseByIDsQuery(r.URL.Query())
	if err != nil {
		handleJSONError(w, err, "parsing ids")
		return
	}

	listings, err := l.app.GetListingsByIDs(user, ids)
	if err != nil {
		handleJSONError(w, err, "getting listings by ids")
		return
	}

	respondRows(w, presenters.PresentListings(listings))
}

// Create creates a listing
func (l *Listings) Create(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)

	var p createListingPayload
	if err := decodeJSON(r, &p); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}

	listing, err := l.app.CreateListing(user, app.ListingParams{
		Title:               p.Title,
		Description:         p.Description,
		Price:               p.Price,
		CultivarReferenceID: p.CultivarReferenceID,
		Status:              p.Status,
	})
	if err != nil {
		handleJSONError(w, err, "creating listing")
		return
	}

	respondRow(w, http.StatusCreated, presenters.PresentListing(listing))
}

// Update applies a partial update to a listing
func (l *Listings) Update(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var p updateListingPayload
	if err := decodeJSON(r, &p); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}

	listing, err := l.app.UpdateListing(user, id, app.ListingPatch{
		Title:               p.Title,
		Description:         p.Description,
		Price:               p.Price,
		CultivarReferenceID: p.CultivarReferenceID,
		Status:              p.Status,
	})
	if err != nil {
		handleJSONError(w, err, "updating listing")
		return
	}

	respondRow(w, http.StatusOK, presenters.PresentListing(listing))
}

// Delete deletes a listing along with its images and list memberships
func (l *Listings) Delete(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	listing, err := l.app.DeleteListing(user, id)
	if err != nil {
		handleJSONError(w, err, "deleting listing")
		return
	}

	respondRow(w, http.StatusOK, presenters.PresentListing(listing))
}
