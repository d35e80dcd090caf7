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

// NewImages creates a new Images controller.
func NewImages(app *app.App) *Images {
	return &Images{
		app: app,
	}
}

// Images is a controller for images attached to listings and profiles
type Images struct {
	app *app.App
}

type createImagePayload struct {
	URL           string  `json:"url"`
	Order         int     `json:"order"`
	ListingID     *string `json:"listing_id"`
	UserProfileID *string `json:"user_profile_id"`
}

type updateImagePayload struct {
	URL   *string `json:"url"`
	Order *int    `json:"order"`
}

// Sync returns the images changed at or after the given cursor
func (i *Images) Sync(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)

	since, err := parseSyncQuery(r.URL.Query())
	if err != nil {
		handleJSONError(w, err, "parsing sync query")
		return
	}

	images, err := i.app.SyncImages(user, since)
	if err != nil {
		handleJSONError(w, err, "syncing images")
		return
	}

	respondRows(w, presenters.PresentImages(images))
}

// Index returns the live images of the user
func (i *Images) Index(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)

	images, err := i.app.ListImages(user)
	if err != nil {
		handleJSONError(w, err, "listing images")
		return
	}

	respondRows(w, presenters.PresentImages(images))
}

// ByIDs returns the images with the given ids
func (i *Images) ByIDs(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)

	ids, err := parseByIDsQuery(r.URL.Query())
	if err != nil {
		handleJSONError(w, err, "parsing ids")
		return
	}

	images, err := i.app.GetImagesByIDs(user, ids)
	if err != nil {
		handleJSONError(w, err, "getting images by ids")
		return
	}

	respondRows(w, presenters.PresentImages(images))
}

// Create attaches an image to a listing or a profile
func (i *Images) Create(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)

	var p createImagePayload
	if err := decodeJSON(r, &p); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}

	image, err := i.app.CreateImage(user, app.ImageParams{
		URL:           p.URL,
		Order:         p.Order,
		ListingID:     p.ListingID,
		UserProfileID: p.UserProfileID,
	})
	if err != nil {
		handleJSONError(w, err, "creating image")
		return
	}

	respondRow(w, http.StatusCreated, presenters.PresentImage(image))
}

// Update changes the url or the position of an image
func (i *Images) Update(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var p updateImagePayload
	if err := decodeJSON(r, &p); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}

	image, err := i.app.UpdateImage(user, id, app.ImagePatch{
		URL:   p.URL,
		Order: p.Order,
	})
	if err != nil {
		handleJSONError(w, err, "updating image")
		return
	}

	respondRow(w, http.StatusOK, presenters.PresentImage(image))
}

// Delete deletes an image
func (i *Images) Delete(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	image, err := i.app.DeleteImage(user, id)
	if err != nil {
		handleJSONError(w, err, "deleting image")
		return
	}

	respondRow(w, http.StatusOK, presenters.PresentImage(image))
}
