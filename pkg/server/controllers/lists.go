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

// NewLists creates a new Lists controller.
func NewLists(app *app.App) *Lists {
	return &Lists{
		app: app,
	}
}

// Lists is a controller for lists and their memberships
type Lists struct {
	app *app.App
}

type createListPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateListPayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Sync returns the lists changed at or after the given cursor
func (l *Lists) Sync(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)

	since, err := parseSyncQuery(r.URL.Query())
	if err != nil {
		handleJSONError(w, err, "parsing sync query")
		return
	}

	lists, err := l.app.SyncLists(user, since)
	if err != nil {
		handleJSONError(w, err, "syncing lists")
		return
	}

	respondRows(w, presenters.PresentLists(lists))
}

// Index returns the live lists of the user
func (l *Lists) Index(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)

	lists, err := l.app.ListLists(user)
	if err != nil {
		handleJSONError(w, err, "listing lists")
		return
	}

	respondRows(w, presenters.PresentLists(lists))
}

// ByIDs returns the lists with the given ids
func (l *Lists) ByIDs(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)

	ids, err := parseByIDsQuery(r.URL.Query())
	if err != nil {
		handleJSONError(w, err, "parsing ids")
		return
	}

	lists, err := l.app.GetListsByIDs(user, ids)
	if err != nil {
		handleJSONError(w, err, "getting lists by ids")
		return
	}

	respondRows(w, presenters.PresentLists(lists))
}

// Create creates a list
func (l *Lists) Create(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)

	var p createListPayload
	if err := decodeJSON(r, &p); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}

	list, err := l.app.CreateList(user, app.ListParams{
		Title:       p.Title,
		Description: p.Description,
	})
	if err != nil {
		handleJSONError(w, err, "creating list")
		return
	}

	respondRow(w, http.StatusCreated, presenters.PresentList(list))
}

// Update applies a partial update to a list
func (l *Lists) Update(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var p updateListPayload
	if err := decodeJSON(r, &p); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}

	list, err := l.app.UpdateList(user, id, app.ListPatch{
		Title:       p.Title,
		Description: p.Description,
	})
	if err != nil {
		handleJSONError(w, err, "updating list")
		return
	}

	respondRow(w, http.StatusOK, presenters.PresentList(list))
}

// Delete deletes a list
func (l *Lists) Delete(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	list, err := l.app.DeleteList(user, id)
	if err != nil {
		handleJSONError(w, err, "deleting list")
		return
	}

	respondRow(w, http.StatusOK, presenters.PresentList(list))
}

// AddMember adds a listing to a list
func (l *Lists) AddMember(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	listingID, ok := pathID(w, r, "listingID")
	if !ok {
		return
	}

	list, err := l.app.AddListMember(user, id, listingID)
	if err != nil {
		handleJSONError(w, err, "adding list member")
		return
	}

	respondRow(w, http.StatusOK, presenters.PresentList(list))
}

// RemoveMember removes a listing from a list
func (l *Lists) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	listingID, ok := pathID(w, r, "listingID")
	if !ok {
		return
	}

	list, err := l.app.RemoveListMember(user, id, listingID)
	if err != nil {
		handleJSONError(w, err, "removing list member")
		return
	}

	respondRow(w, http.StatusOK, presenters.PresentList(list))
}
