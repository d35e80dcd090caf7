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

// NewCultivars creates a new Cultivars controller.
func NewCultivars(app *app.App) *Cultivars {
	return &Cultivars{
		app: app,
	}
}

// Cultivars is a read-only controller for cultivar reference data
type Cultivars struct {
	app *app.App
}

// Sync returns the cultivar references changed at or after the given cursor
func (c *Cultivars) Sync(w http.ResponseWriter, r *http.Request) {
	since, err := parseSyncQuery(r.URL.Query())
	if err != nil {
		handleJSONError(w, err, "parsing sync query")
		return
	}

	refs, err := c.app.SyncCultivarReferences(since)
	if err != nil {
		handleJSONError(w, err, "syncing cultivar references")
		return
	}

	respondRows(w, presenters.PresentCultivarReferences(refs))
}

// Index returns every live cultivar reference
func (c *Cultivars) Index(w http.ResponseWriter, r *http.Request) {
	refs, err := c.app.ListCultivarReferences()
	if err != nil {
		handleJSONError(w, err, "listing cultivar references")
		return
	}

	respondRows(w, presenters.PresentCultivarReferences(refs))
}

// ByIDs returns the cultivar references with the given ids
func (c *Cultivars) ByIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := parseByIDsQuery(r.URL.Query())
	if err != nil {
		handleJSONError(w, err, "parsing ids")
		return
	}

	refs, err := c.app.GetCultivarReferencesByIDs(ids)
	if err != nil {
		handleJSONError(w, err, "getting cultivar references by ids")
		return
	}

	respondRows(w, presenters.PresentCultivarReferences(refs))
}
