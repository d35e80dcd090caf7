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
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"time"

	"github.com/daylilycatalog/catalog/pkg/server/app"
	"github.com/daylilycatalog/catalog/pkg/server/context"
	"github.com/daylilycatalog/catalog/pkg/server/database"
	"github.com/daylilycatalog/catalog/pkg/server/helpers"
	"github.com/daylilycatalog/catalog/pkg/server/log"
	mw "github.com/daylilycatalog/catalog/pkg/server/middleware"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
)

// maxByIDs is the maximum number of ids accepted by a by-ids request
const maxByIDs = 500

type queryParamError struct {
	key     string
	value   string
	message string
}

func (e *queryParamError) Error() string {
	return fmt.Sprintf("invalid query param %s=%s. %s", e.key, e.value, e.message)
}

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(time.Time{}, func(s string) reflect.Value {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return reflect.Value{}
		}

		return reflect.ValueOf(t)
	})

	return d
}

type syncQuery struct {
	Since time.Time `schema:"since"`
}

type byIDsQuery struct {
	IDs []string `schema:"ids"`
}

// parseSyncQuery returns the cursor of a sync request. A missing cursor
// requests every row.
func parseSyncQuery(q url.Values) (*time.Time, error) {
	var p syncQuery
	if err := queryDecoder.Decode(&p, q); err != nil {
		return nil, &queryParamError{
			key:     "since",
			value:   q.Get("since"),
			message: "must be an RFC 3339 timestamp",
		}
	}

	if p.Since.IsZero() {
		return nil, nil
	}

	since := p.Since.UTC()
	return &since, nil
}

func parseByIDsQuery(q url.Values) ([]string, error) {
	var p byIDsQuery
	if err := queryDecoder.Decode(&p, q); err != nil {
		return nil, errors.Wrap(err, "decoding query")
	}

	if len(p.IDs) > maxByIDs {
		return nil, &queryParamError{
			key:     "ids",
			value:   fmt.Sprintf("%d ids", len(p.IDs)),
			message: fmt.Sprintf("maximum count is %d", maxByIDs),
		}
	}

	return p.IDs, nil
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(err, "decoding payload")
	}

	return nil
}

// pathID returns the path variable of the given name. Ids that are not uuids,
// such as the temporary ids of unsaved client rows, get a 400 response and
// pathID reports false.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := mux.Vars(r)[name]
	if !helpers.ValidateUUID(id) {
		respondMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid %s '%s'", name, id))
		return "", false
	}

	return id, true
}

// mustGetUser returns the user that the auth middleware put in the context
func mustGetUser(r *http.Request) database.User {
	user := context.User(r.Context())
	if user == nil {
		panic("no authenticated user in request context")
	}

	return *user
}

type rowsResp struct {
	Rows interface{} `json:"rows"`
}

type rowResp struct {
	Row interface{} `json:"row"`
}

func respondRows(w http.ResponseWriter, rows interface{}) {
	mw.RespondJSON(w, http.StatusOK, rowsResp{Rows: rows})
}

func respondRow(w http.ResponseWriter, statusCode int, row interface{}) {
	mw.RespondJSON(w, statusCode, rowResp{Row: row})
}

func respondMessage(w http.ResponseWriter, statusCode int, msg string) {
	mw.RespondJSON(w, statusCode, map[string]string{"message": msg})
}

// handleJSONError responds with the status code and message that match the
// given error
func handleJSONError(w http.ResponseWriter, err error, msg string) {
	cause := errors.Cause(err)

	var qErr *queryParamError
	switch {
	case errors.As(err, &qErr):
		respondMessage(w, http.StatusBadRequest, qErr.Error())
	case app.IsValidationError(cause):
		respondMessage(w, http.StatusBadRequest, cause.Error())
	case cause == app.ErrNotFound:
		respondMessage(w, http.StatusNotFound, cause.Error())
	case cause == app.ErrLoginRequired:
		mw.RespondUnauthorized(w)
	case cause == app.ErrDuplicateEmail:
		respondMessage(w, http.StatusConflict, cause.Error())
	case cause == app.ErrSyncWindowExpired:
		log.WithFields(log.Fields{
			"msg": msg,
		}).Info("sync cursor predates the expunge horizon")
		respondMessage(w, http.StatusGone, cause.Error())
	default:
		mw.DoError(w, msg, err, http.StatusInternalServerError)
	}
}
