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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/daylilycatalog/catalog/pkg/assert"
	"github.com/pkg/errors"
)

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	body   string
}

// newServer starts a server that records requests and answers them with fn
func newServer(t *testing.T, fn func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recorded) {
	t.Helper()

	var reqs []recorded
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		b, _ := json.Marshal(body)

		reqs = append(reqs, recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
			body:   string(b),
		})
		fn(w, r)
	}))
	t.Cleanup(ts.Close)

	return New(ts.URL, "someSessionKey", "0.1.0", nil), &reqs
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestResourceSync(t *testing.T) {
	c, reqs := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"rows": []Listing{{ID: "l1", Title: "Stella de Oro"}, {ID: "l2", Deleted: true}},
		})
	})
	res := NewResource[Listing, ListingInput, ListingPatch](c, KindListings)

	since := time.Date(2025, 4, 1, 8, 30, 0, 0, time.UTC)
	rows, err := res.Sync(context.Background(), &since)
	assert.NoError(t, err, "syncing")

	assert.Equal(t, len(rows), 2, "row count mismatch")
	assert.Equal(t, rows[0].Title, "Stella de Oro", "title mismatch")
	assert.Equal(t, rows[1].IsDeleted(), true, "deleted flag mismatch")

	req := (*reqs)[0]
	assert.Equal(t, req.method, http.MethodGet, "method mismatch")
	assert.Equal(t, req.path, "/v1/listings/sync", "path mismatch")
	assert.Equal(t, req.query, "since=2025-04-01T08%3A30%3A00Z", "query mismatch")
	assert.Equal(t, req.auth, "Bearer someSessionKey", "auth mismatch")

	_, err = res.Sync(context.Background(), nil)
	assert.NoError(t, err, "syncing everything")
	assert.Equal(t, (*reqs)[1].query, "", "full sync should send no cursor")
}

func TestResourceGetByIDs(t *testing.T) {
	c, reqs := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"rows": []CultivarReference{{ID: "c1", Name: "Ruffled Apricot"}},
		})
	})
	res := NewResource[CultivarReference, struct{}, struct{}](c, KindCultivarReferences)

	rows, err := res.GetByIDs(context.Background(), []string{"c1", "c2"})
	assert.NoError(t, err, "getting by ids")
	assert.Equal(t, len(rows), 1, "row count mismatch")
	assert.Equal(t, (*reqs)[0].path, "/v1/cultivar-references/by-ids", "path mismatch")
	assert.Equal(t, (*reqs)[0].query, "ids=c1&ids=c2", "query mismatch")

	rows, err = res.GetByIDs(context.Background(), nil)
	assert.NoError(t, err, "getting no ids")
	assert.Equal(t, len(rows), 0, "no rows expected")
	assert.Equal(t, len(*reqs), 1, "empty id list should not hit the server")
}

func TestResourceWrites(t *testing.T) {
	c, reqs := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			writeJSON(w, http.StatusCreated, map[string]interface{}{"row": Image{ID: "i1", URL: "a.jpg", Order: 3}})
		case http.MethodPatch:
			writeJSON(w, http.StatusOK, map[string]interface{}{"row": Image{ID: "i1", URL: "b.jpg", Order: 3}})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	res := NewResource[Image, ImageInput, ImagePatch](c, KindImages)
	ctx := context.Background()
	listingID := "l1"

	img, err := res.Create(ctx, ImageInput{URL: "a.jpg", Order: 3, ListingID: &listingID})
	assert.NoError(t, err, "creating")
	assert.Equal(t, img.ID, "i1", "id mismatch")
	assert.Equal(t, (*reqs)[0].path, "/v1/images", "create path mismatch")
	assert.Equal(t, (*reqs)[0].body, `{"listing_id":"l1","order":3,"url":"a.jpg"}`, "create body mismatch")

	url := "b.jpg"
	img, err = res.Update(ctx, "i1", ImagePatch{URL: &url})
	assert.NoError(t, err, "updating")
	assert.Equal(t, img.URL, "b.jpg", "url mismatch")
	assert.Equal(t, (*reqs)[1].method, http.MethodPatch, "update method mismatch")
	assert.Equal(t, (*reqs)[1].path, "/v1/images/i1", "update path mismatch")
	assert.Equal(t, (*reqs)[1].body, `{"url":"b.jpg"}`, "partial update should only send set fields")

	assert.NoError(t, res.Delete(ctx, "i1"), "deleting")
	assert.Equal(t, (*reqs)[2].method, http.MethodDelete, "delete method mismatch")
}

func TestListResourceMembers(t *testing.T) {
	c, reqs := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"row": List{ID: "L1", Listings: []ListMember{{ID: "A"}}}})
	})
	res := NewListResource(c)

	l, err := res.AddMember(context.Background(), "L1", "A")
	assert.NoError(t, err, "adding member")
	assert.Equal(t, l.HasMember("A"), true, "member mismatch")
	assert.Equal(t, (*reqs)[0].method, http.MethodPost, "method mismatch")
	assert.Equal(t, (*reqs)[0].path, "/v1/lists/L1/listings/A", "path mismatch")

	_, err = res.RemoveMember(context.Background(), "L1", "A")
	assert.NoError(t, err, "removing member")
	assert.Equal(t, (*reqs)[1].method, http.MethodDelete, "method mismatch")
	assert.Equal(t, res.Kind(), KindLists, "kind mismatch")
}

func TestHTTPErrors(t *testing.T) {
	testCases := []struct {
		status   int
		conflict bool
		notFound bool
		gone     bool
	}{
		{status: http.StatusConflict, conflict: true},
		{status: http.StatusNotFound, notFound: true},
		{status: http.StatusGone, gone: true},
		{status: http.StatusUnprocessableEntity},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("status %d", tc.status), func(t *testing.T) {
			c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "something went wrong", tc.status)
			})
			res := NewResource[List, ListInput, ListPatch](c, KindLists)

			_, err := res.List(context.Background())

			var httpErr *HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("expected an HTTPError, got %v", err)
			}
			assert.Equal(t, httpErr.StatusCode, tc.status, "status mismatch")
			assert.Equal(t, httpErr.Message, "something went wrong", "message mismatch")
			assert.Equal(t, httpErr.IsConflict(), tc.conflict, "conflict mismatch")
			assert.Equal(t, httpErr.IsNotFound(), tc.notFound, "not found mismatch")
			assert.Equal(t, httpErr.IsGone(), tc.gone, "gone mismatch")
			assert.Equal(t, IsSyncWindowExpired(err), tc.gone, "sync window mismatch")
		})
	}
}

func TestContentTypeMismatch(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	})

	_, err := c.GetMe(context.Background())

	assert.Equal(t, errors.Is(err, ErrContentTypeMismatch), true, "should fail with content type mismatch")
}

func TestNoSession(t *testing.T) {
	c := New("http://127.0.0.1:0", "", "0.1.0", nil)

	_, err := NewResource[Listing, ListingInput, ListingPatch](c, KindListings).List(context.Background())

	assert.Equal(t, errors.Is(err, ErrNoSession), true, "should fail without a session")
}

func TestIsTempID(t *testing.T) {
	assert.Equal(t, IsTempID("temp:1234"), true, "temp id")
	assert.Equal(t, IsTempID("1234"), false, "server id")
	assert.Equal(t, IsTempID("temp"), false, "short id")
}

func TestImageParent(t *testing.T) {
	listingID, profileID := "l1", "p1"

	assert.Equal(t, Image{ListingID: &listingID}.Parent(), "listing:l1", "listing parent")
	assert.Equal(t, Image{UserProfileID: &profileID}.Parent(), "profile:p1", "profile parent")
	assert.Equal(t, Image{}.Parent(), "", "no parent")
}
