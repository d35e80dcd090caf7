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

package app

import (
	"testing"
	"time"

	"github.com/daylilycatalog/catalog/pkg/assert"
	"github.com/daylilycatalog/catalog/pkg/server/database"
	"github.com/daylilycatalog/catalog/pkg/server/testutils"
	"github.com/pkg/errors"
)

func TestExpungeDeleted(t *testing.T) {
	a, c := newTestApp(t)
	user := testutils.SetupUserData(a.DB, "alice@example.com")

	start := c.Now()
	old := mustCreateListing(t, a, user, "Old")
	kept := mustCreateListing(t, a, user, "Kept")
	if _, err := a.DeleteListing(user, old.ID); err != nil {
		t.Fatal(errors.Wrap(err, "deleting old"))
	}

	c.Advance(48 * time.Hour)
	recent := mustCreateListing(t, a, user, "Recent")
	if _, err := a.DeleteListing(user, recent.ID); err != nil {
		t.Fatal(errors.Wrap(err, "deleting recent"))
	}

	cutoff := start.Add(24 * time.Hour)
	counts, err := a.ExpungeDeleted(cutoff)
	if err != nil {
		t.Fatal(errors.Wrap(err, "expunging"))
	}
	assert.DeepEqual(t, counts, map[string]int64{KindListings: 1}, "counts mismatch")

	var ids []string
	testutils.MustExec(t, a.DB.Model(&database.Listing{}).Order("title ASC").Pluck("id", &ids), "plucking ids")
	assert.DeepEqual(t, ids, []string{kept.ID, recent.ID}, "remaining listings mismatch")

	var horizon database.ExpungeHorizon
	testutils.MustExec(t, a.DB.Where("kind = ?", KindListings).First(&horizon), "finding horizon")
	assert.Equal(t, horizon.Cutoff.Equal(cutoff), true, "cutoff mismatch")

	var count int64
	testutils.MustExec(t, a.DB.Model(&database.ExpungeHorizon{}).Count(&count), "counting horizons")
	assert.Equal(t, count, int64(1), "kinds without expunged rows should keep no horizon")
}

func TestSyncWindow(t *testing.T) {
	a, c := newTestApp(t)
	user := testutils.SetupUserData(a.DB, "alice@example.com")

	listing := mustCreateListing(t, a, user, "Old")
	if _, err := a.DeleteListing(user, listing.ID); err != nil {
		t.Fatal(errors.Wrap(err, "deleting"))
	}
	stale := c.Now()

	cutoff := c.Advance(time.Hour)
	if _, err := a.ExpungeDeleted(cutoff); err != nil {
		t.Fatal(errors.Wrap(err, "expunging"))
	}
	fresh := c.Advance(time.Hour)

	testCases := []struct {
		name        string
		since       *time.Time
		expectedErr error
	}{
		{
			name:        "full sync",
			since:       nil,
			expectedErr: nil,
		},
		{
			name:        "cursor before the horizon",
			since:       &stale,
			expectedErr: ErrSyncWindowExpired,
		},
		{
			name:        "cursor at the horizon",
			since:       &cutoff,
			expectedErr: nil,
		},
		{
			name:        "cursor after the horizon",
			since:       &fresh,
			expectedErr: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := a.SyncListings(user, tc.since)
			assert.Equal(t, err, tc.expectedErr, "error mismatch")
		})
	}

	t.Run("other kinds are unaffected", func(t *testing.T) {
		_, err := a.SyncLists(user, &stale)
		assert.Equal(t, err, nil, "error mismatch")
	})
}
