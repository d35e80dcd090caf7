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

func memberIDs(list database.List) []string {
	ret := []string{}
	for _, m := range list.Members {
		ret = append(ret, m.ListingID)
	}

	return ret
}

func TestCreateList(t *testing.T) {
	a, _ := newTestApp(t)
	user := testutils.SetupUserData(a.DB, "alice@example.com")

	list, err := a.CreateList(user, ListParams{Title: "Spiders", Description: "Long petals"})
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating list"))
	}
	assert.Equal(t, list.Title, "Spiders", "title mismatch")
	assert.Equal(t, len(list.Members), 0, "member count mismatch")

	_, err = a.CreateList(user, ListParams{Title: ""})
	assert.Equal(t, err, ErrTitleRequired, "error mismatch")
}

func TestUpdateList(t *testing.T) {
	a, c := newTestApp(t)
	user := testutils.SetupUserData(a.DB, "alice@example.com")
	list, err := a.CreateList(user, ListParams{Title: "Spiders"})
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating list"))
	}

	now := c.Advance(time.Minute)
	got, err := a.UpdateList(user, list.ID, ListPatch{Description: strPtr("Unusual forms")})
	if err != nil {
		t.Fatal(errors.Wrap(err, "updating list"))
	}

	assert.Equal(t, got.Title, "Spiders", "title mismatch")
	assert.Equal(t, got.Description, "Unusual forms", "description mismatch")
	assert.Equal(t, got.UpdatedAt.Equal(now), true, "updated_at mismatch")

	_, err = a.UpdateList(user, list.ID, ListPatch{Title: strPtr(" ")})
	assert.Equal(t, err, ErrTitleRequired, "error mismatch")
}

func TestListMembership(t *testing.T) {
	a, c := newTestApp(t)
	alice := testutils.SetupUserData(a.DB, "alice@example.com")
	bob := testutils.SetupUserData(a.DB, "bob@example.com")

	l1 := mustCreateListing(t, a, alice, "One")
	l2 := mustCreateListing(t, a, alice, "Two")
	bobListing := mustCreateListing(t, a, bob, "Bob's")
	list, err := a.CreateList(alice, ListParams{Title: "Favorites"})
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating list"))
	}

	t.Run("add", func(t *testing.T) {
		c.Advance(time.Minute)
		if _, err := a.AddListMember(alice, list.ID, l1.ID); err != nil {
			t.Fatal(errors.Wrap(err, "adding l1"))
		}

		now := c.Advance(time.Minute)
		got, err := a.AddListMember(alice, list.ID, l2.ID)
		if err != nil {
			t.Fatal(errors.Wrap(err, "adding l2"))
		}

		assert.DeepEqual(t, memberIDs(got), []string{l1.ID, l2.ID}, "members mismatch")
		assert.Equal(t, got.UpdatedAt.Equal(now), true, "updated_at mismatch")
	})

	t.Run("add twice", func(t *testing.T) {
		got, err := a.AddListMember(alice, list.ID, l1.ID)
		if err != nil {
			t.Fatal(errors.Wrap(err, "adding l1 again"))
		}

		assert.DeepEqual(t, memberIDs(got), []string{l1.ID, l2.ID}, "members mismatch")
	})

	t.Run("add listing of another user", func(t *testing.T) {
		_, err := a.AddListMember(alice, list.ID, bobListing.ID)
		assert.Equal(t, err, ErrNotFound, "error mismatch")
	})

	t.Run("add to list of another user", func(t *testing.T) {
		_, err := a.AddListMember(bob, list.ID, bobListing.ID)
		assert.Equal(t, err, ErrNotFound, "error mismatch")
	})

	t.Run("remove", func(t *testing.T) {
		now := c.Advance(time.Minute)
		got, err := a.RemoveListMember(alice, list.ID, l1.ID)
		if err != nil {
			t.Fatal(errors.Wrap(err, "removing l1"))
		}

		assert.DeepEqual(t, memberIDs(got), []string{l2.ID}, "members mismatch")
		assert.Equal(t, got.UpdatedAt.Equal(now), true, "updated_at mismatch")
	})

	t.Run("remove absent member", func(t *testing.T) {
		got, err := a.RemoveListMember(alice, list.ID, l1.ID)
		if err != nil {
			t.Fatal(errors.Wrap(err, "removing l1 again"))
		}

		assert.DeepEqual(t, memberIDs(got), []string{l2.ID}, "members mismatch")
	})
}

func TestDeleteList(t *testing.T) {
	a, c := newTestApp(t)
	user := testutils.SetupUserData(a.DB, "alice@example.com")
	listing := mustCreateListing(t, a, user, "One")
	list, err := a.CreateList(user, ListParams{Title: "Favorites"})
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating list"))
	}
	if _, err := a.AddListMember(user, list.ID, listing.ID); err != nil {
		t.Fatal(errors.Wrap(err, "adding member"))
	}

	now := c.Advance(time.Minute)
	got, err := a.DeleteList(user, list.ID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "deleting list"))
	}
	assert.Equal(t, got.Deleted, true, "deleted mismatch")
	assert.Equal(t, got.UpdatedAt.Equal(now), true, "updated_at mismatch")

	var count int64
	testutils.MustExec(t, a.DB.Model(&database.ListMember{}).Count(&count), "counting members")
	assert.Equal(t, count, int64(0), "member count mismatch")

	rows, err := a.SyncLists(user, &now)
	if err != nil {
		t.Fatal(errors.Wrap(err, "syncing lists"))
	}
	assert.Equal(t, len(rows), 1, "row count mismatch")
	assert.Equal(t, rows[0].Deleted, true, "synced row should be deleted")

	live, err := a.ListLists(user)
	if err != nil {
		t.Fatal(errors.Wrap(err, "listing lists"))
	}
	assert.Equal(t, len(live), 0, "live list count mismatch")
}
