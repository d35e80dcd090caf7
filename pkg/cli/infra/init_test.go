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

package infra

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/daylilycatalog/catalog/pkg/assert"
	"github.com/daylilycatalog/catalog/pkg/cli/config"
	"github.com/daylilycatalog/catalog/pkg/cli/context"
	"github.com/daylilycatalog/catalog/pkg/cli/cursor"
	"github.com/daylilycatalog/catalog/pkg/cli/database"
	"github.com/pkg/errors"
)

func setEnv(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmpDir, "cache"))
}

func TestInit_APIEndpointChange(t *testing.T) {
	setEnv(t)

	endpoint1 := "http://127.0.0.1:3001"
	ctx, err := Init("test-version", endpoint1, "")
	if err != nil {
		t.Fatal(errors.Wrap(err, "initializing"))
	}
	defer ctx.DB.Close()
	assert.Equal(t, ctx.APIEndpoint, endpoint1, "should use endpoint1 API endpoint")
	assert.Equal(t, ctx.LoggedIn(), false, "fresh context should not be logged in")

	endpoint2 := "http://127.0.0.1:3002"
	ctx2, err := Init("test-version", endpoint2, "")
	if err != nil {
		t.Fatal(errors.Wrap(err, "initializing with override"))
	}
	defer ctx2.DB.Close()
	assert.Equal(t, ctx2.APIEndpoint, endpoint1, "existing config should take precedence")

	cf, err := config.Read(*ctx2)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading config"))
	}
	assert.Equal(t, cf.APIEndpoint, endpoint1, "config should keep the original endpoint")
}

func TestInit_customDBPath(t *testing.T) {
	setEnv(t)
	dbPath := filepath.Join(t.TempDir(), "custom.db")

	ctx, err := Init("test-version", "", dbPath)
	if err != nil {
		t.Fatal(errors.Wrap(err, "initializing"))
	}
	defer ctx.DB.Close()

	assert.Equal(t, ctx.APIEndpoint, DefaultAPIEndpoint, "should fall back to the default endpoint")
	assert.NoError(t, SaveCredentials(*ctx, "key", "u1"), "saving credentials")

	ctx2, err := Init("test-version", "", dbPath)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reinitializing"))
	}
	defer ctx2.DB.Close()
	assert.Equal(t, ctx2.SessionKey, "key", "session key should be read from the custom db")
	assert.Equal(t, ctx2.UserID, "u1", "user id should be read from the custom db")
}

func TestNewSession_notLoggedIn(t *testing.T) {
	ctx := context.InitTestCtx(t)

	_, err := NewSession(ctx)
	assert.Equal(t, err, ErrNotLoggedIn, "error mismatch")
}

func TestClearLocalState(t *testing.T) {
	ctx := context.InitTestCtx(t)
	assert.NoError(t, SaveCredentials(ctx, "key", "u1"), "saving credentials")
	ctx.SessionKey, ctx.UserID = "key", "u1"

	cursors := cursor.NewStore(database.NewCursorStorage(ctx.DB))
	cursors.Set("listings", "u1", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	cursors.Set("listings", "u2", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	snapshots := database.NewSnapshotStore(ctx.DB)
	assert.NoError(t, snapshots.SaveSnapshot("listings", "u1", []byte("[]")), "saving snapshot")
	assert.NoError(t, SaveLastSyncAt(ctx, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)), "saving last sync")

	assert.NoError(t, ClearLocalState(ctx), "clearing")

	var count int
	database.MustScan(t, "counting system rows", ctx.DB.QueryRow("SELECT count(*) FROM system"), &count)
	assert.Equal(t, count, 1, "only the other user's cursor should remain")
	assert.Equal(t, cursors.Get("listings", "u2") != nil, true, "other user's cursor should be kept")

	_, ok, err := snapshots.LoadSnapshot("listings", "u1")
	assert.NoError(t, err, "loading snapshot")
	assert.Equal(t, ok, false, "snapshot should be deleted")
}

func TestLastSyncAt(t *testing.T) {
	ctx := context.InitTestCtx(t)

	got, err := GetLastSyncAt(ctx)
	assert.NoError(t, err, "getting absent value")
	assert.Equal(t, got.IsZero(), true, "should be zero before any sync")

	t1 := time.Date(2025, 5, 1, 10, 0, 0, 42, time.UTC)
	assert.NoError(t, SaveLastSyncAt(ctx, t1), "saving")

	got, err = GetLastSyncAt(ctx)
	assert.NoError(t, err, "getting")
	assert.Equal(t, got.Equal(t1), true, "time mismatch")
}
