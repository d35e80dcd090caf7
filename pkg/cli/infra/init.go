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

// Package infra provides operations and definitions for the
// local infrastructure of the catalog cli
package infra

import (
	gocontext "context"
	"database/sql"
	"time"

	"github.com/daylilycatalog/catalog/pkg/cli/catalog"
	"github.com/daylilycatalog/catalog/pkg/cli/client"
	"github.com/daylilycatalog/catalog/pkg/cli/config"
	"github.com/daylilycatalog/catalog/pkg/cli/consts"
	"github.com/daylilycatalog/catalog/pkg/cli/context"
	"github.com/daylilycatalog/catalog/pkg/cli/cursor"
	"github.com/daylilycatalog/catalog/pkg/cli/database"
	"github.com/daylilycatalog/catalog/pkg/cli/log"
	"github.com/daylilycatalog/catalog/pkg/cli/ui"
	"github.com/daylilycatalog/catalog/pkg/cli/utils"
	"github.com/daylilycatalog/catalog/pkg/clock"
	"github.com/daylilycatalog/catalog/pkg/dirs"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	// DefaultAPIEndpoint is the default API endpoint used when none is configured
	DefaultAPIEndpoint = "http://localhost:3001/api"
)

// ErrNotLoggedIn is an error for a command that needs a session
var ErrNotLoggedIn = errors.New("not logged in. Run `catalog login` first")

// RunEFunc is a function type of catalog commands
type RunEFunc func(*cobra.Command, []string) error

// newBaseCtx creates a minimal context with paths and database connection
// that is enriched with config values by setupCtx
func newBaseCtx(versionTag, customDBPath string) (context.CatalogCtx, error) {
	dirs.Reload()

	paths := context.Paths{
		Home:   dirs.Home,
		Config: dirs.ConfigHome,
		Data:   dirs.DataHome,
		Cache:  dirs.CacheHome,
	}

	if err := context.InitDirs(paths); err != nil {
		return context.CatalogCtx{}, errors.Wrap(err, "creating the catalog dirs")
	}

	dbPath := customDBPath
	if dbPath == "" {
		dbPath = context.DBPath(paths)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		return context.CatalogCtx{}, errors.Wrap(err, "connecting to db")
	}

	return context.CatalogCtx{
		Paths:   paths,
		Version: versionTag,
		DB:      db,
	}, nil
}

// Init initializes the catalog environment and returns a new context.
// apiEndpoint is written to a newly created config file.
func Init(versionTag, apiEndpoint, dbPath string) (*context.CatalogCtx, error) {
	ctx, err := newBaseCtx(versionTag, dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "initializing a context")
	}

	if err := initConfigFile(ctx, apiEndpoint); err != nil {
		return nil, errors.Wrap(err, "generating the config file")
	}

	if err := InitDB(ctx); err != nil {
		return nil, errors.Wrap(err, "initializing database")
	}

	ctx, err = setupCtx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "setting up the context")
	}

	log.Debug("context: %+v\n", context.Redact(ctx))

	return &ctx, nil
}

func getSystemValue(db *database.DB, key string) (string, error) {
	var val string
	err := database.GetSystem(db, key, &val)
	if errors.Cause(err) == sql.ErrNoRows {
		return "", nil
	} else if err != nil {
		return "", err
	}

	return val, nil
}

// setupCtx enriches the base context with values from config file and database
func setupCtx(ctx context.CatalogCtx) (context.CatalogCtx, error) {
	sessionKey, err := getSystemValue(ctx.DB, consts.SystemSessionKey)
	if err != nil {
		return ctx, errors.Wrap(err, "finding session key")
	}
	userID, err := getSystemValue(ctx.DB, consts.SystemUserID)
	if err != nil {
		return ctx, errors.Wrap(err, "finding user id")
	}

	cf, err := config.Read(ctx)
	if err != nil {
		return ctx, errors.Wrap(err, "reading config")
	}

	ret := context.CatalogCtx{
		Paths:       ctx.Paths,
		Version:     ctx.Version,
		DB:          ctx.DB,
		SessionKey:  sessionKey,
		UserID:      userID,
		APIEndpoint: cf.APIEndpoint,
		Editor:      cf.Editor,
		Clock:       clock.New(),
		HTTPClient:  client.NewRateLimitedHTTPClient(),
	}

	return ret, nil
}

// InitDB initializes the database
func InitDB(ctx context.CatalogCtx) error {
	log.Debug("initializing the database\n")

	if err := database.InitSchema(ctx.DB); err != nil {
		return errors.Wrap(err, "initializing schema")
	}

	return nil
}

// initConfigFile populates a new config file if it does not exist yet
func initConfigFile(ctx context.CatalogCtx, apiEndpoint string) error {
	path := config.GetPath(ctx)
	ok, err := utils.FileExists(path)
	if err != nil {
		return errors.Wrap(err, "checking if config exists")
	}
	if ok {
		return nil
	}

	endpoint := apiEndpoint
	if endpoint == "" {
		endpoint = DefaultAPIEndpoint
	}

	cf := config.Config{
		Editor:      ui.DefaultEditor(),
		APIEndpoint: endpoint,
	}

	if err := config.Write(ctx, cf); err != nil {
		return errors.Wrap(err, "writing config")
	}

	return nil
}

// NewClient returns an API client for the context
func NewClient(ctx context.CatalogCtx) *client.Client {
	return client.New(ctx.APIEndpoint, ctx.SessionKey, ctx.Version, ctx.HTTPClient)
}

// NewSession returns a catalog session for the logged in user whose cursors
// and snapshots live in the local database
func NewSession(ctx context.CatalogCtx) (*catalog.Session, error) {
	if !ctx.LoggedIn() {
		return nil, ErrNotLoggedIn
	}

	return catalog.New(catalog.Options{
		UserID:    ctx.UserID,
		Remote:    catalog.NewRemote(NewClient(ctx)),
		Cursors:   cursor.NewStore(database.NewCursorStorage(ctx.DB)),
		Clock:     ctx.Clock,
		Snapshots: database.NewSnapshotStore(ctx.DB),
	}), nil
}

// OpenSession returns a session for the logged in user with the collections
// of the given kinds synced, or of every kind when none is given
func OpenSession(c gocontext.Context, ctx context.CatalogCtx, kinds ...string) (*catalog.Session, error) {
	s, err := NewSession(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.Sync(c, kinds...); err != nil {
		return nil, errors.Wrap(err, "syncing")
	}

	return s, nil
}

// SaveCredentials stores the session of a user who logged in
func SaveCredentials(ctx context.CatalogCtx, sessionKey, userID string) error {
	tx, err := ctx.DB.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	if err := database.UpsertSystem(tx, consts.SystemSessionKey, sessionKey); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "saving session key")
	}
	if err := database.UpsertSystem(tx, consts.SystemUserID, userID); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "saving user id")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	return nil
}

// ClearLocalState deletes the session along with the cursors and snapshots of
// the logged in user
func ClearLocalState(ctx context.CatalogCtx) error {
	tx, err := ctx.DB.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	keys := []string{consts.SystemSessionKey, consts.SystemUserID, consts.SystemLastSyncAt}
	if ctx.UserID != "" {
		for _, kind := range client.Kinds {
			keys = append(keys, cursor.Key(kind, ctx.UserID))
		}
	}

	for _, key := range keys {
		if err := database.DeleteSystem(tx, key); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "deleting %s", key)
		}
	}

	if ctx.UserID != "" {
		if err := database.NewSnapshotStore(tx).DeleteSnapshots(ctx.UserID); err != nil {
			tx.Rollback()
			return errors.Wrap(err, "deleting snapshots")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	return nil
}

// GetLastSyncAt returns the time of the last completed sync
func GetLastSyncAt(ctx context.CatalogCtx) (time.Time, error) {
	val, err := getSystemValue(ctx.DB, consts.SystemLastSyncAt)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "finding last sync time")
	}
	if val == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "parsing last sync time")
	}

	return t, nil
}

// SaveLastSyncAt records the time of a completed sync
func SaveLastSyncAt(ctx context.CatalogCtx, t time.Time) error {
	return database.UpsertSystem(ctx.DB, consts.SystemLastSyncAt, t.UTC().Format(time.RFC3339Nano))
}
