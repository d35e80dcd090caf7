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

package database

import (
	"database/sql"
	_ "embed"
	"time"

	"github.com/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// InitSchema creates the tables of the local database if they do not exist
func InitSchema(db *DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return errors.Wrap(err, "running schema sql")
	}

	return nil
}

// GetSystem scans the value of the given system key into dest. It returns
// sql.ErrNoRows, possibly wrapped, when the key is absent.
func GetSystem(db *DB, key string, dest interface{}) error {
	if err := db.QueryRow("SELECT value FROM system WHERE key = ?", key).Scan(dest); err != nil {
		return errors.Wrapf(err, "finding system configuration record '%s'", key)
	}

	return nil
}

// UpsertSystem sets the value of the given system key
func UpsertSystem(db *DB, key, val string) error {
	_, err := db.Exec(`INSERT INTO system (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, val)
	if err != nil {
		return errors.Wrapf(err, "saving system config for %s", key)
	}

	return nil
}

// DeleteSystem deletes the given system key
func DeleteSystem(db *DB, key string) error {
	if _, err := db.Exec("DELETE FROM system WHERE key = ?", key); err != nil {
		return errors.Wrapf(err, "deleting system config for %s", key)
	}

	return nil
}

// CursorStorage keeps sync cursors in the system table
type CursorStorage struct {
	db *DB
}

// NewCursorStorage returns a cursor storage backed by db
func NewCursorStorage(db *DB) *CursorStorage {
	return &CursorStorage{db: db}
}

// GetItem returns the value stored under key
func (s *CursorStorage) GetItem(key string) (string, bool, error) {
	var val string
	err := GetSystem(s.db, key, &val)
	if errors.Cause(err) == sql.ErrNoRows {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}

	return val, true, nil
}

// SetItem stores value under key
func (s *CursorStorage) SetItem(key, value string) error {
	return UpsertSystem(s.db, key, value)
}

// SnapshotStore keeps serialized collections in the snapshots table
type SnapshotStore struct {
	db *DB
}

// NewSnapshotStore returns a snapshot store backed by db
func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// LoadSnapshot returns the snapshot of the given kind for the given user
func (s *SnapshotStore) LoadSnapshot(kind, userID string) ([]byte, bool, error) {
	var data string
	err := s.db.QueryRow("SELECT data FROM snapshots WHERE kind = ? AND user_id = ?", kind, userID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	} else if err != nil {
		return nil, false, errors.Wrapf(err, "loading %s snapshot", kind)
	}

	return []byte(data), true, nil
}

// SaveSnapshot replaces the snapshot of the given kind for the given user
func (s *SnapshotStore) SaveSnapshot(kind, userID string, data []byte) error {
	_, err := s.db.Exec(`INSERT INTO snapshots (kind, user_id, data, saved_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(kind, user_id) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		kind, userID, string(data), time.Now().UnixNano())
	if err != nil {
		return errors.Wrapf(err, "saving %s snapshot", kind)
	}

	return nil
}

// DeleteSnapshots deletes every snapshot of the given user
func (s *SnapshotStore) DeleteSnapshots(userID string) error {
	if _, err := s.db.Exec("DELETE FROM snapshots WHERE user_id = ?", userID); err != nil {
		return errors.Wrap(err, "deleting snapshots")
	}

	return nil
}
