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

// Package cursor keeps the per-kind, per-user incremental sync watermark
package cursor

import (
	"fmt"
	"sync"
	"time"

	"github.com/daylilycatalog/catalog/pkg/cli/log"
	"github.com/pkg/errors"
)

// ErrUnavailable is returned by a storage that cannot be read or written
var ErrUnavailable = errors.New("storage unavailable")

// Storage is a persistent string key-value store
type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
}

// Key returns the storage key of the cursor for the given kind and user
func Key(kind, userID string) string {
	return fmt.Sprintf("%s:maxUpdatedAt:%s", kind, userID)
}

// Store reads and writes cursors. A cursor never moves backwards.
type Store struct {
	storage Storage
	mu      sync.Mutex
}

// NewStore returns a cursor store backed by the given storage
func NewStore(s Storage) *Store {
	return &Store{storage: s}
}

// Get returns the cursor for the given kind and user, or nil when it is
// absent or cannot be read
func (s *Store) Get(kind, userID string) *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.get(Key(kind, userID))
}

func (s *Store) get(key string) *time.Time {
	val, ok, err := s.storage.GetItem(key)
	if err != nil {
		log.Debug("reading cursor %s: %s\n", key, err.Error())
		return nil
	}
	if !ok || val == "" {
		return nil
	}

	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		log.Debug("parsing cursor %s: %s\n", key, err.Error())
		return nil
	}

	return &t
}

// Set advances the cursor for the given kind and user to t. It is a no-op when
// t is not after the stored cursor, or when the storage fails.
func (s *Store) Set(kind, userID string, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key(kind, userID)
	if cur := s.get(key); cur != nil && !t.After(*cur) {
		return
	}

	if err := s.storage.SetItem(key, t.UTC().Format(time.RFC3339Nano)); err != nil {
		log.Debug("writing cursor %s: %s\n", key, err.Error())
	}
}

// MemoryStorage is an in-process Storage
type MemoryStorage struct {
	mu      sync.Mutex
	items   map[string]string
	failing bool
}

// NewMemoryStorage returns an empty in-process storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: map[string]string{}}
}

// SetFailing makes every subsequent read and write fail with ErrUnavailable
// until it is called again with false
func (m *MemoryStorage) SetFailing(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failing = failing
}

// GetItem implements Storage
func (m *MemoryStorage) GetItem(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return "", false, ErrUnavailable
	}

	v, ok := m.items[key]
	return v, ok, nil
}

// SetItem implements Storage
func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return ErrUnavailable
	}

	m.items[key] = value
	return nil
}
