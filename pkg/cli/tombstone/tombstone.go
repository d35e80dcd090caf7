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

// Package tombstone tracks ids deleted locally whose deletion the server has
// not yet reported
package tombstone

import (
	"sort"
	"sync"
	"time"
)

type entry struct {
	at          time.Time
	confirmed   bool
	confirmedAt time.Time
}

// Set is a concurrency-safe set of locally deleted ids. It lives in memory only.
type Set struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New returns an empty set
func New() *Set {
	return &Set{entries: map[string]entry{}}
}

// Add records a local deletion of id at the given time
func (s *Set) Add(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = entry{at: at}
}

// Confirm marks the deletion of id as accepted by the server at the given time.
// It is a no-op for ids not in the set.
func (s *Set) Confirm(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return
	}

	e.confirmed = true
	e.confirmedAt = at
	s.entries[id] = e
}

// Remove drops id from the set
func (s *Set) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
}

// Has reports whether id is in the set
func (s *Set) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[id]
	return ok
}

// IDs returns the ids in the set in ascending order
func (s *Set) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ret = append(ret, id)
	}
	sort.Strings(ret)

	return ret
}

// Len returns the number of ids in the set
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Clear empties the set
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = map[string]entry{}
}

// Prune drops confirmed entries whose deletion a sync response has provably
// covered. since is the cursor the response was requested with and seen maps
// every id the response carried to whether the row was flagged deleted.
// An entry goes when the response reported the row deleted, or when the
// response window started after the confirmed deletion and the id is absent
// from it. Unconfirmed entries are kept. Prune returns the number of dropped
// entries.
func (s *Set) Prune(since *time.Time, seen map[string]bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for id, e := range s.entries {
		if !e.confirmed {
			continue
		}

		deleted, present := seen[id]
		if present && deleted {
			delete(s.entries, id)
			n++
			continue
		}
		if !present && since != nil && e.confirmedAt.Before(*since) {
			delete(s.entries, id)
			n++
		}
	}

	return n
}
