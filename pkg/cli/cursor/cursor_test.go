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

package cursor

import (
	"fmt"
	"testing"
	"time"

	"github.com/daylilycatalog/catalog/pkg/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, Key("listings", "u1"), "listings:maxUpdatedAt:u1", "key mismatch")
	assert.Equal(t, Key("cultivar-references", "u2"), "cultivar-references:maxUpdatedAt:u2", "key mismatch")
}

func TestGet_absent(t *testing.T) {
	s := NewStore(NewMemoryStorage())

	assert.Equal(t, s.Get("listings", "u1") == nil, true, "cursor should be absent")
}

func TestGet_unparsable(t *testing.T) {
	m := NewMemoryStorage()
	if err := m.SetItem(Key("listings", "u1"), "yesterday"); err != nil {
		t.Fatal(err)
	}
	s := NewStore(m)

	assert.Equal(t, s.Get("listings", "u1") == nil, true, "unparsable cursor should read as absent")
}

func TestSet(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		initial  *time.Time
		next     time.Time
		expected time.Time
	}{
		{
			initial:  nil,
			next:     base,
			expected: base,
		},
		{
			initial:  &base,
			next:     base.Add(time.Minute),
			expected: base.Add(time.Minute),
		},
		{
			initial:  &base,
			next:     base.Add(-time.Minute),
			expected: base,
		},
		{
			initial:  &base,
			next:     base,
			expected: base,
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("case %d", idx), func(t *testing.T) {
			s := NewStore(NewMemoryStorage())
			if tc.initial != nil {
				s.Set("images", "u1", *tc.initial)
			}

			s.Set("images", "u1", tc.next)

			got := s.Get("images", "u1")
			if got == nil {
				t.Fatal("cursor is nil")
			}
			assert.Equal(t, got.Equal(tc.expected), true, fmt.Sprintf("cursor mismatch. got %s", got))
		})
	}
}

func TestSet_scopedPerUserAndKind(t *testing.T) {
	s := NewStore(NewMemoryStorage())
	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	s.Set("lists", "u1", t1)

	assert.Equal(t, s.Get("lists", "u2") == nil, true, "other user should have no cursor")
	assert.Equal(t, s.Get("listings", "u1") == nil, true, "other kind should have no cursor")
}

func TestStorageFailure(t *testing.T) {
	m := NewMemoryStorage()
	s := NewStore(m)
	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s.Set("lists", "u1", t1)

	m.SetFailing(true)

	assert.Equal(t, s.Get("lists", "u1") == nil, true, "failed read should be treated as absent")

	// write is a no-op
	s.Set("lists", "u1", t1.Add(time.Hour))
	m.SetFailing(false)

	got := s.Get("lists", "u1")
	if got == nil {
		t.Fatal("cursor is nil")
	}
	assert.Equal(t, got.Equal(t1), true, "cursor should be unchanged after failed write")
}
