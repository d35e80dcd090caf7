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

// Package mutation implements optimistic writes against a collection that
// are reconciled with, or rolled back after, the matching remote write
package mutation

import (
	"context"
	"sort"
	"time"

	"github.com/daylilycatalog/catalog/pkg/cli/client"
	"github.com/daylilycatalog/catalog/pkg/cli/collection"
	"github.com/daylilycatalog/catalog/pkg/cli/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrUnsaved is returned when a write targets a row whose insert has not
// reached the server yet
var ErrUnsaved = errors.New("row has not been saved yet")

// Remote is the remote write API of one entity kind
type Remote[R any, C any, P any] interface {
	Create(ctx context.Context, input C) (R, error)
	Update(ctx context.Context, id string, patch P) (R, error)
	Delete(ctx context.Context, id string) error
}

// Kind holds the field handling of one entity kind
type Kind[R any, C any, P any] interface {
	// MakeTemp builds the optimistic row for input under a temporary id
	MakeTemp(id string, input C, now time.Time) R
	// ApplyPatch returns row with patch applied
	ApplyPatch(row R, patch P) R
}

// Preparer is implemented by kinds that derive input fields from the rows
// already in the collection
type Preparer[R any, C any] interface {
	Prepare(input C, rows []R) C
}

// Sequencer is implemented by kinds whose rows form dense, zero-based
// position sequences within a group
type Sequencer[R any] interface {
	Group(row R) string
	Position(row R) int
	WithPosition(row R, pos int) R
}

// Mutator performs the writes of one entity kind
type Mutator[R collection.Row, C any, P any] struct {
	coll   *collection.Collection[R]
	remote Remote[R, C, P]
	kind   Kind[R, C, P]
}

// New returns a mutator writing to coll and remote
func New[R collection.Row, C any, P any](coll *collection.Collection[R], remote Remote[R, C, P], kind Kind[R, C, P]) *Mutator[R, C, P] {
	return &Mutator[R, C, P]{
		coll:   coll,
		remote: remote,
		kind:   kind,
	}
}

// Collection returns the collection the mutator writes to
func (m *Mutator[R, C, P]) Collection() *collection.Collection[R] {
	return m.coll
}

// NewTempID returns a fresh temporary row id
func NewTempID() string {
	return client.TempIDPrefix + uuid.NewString()
}

func (m *Mutator[R, C, P]) sequencer() (Sequencer[R], bool) {
	s, ok := any(m.kind).(Sequencer[R])
	return s, ok
}

// settle applies fn as a best-effort batch. Its failure is only logged.
func (m *Mutator[R, C, P]) settle(id string, fn func(tx *collection.Tx[R]) error) {
	if err := m.coll.Batch(fn); err != nil {
		log.Debug("settling %s %s: %s\n", m.coll.Kind(), id, err.Error())
	}
}

// Insert writes a temporary row for input, creates the row remotely and swaps
// the temporary row for the created one. On failure the temporary row is
// removed and the remote error is returned as is.
func (m *Mutator[R, C, P]) Insert(ctx context.Context, input C) (R, error) {
	var zero R

	if p, ok := any(m.kind).(Preparer[R, C]); ok {
		input = p.Prepare(input, m.coll.Query())
	}

	tempID := NewTempID()
	temp := m.kind.MakeTemp(tempID, input, m.coll.Clock().Now())

	done := m.coll.Track(tempID)
	defer done()

	if err := m.coll.Insert(temp); err != nil {
		return zero, errors.Wrap(err, "inserting temporary row")
	}

	row, err := m.remote.Create(ctx, input)
	if err != nil {
		m.settle(tempID, func(tx *collection.Tx[R]) error {
			return tx.Delete(tempID)
		})
		return zero, err
	}

	// a resync may have delivered the created row already
	m.settle(row.RowID(), func(tx *collection.Tx[R]) error {
		tx.Remove(tempID)
		if !tx.Has(row.RowID()) {
			tx.Put(row)
		}
		return nil
	})

	return row, nil
}

// Update applies patch to the row with the given id, updates it remotely and
// stores the row returned by the server. On failure the previous row is
// restored and the remote error is returned as is.
func (m *Mutator[R, C, P]) Update(ctx context.Context, id string, patch P) (R, error) {
	var zero R

	if client.IsTempID(id) {
		return zero, errors.Wrapf(ErrUnsaved, "updating %s", id)
	}

	prev, ok := m.coll.Get(id)
	if !ok {
		return zero, errors.Wrapf(collection.ErrNotFound, "updating %s", id)
	}

	done := m.coll.Track(id)
	defer done()

	if err := m.coll.Update(id, func(r R) R {
		return m.kind.ApplyPatch(r, patch)
	}); err != nil {
		return zero, errors.Wrap(err, "applying patch")
	}

	row, err := m.remote.Update(ctx, id, patch)
	if err != nil {
		m.settle(id, func(tx *collection.Tx[R]) error {
			if tx.Has(id) {
				tx.Put(prev)
			}
			return nil
		})
		return zero, err
	}

	m.settle(id, func(tx *collection.Tx[R]) error {
		if tx.Has(id) {
			tx.Put(row)
		}
		return nil
	})

	return row, nil
}

// Delete removes the row with the given id, tombstones it and deletes it
// remotely. Rows in the same position sequence are renumbered densely. On
// failure the row, its siblings' positions and the tombstone are restored and
// the remote error is returned as is.
func (m *Mutator[R, C, P]) Delete(ctx context.Context, id string) error {
	if client.IsTempID(id) {
		return errors.Wrapf(ErrUnsaved, "deleting %s", id)
	}

	prev, had := m.coll.Get(id)

	done := m.coll.Track(id)
	defer done()

	var siblings []R
	seq, sequenced := m.sequencer()
	if sequenced && had {
		group := seq.Group(prev)
		siblings = m.coll.Where(func(r R) bool {
			return r.RowID() != id && seq.Group(r) == group
		})
		sort.SliceStable(siblings, func(i, j int) bool {
			pi, pj := seq.Position(siblings[i]), seq.Position(siblings[j])
			if pi != pj {
				return pi < pj
			}
			return siblings[i].RowID() < siblings[j].RowID()
		})
	}

	// positions before renumbering, keyed by the id of each moved sibling
	moved := map[string]int{}
	for i, s := range siblings {
		if seq.Position(s) != i {
			moved[s.RowID()] = seq.Position(s)
			d := m.coll.Track(s.RowID())
			defer d()
		}
	}

	m.coll.Tombstones().Add(id, m.coll.Clock().Now())
	m.settle(id, func(tx *collection.Tx[R]) error {
		tx.Remove(id)
		for i, s := range siblings {
			if _, ok := moved[s.RowID()]; !ok {
				continue
			}
			if cur, ok := tx.Get(s.RowID()); ok {
				tx.Put(seq.WithPosition(cur, i))
			}
		}
		return nil
	})

	if err := m.remote.Delete(ctx, id); err != nil {
		m.coll.Tombstones().Remove(id)
		m.settle(id, func(tx *collection.Tx[R]) error {
			if had && !tx.Has(id) {
				tx.Put(prev)
			}
			for sid, pos := range moved {
				if cur, ok := tx.Get(sid); ok {
					tx.Put(seq.WithPosition(cur, pos))
				}
			}
			return nil
		})
		return err
	}

	m.coll.Tombstones().Confirm(id, m.coll.Clock().Now())

	return nil
}

// Relate edits a relation held by the row with the given id. apply makes the
// optimistic edit and call performs the remote edit, whose returned row is
// stored. On failure restore receives the current and the previous row and
// returns the row with the relation rolled back; the remote error is returned
// as is.
func (m *Mutator[R, C, P]) Relate(
	ctx context.Context,
	id string,
	apply func(R) R,
	restore func(cur, prev R) R,
	call func(ctx context.Context) (R, error),
) (R, error) {
	var zero R

	if client.IsTempID(id) {
		return zero, errors.Wrapf(ErrUnsaved, "editing %s", id)
	}

	prev, ok := m.coll.Get(id)
	if !ok {
		return zero, errors.Wrapf(collection.ErrNotFound, "editing %s", id)
	}

	done := m.coll.Track(id)
	defer done()

	if err := m.coll.Update(id, apply); err != nil {
		return zero, errors.Wrap(err, "applying relation edit")
	}

	row, err := call(ctx)
	if err != nil {
		m.settle(id, func(tx *collection.Tx[R]) error {
			cur, ok := tx.Get(id)
			if !ok {
				return nil
			}
			tx.Put(restore(cur, prev))
			return nil
		})
		return zero, err
	}

	m.settle(id, func(tx *collection.Tx[R]) error {
		if tx.Has(id) {
			tx.Put(row)
		}
		return nil
	})

	return row, nil
}
