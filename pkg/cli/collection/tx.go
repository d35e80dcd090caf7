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

package collection

import (
	"sort"

	"github.com/pkg/errors"
)

// Tx stages writes against a collection. Writes become visible to others when
// the transaction is published.
type Tx[R Row] struct {
	c       *Collection[R]
	cleared bool
	// changes maps ids to their staged row. A nil entry is a staged deletion.
	changes map[string]*R
}

func newTx[R Row](c *Collection[R]) *Tx[R] {
	return &Tx[R]{c: c, changes: map[string]*R{}}
}

func (tx *Tx[R]) dirty() bool {
	return tx.cleared || len(tx.changes) > 0
}

// Get returns the row with the given id as seen by the transaction
func (tx *Tx[R]) Get(id string) (R, bool) {
	if r, ok := tx.changes[id]; ok {
		if r == nil {
			var zero R
			return zero, false
		}
		return *r, true
	}
	if tx.cleared {
		var zero R
		return zero, false
	}

	r, ok := tx.c.rows[id]
	return r, ok
}

// Has reports whether the transaction sees a row with the given id
func (tx *Tx[R]) Has(id string) bool {
	_, ok := tx.Get(id)
	return ok
}

// Rows returns the rows seen by the transaction in collection order
func (tx *Tx[R]) Rows() []R {
	var ret []R
	if !tx.cleared {
		for id, r := range tx.c.rows {
			if _, ok := tx.changes[id]; !ok {
				ret = append(ret, r)
			}
		}
	}
	for _, r := range tx.changes {
		if r != nil {
			ret = append(ret, *r)
		}
	}
	sort.SliceStable(ret, func(i, j int) bool {
		return tx.c.less(ret[i], ret[j])
	})

	return ret
}

// Insert stages a new row. It fails with ErrDuplicateKey if the id is taken.
func (tx *Tx[R]) Insert(row R) error {
	id := row.RowID()
	if tx.Has(id) {
		return errors.Wrapf(ErrDuplicateKey, "inserting %s", id)
	}

	tx.changes[id] = &row
	return nil
}

// Update stages fn applied to the row with the given id
func (tx *Tx[R]) Update(id string, fn func(R) R) error {
	r, ok := tx.Get(id)
	if !ok {
		return errors.Wrapf(ErrNotFound, "updating %s", id)
	}

	next := fn(r)
	if next.RowID() != id {
		return errors.Wrapf(ErrIDChanged, "updating %s", id)
	}

	tx.changes[id] = &next
	return nil
}

// Put stages an insert or a replacement of the row
func (tx *Tx[R]) Put(row R) {
	tx.changes[row.RowID()] = &row
}

// Delete stages the removal of the row with the given id. It fails with
// ErrNotFound if the id is absent.
func (tx *Tx[R]) Delete(id string) error {
	if !tx.Has(id) {
		return errors.Wrapf(ErrNotFound, "deleting %s", id)
	}

	tx.changes[id] = nil
	return nil
}

// Remove stages the removal of the row with the given id if it is present.
// It reports whether a row was removed.
func (tx *Tx[R]) Remove(id string) bool {
	if !tx.Has(id) {
		return false
	}

	tx.changes[id] = nil
	return true
}

func (tx *Tx[R]) clear() {
	tx.cleared = true
	tx.changes = map[string]*R{}
}

func (tx *Tx[R]) commit() {
	if tx.cleared {
		tx.c.rows = map[string]R{}
	}

	for id, r := range tx.changes {
		if r == nil {
			delete(tx.c.rows, id)
		} else {
			tx.c.rows[id] = *r
		}
	}
}
