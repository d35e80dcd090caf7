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

// Package collection provides an in-memory, query-capable mirror of one
// remote entity kind, scoped to one user, and its incremental sync
package collection

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/daylilycatalog/catalog/pkg/cli/cursor"
	"github.com/daylilycatalog/catalog/pkg/cli/log"
	"github.com/daylilycatalog/catalog/pkg/cli/tombstone"
	"github.com/daylilycatalog/catalog/pkg/clock"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotFound is returned when a write targets an id the collection does not hold
	ErrNotFound = errors.New("row not found")
	// ErrDuplicateKey is returned when inserting an id the collection already holds
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrIDChanged is returned when an update function changes the id of a row
	ErrIDChanged = errors.New("update changed the row id")
)

// Row is a record mirrored from the server
type Row interface {
	RowID() string
	RowUpdatedAt() time.Time
	IsDeleted() bool
}

// Source is the remote data service for one entity kind
type Source[R Row] interface {
	// Sync returns the rows changed at or after since, or every row when since is nil
	Sync(ctx context.Context, since *time.Time) ([]R, error)
	// List returns every live row
	List(ctx context.Context) ([]R, error)
}

// Persister stores the materialized rows of a collection between processes
type Persister[R Row] interface {
	Load(kind, userID string) ([]R, bool, error)
	Save(kind, userID string, rows []R) error
}

// Config configures a collection
type Config[R Row] struct {
	Kind      string
	UserID    string
	Source    Source[R]
	Cursors   *cursor.Store
	Clock     clock.Clock
	Persister Persister[R]
	// Less orders the materialized rows. Rows are ordered by id when it is nil.
	Less func(a, b R) bool
}

// Collection is the client-held mirror of one entity kind
type Collection[R Row] struct {
	kind       string
	userID     string
	source     Source[R]
	cursors    *cursor.Store
	clock      clock.Clock
	persister  Persister[R]
	less       func(a, b R) bool
	tombstones *tombstone.Set
	flight     singleflight.Group

	// writeMu serializes writers. rows changes only with both writeMu and mu
	// held, so a transaction holding writeMu reads rows without mu.
	writeMu sync.Mutex

	mu        sync.RWMutex
	rows      map[string]R
	view      []R
	seeded    bool
	seq       uint64
	pending   map[string]int
	lastWrite map[string]uint64
	subs      map[int]func([]R)
	nextSub   int

	// notifyMu keeps observer notifications in publish order
	notifyMu sync.Mutex
}

// New returns a collection. When a persister is configured, the previously
// saved rows are loaded and the collection counts as seeded.
func New[R Row](cfg Config[R]) *Collection[R] {
	c := &Collection[R]{
		kind:       cfg.Kind,
		userID:     cfg.UserID,
		source:     cfg.Source,
		cursors:    cfg.Cursors,
		clock:      cfg.Clock,
		persister:  cfg.Persister,
		less:       cfg.Less,
		tombstones: tombstone.New(),
		rows:       map[string]R{},
		pending:    map[string]int{},
		lastWrite:  map[string]uint64{},
		subs:       map[int]func([]R){},
	}
	if c.clock == nil {
		c.clock = clock.New()
	}
	if c.cursors == nil {
		c.cursors = cursor.NewStore(cursor.NewMemoryStorage())
	}
	if c.less == nil {
		c.less = func(a, b R) bool { return a.RowID() < b.RowID() }
	}

	if c.persister != nil {
		rows, ok, err := c.persister.Load(c.kind, c.userID)
		if err != nil {
			log.Debug("loading %s snapshot: %s\n", c.kind, err.Error())
		} else if ok {
			for _, r := range rows {
				c.rows[r.RowID()] = r
			}
			c.seeded = true
		}
	}
	c.view = c.materialize()

	return c
}

// Kind returns the entity kind of the collection
func (c *Collection[R]) Kind() string {
	return c.kind
}

// UserID returns the id of the user the collection is scoped to
func (c *Collection[R]) UserID() string {
	return c.userID
}

// Source returns the remote data service of the collection
func (c *Collection[R]) Source() Source[R] {
	return c.source
}

// Clock returns the time source of the collection
func (c *Collection[R]) Clock() clock.Clock {
	return c.clock
}

// Tombstones returns the ids deleted locally and not yet reported by the server
func (c *Collection[R]) Tombstones() *tombstone.Set {
	return c.tombstones
}

// Cursor returns the stored sync cursor of the collection
func (c *Collection[R]) Cursor() *time.Time {
	return c.cursors.Get(c.kind, c.userID)
}

// SetCursor advances the stored sync cursor of the collection
func (c *Collection[R]) SetCursor(t time.Time) {
	c.cursors.Set(c.kind, c.userID, t)
}

// Seeded reports whether the collection holds a full fetch
func (c *Collection[R]) Seeded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.seeded
}

func (c *Collection[R]) materialize() []R {
	ret := make([]R, 0, len(c.rows))
	for _, r := range c.rows {
		ret = append(ret, r)
	}
	sort.SliceStable(ret, func(i, j int) bool {
		return c.less(ret[i], ret[j])
	})

	return ret
}

// Query returns the materialized rows
func (c *Collection[R]) Query() []R {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ret := make([]R, len(c.view))
	copy(ret, c.view)
	return ret
}

// Where returns the materialized rows satisfying pred
func (c *Collection[R]) Where(pred func(R) bool) []R {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var ret []R
	for _, r := range c.view {
		if pred(r) {
			ret = append(ret, r)
		}
	}

	return ret
}

// Get returns the row with the given id
func (c *Collection[R]) Get(id string) (R, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.rows[id]
	return r, ok
}

// Has reports whether the collection holds a row with the given id
func (c *Collection[R]) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.rows[id]
	return ok
}

// Len returns the number of rows
func (c *Collection[R]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.rows)
}

// Subscribe registers fn to observe the materialized rows. fn is called with
// the current rows right away and after every published write or batch.
// fn must not write to the collection. The returned function cancels the
// subscription.
func (c *Collection[R]) Subscribe(fn func([]R)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	view := c.view
	c.notifyMu.Lock()
	c.mu.Unlock()

	fn(view)
	c.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()

			delete(c.subs, id)
		})
	}
}

// write stages fn in a transaction and publishes it. It returns the error of
// fn, in which case nothing is published, or the error of saving the snapshot.
// Writers are serialized on writeMu. fn runs without c.mu held, so it may read
// the collection and sees the state before the transaction. fn must not write
// to the collection. after runs with c.mu held, right before publishing.
func (c *Collection[R]) write(fn func(tx *Tx[R]) error, after func()) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	tx := newTx(c)
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.dirty() && after == nil {
		return nil
	}

	c.mu.Lock()
	if after != nil {
		after()
	}
	tx.commit()
	c.view = c.materialize()
	view := c.view

	subs := make([]func([]R), 0, len(c.subs))
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		subs = append(subs, c.subs[id])
	}

	c.notifyMu.Lock()
	c.mu.Unlock()

	var saveErr error
	if c.persister != nil {
		saveErr = c.persister.Save(c.kind, c.userID, view)
	}

	for _, s := range subs {
		s(view)
	}
	c.notifyMu.Unlock()

	return saveErr
}

// writeLogged publishes fn and logs snapshot failures instead of returning them
func (c *Collection[R]) writeLogged(fn func(tx *Tx[R]) error) error {
	err := c.write(fn, nil)

	var txErr *txError
	if errors.As(err, &txErr) {
		return txErr.err
	}
	if err != nil {
		log.Debug("saving %s snapshot: %s\n", c.kind, err.Error())
	}

	return nil
}

// txError separates errors of the staged function from snapshot errors
type txError struct {
	err error
}

func (e *txError) Error() string { return e.err.Error() }

func (e *txError) Unwrap() error { return e.err }

// Batch applies the writes staged by fn as one transaction. Observers see the
// state before or after the whole batch. If fn returns an error, no write is
// applied and the error is returned.
func (c *Collection[R]) Batch(fn func(tx *Tx[R]) error) error {
	return c.writeLogged(func(tx *Tx[R]) error {
		if err := fn(tx); err != nil {
			return &txError{err: err}
		}
		return nil
	})
}

// Insert adds a row. It fails with ErrDuplicateKey if the id is taken.
func (c *Collection[R]) Insert(row R) error {
	return c.Batch(func(tx *Tx[R]) error {
		return tx.Insert(row)
	})
}

// Update replaces the row with the given id by fn applied to it. It fails
// with ErrNotFound if the id is absent.
func (c *Collection[R]) Update(id string, fn func(R) R) error {
	return c.Batch(func(tx *Tx[R]) error {
		return tx.Update(id, fn)
	})
}

// Put inserts or replaces a row
func (c *Collection[R]) Put(row R) {
	// Put cannot fail
	_ = c.Batch(func(tx *Tx[R]) error {
		tx.Put(row)
		return nil
	})
}

// Delete removes the row with the given id. It fails with ErrNotFound if the
// id is absent.
func (c *Collection[R]) Delete(id string) error {
	return c.Batch(func(tx *Tx[R]) error {
		return tx.Delete(id)
	})
}

// Merge upserts rows by id. Rows flagged deleted are removed and tombstoned
// ids are not brought back.
func (c *Collection[R]) Merge(rows []R) {
	_ = c.Batch(func(tx *Tx[R]) error {
		for _, r := range rows {
			if r.IsDeleted() || c.tombstones.Has(r.RowID()) {
				tx.Remove(r.RowID())
			} else {
				tx.Put(r)
			}
		}
		return nil
	})
}

// Replace discards every row, publishes rows as the new state and marks the
// collection seeded. Rows flagged deleted are skipped. It returns the error of
// saving the snapshot, if any.
func (c *Collection[R]) Replace(rows []R) error {
	err := c.write(func(tx *Tx[R]) error {
		tx.clear()
		for _, r := range rows {
			if !r.IsDeleted() {
				tx.Put(r)
			}
		}
		return nil
	}, func() {
		c.seeded = true
	})
	if err != nil {
		return errors.Wrapf(err, "saving %s snapshot", c.kind)
	}

	return nil
}

// Track records a pending local write to id. Until the returned function is
// called, and for every resync that started before it was called, resync
// leaves the row alone.
func (c *Collection[R]) Track(id string) func() {
	c.mu.Lock()
	c.seq++
	c.pending[id]++
	c.lastWrite[id] = c.seq
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()

			c.seq++
			c.pending[id]--
			if c.pending[id] <= 0 {
				delete(c.pending, id)
			}
			c.lastWrite[id] = c.seq
		})
	}
}

// busy reports whether a resync started at seq must skip id
func (c *Collection[R]) busy(id string, seq uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.pending[id] > 0 {
		return true
	}

	return c.lastWrite[id] > seq
}

// Resync fetches the rows changed since the stored cursor and merges them.
// Concurrent calls share one fetch. On failure the rows and the cursor are
// left untouched.
func (c *Collection[R]) Resync(ctx context.Context) error {
	_, err, _ := c.flight.Do("resync", func() (interface{}, error) {
		return nil, c.resync(ctx)
	})

	return err
}

func (c *Collection[R]) resync(ctx context.Context) error {
	since := c.cursors.Get(c.kind, c.userID)

	c.mu.RLock()
	startSeq := c.seq
	c.mu.RUnlock()

	now := c.clock.Now()
	rows, err := c.source.Sync(ctx, since)
	if err != nil {
		return errors.Wrapf(err, "syncing %s", c.kind)
	}

	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		seen[r.RowID()] = r.IsDeleted()
	}

	var skipped int
	err = c.write(func(tx *Tx[R]) error {
		for _, r := range rows {
			id := r.RowID()
			if c.busy(id, startSeq) {
				skipped++
				continue
			}

			if r.IsDeleted() {
				tx.Remove(id)
			} else {
				tx.Put(r)
			}
		}

		for _, id := range c.tombstones.IDs() {
			tx.Remove(id)
		}

		return nil
	}, func() {
		for id, seq := range c.lastWrite {
			if seq <= startSeq && c.pending[id] == 0 {
				delete(c.lastWrite, id)
			}
		}
	})

	pruned := c.tombstones.Prune(since, seen)
	log.Debug("resynced %s: %d rows, %d skipped, %d tombstones pruned\n", c.kind, len(rows), skipped, pruned)

	if err != nil {
		return errors.Wrapf(err, "saving %s snapshot", c.kind)
	}

	c.cursors.Set(c.kind, c.userID, now)

	return nil
}

// Close drops every row and subscription
func (c *Collection[R]) Close() {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rows = map[string]R{}
	c.view = nil
	c.subs = map[int]func([]R){}
	c.seeded = false
	c.tombstones.Clear()
}
