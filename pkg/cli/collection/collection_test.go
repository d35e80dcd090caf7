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
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/daylilycatalog/catalog/pkg/assert"
	"github.com/daylilycatalog/catalog/pkg/cli/cursor"
	"github.com/daylilycatalog/catalog/pkg/clock"
	"github.com/pkg/errors"
)

type item struct {
	ID        string
	Title     string
	UpdatedAt time.Time
	Deleted   bool
}

func (n item) RowID() string           { return n.ID }
func (n item) RowUpdatedAt() time.Time { return n.UpdatedAt }
func (n item) IsDeleted() bool         { return n.Deleted }

type fakeSource struct {
	mu     sync.Mutex
	rows   []item
	err    error
	calls  []*time.Time
	onSync func()
}

func (s *fakeSource) Sync(ctx context.Context, since *time.Time) ([]item, error) {
	s.mu.Lock()
	s.calls = append(s.calls, since)
	rows, err, hook := s.rows, s.err, s.onSync
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (s *fakeSource) List(ctx context.Context) ([]item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

type memPersister struct {
	saved   map[string][]item
	saveErr error
}

func (p *memPersister) Load(kind, userID string) ([]item, bool, error) {
	rows, ok := p.saved[kind+"/"+userID]
	return rows, ok, nil
}

func (p *memPersister) Save(kind, userID string, rows []item) error {
	if p.saveErr != nil {
		return p.saveErr
	}
	p.saved[kind+"/"+userID] = append([]item(nil), rows...)
	return nil
}

func setup(src *fakeSource) (*Collection[item], *clock.Mock, *cursor.Store) {
	c := clock.NewMock()
	cursors := cursor.NewStore(cursor.NewMemoryStorage())
	coll := New(Config[item]{
		Kind:    "items",
		UserID:  "u1",
		Source:  src,
		Cursors: cursors,
		Clock:   c,
	})

	return coll, c, cursors
}

func ids(rows []item) []string {
	ret := []string{}
	for _, r := range rows {
		ret = append(ret, r.ID)
	}
	return ret
}

func TestInsert_duplicate(t *testing.T) {
	c, _, _ := setup(&fakeSource{})

	assert.NoError(t, c.Insert(item{ID: "a"}), "inserting a")
	err := c.Insert(item{ID: "a", Title: "again"})

	assert.Equal(t, errors.Is(err, ErrDuplicateKey), true, "should fail with duplicate key")
	assert.Equal(t, c.Len(), 1, "len mismatch")
	got, _ := c.Get("a")
	assert.Equal(t, got.Title, "", "original row should be kept")
}

func TestUpdate(t *testing.T) {
	c, _, _ := setup(&fakeSource{})
	assert.NoError(t, c.Insert(item{ID: "a", Title: "Stella"}), "inserting a")

	assert.NoError(t, c.Update("a", func(n item) item {
		n.Title = "Stella de Oro"
		return n
	}), "updating a")

	got, ok := c.Get("a")
	assert.Equal(t, ok, true, "a should exist")
	assert.Equal(t, got.Title, "Stella de Oro", "title mismatch")

	err := c.Update("missing", func(n item) item { return n })
	assert.Equal(t, errors.Is(err, ErrNotFound), true, "should fail with not found")

	err = c.Update("a", func(n item) item {
		n.ID = "b"
		return n
	})
	assert.Equal(t, errors.Is(err, ErrIDChanged), true, "should reject id change")
	assert.Equal(t, c.Has("b"), false, "b should not exist")
}

func TestDelete(t *testing.T) {
	c, _, _ := setup(&fakeSource{})
	assert.NoError(t, c.Insert(item{ID: "a"}), "inserting a")

	assert.NoError(t, c.Delete("a"), "deleting a")
	assert.Equal(t, c.Has("a"), false, "a should be gone")

	err := c.Delete("a")
	assert.Equal(t, errors.Is(err, ErrNotFound), true, "should fail with not found")
}

func TestQuery_order(t *testing.T) {
	c, _, _ := setup(&fakeSource{})
	c.Merge([]item{{ID: "c"}, {ID: "a"}, {ID: "b"}})

	assert.DeepEqual(t, ids(c.Query()), []string{"a", "b", "c"}, "default order should be by id")

	byTitle := New(Config[item]{
		Kind:   "items",
		Source: &fakeSource{},
		Less:   func(a, b item) bool { return a.Title < b.Title },
	})
	byTitle.Merge([]item{{ID: "1", Title: "Z"}, {ID: "2", Title: "A"}})

	assert.DeepEqual(t, ids(byTitle.Query()), []string{"2", "1"}, "custom order mismatch")
}

func TestMerge(t *testing.T) {
	c, _, _ := setup(&fakeSource{})
	c.Merge([]item{{ID: "a", Title: "one"}, {ID: "b"}})

	c.Merge([]item{{ID: "a", Title: "two"}, {ID: "b", Deleted: true}, {ID: "a", Title: "three"}})

	assert.DeepEqual(t, ids(c.Query()), []string{"a"}, "ids mismatch")
	got, _ := c.Get("a")
	assert.Equal(t, got.Title, "three", "later row should win")
}

func TestUniqueness(t *testing.T) {
	c, _, _ := setup(&fakeSource{})

	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("n%d", i%5)
		switch i % 4 {
		case 0:
			_ = c.Insert(item{ID: id})
		case 1:
			c.Merge([]item{{ID: id}, {ID: id, Title: "dup"}})
		case 2:
			_ = c.Delete(id)
		case 3:
			c.Put(item{ID: id})
		}

		seen := map[string]bool{}
		for _, r := range c.Query() {
			if seen[r.ID] {
				t.Fatalf("duplicate id %s after step %d", r.ID, i)
			}
			seen[r.ID] = true
		}
		assert.Equal(t, len(seen), c.Len(), "len should match distinct ids")
	}
}

func TestBatch(t *testing.T) {
	c, _, _ := setup(&fakeSource{})
	c.Merge([]item{{ID: "a"}, {ID: "b"}})

	var snapshots [][]string
	cancel := c.Subscribe(func(rows []item) {
		snapshots = append(snapshots, ids(rows))
	})
	defer cancel()

	err := c.Batch(func(tx *Tx[item]) error {
		if err := tx.Delete("a"); err != nil {
			return err
		}
		if err := tx.Insert(item{ID: "c"}); err != nil {
			return err
		}
		assert.Equal(t, tx.Has("a"), false, "tx should see its own delete")
		assert.DeepEqual(t, ids(tx.Rows()), []string{"b", "c"}, "tx rows mismatch")
		assert.Equal(t, c.Has("c"), false, "staged write should not be visible outside the tx")
		return nil
	})
	assert.NoError(t, err, "running batch")

	assert.DeepEqual(t, snapshots, [][]string{{"a", "b"}, {"b", "c"}}, "observers should see one notification per batch")
}

func TestUpdate_callbackReads(t *testing.T) {
	c, _, _ := setup(&fakeSource{})
	c.Merge([]item{{ID: "a"}, {ID: "b"}})

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Update("a", func(n item) item {
			n.Title = fmt.Sprintf("%d rows", c.Len())
			return n
		})
	}()

	select {
	case err := <-errCh:
		assert.NoError(t, err, "updating a")
	case <-time.After(2 * time.Second):
		t.Fatal("update with a reading callback did not return")
	}

	got, _ := c.Get("a")
	assert.Equal(t, got.Title, "2 rows", "callback should see the collection")
}

func TestBatch_error(t *testing.T) {
	c, _, _ := setup(&fakeSource{})
	c.Merge([]item{{ID: "a"}})

	var calls int
	cancel := c.Subscribe(func(rows []item) { calls++ })
	defer cancel()

	boom := errors.New("boom")
	err := c.Batch(func(tx *Tx[item]) error {
		tx.Put(item{ID: "b"})
		return boom
	})

	assert.Equal(t, err, boom, "batch error mismatch")
	assert.DeepEqual(t, ids(c.Query()), []string{"a"}, "failed batch should not apply")
	assert.Equal(t, calls, 1, "failed batch should not notify")
}

func TestSubscribe_cancel(t *testing.T) {
	c, _, _ := setup(&fakeSource{})

	var calls int
	cancel := c.Subscribe(func(rows []item) { calls++ })
	assert.Equal(t, calls, 1, "subscribe should emit the current rows")

	c.Put(item{ID: "a"})
	cancel()
	cancel()
	c.Put(item{ID: "b"})

	assert.Equal(t, calls, 2, "call count mismatch")
}

func TestResync(t *testing.T) {
	src := &fakeSource{}
	c, clk, cursors := setup(src)
	c.Merge([]item{{ID: "a", Title: "old"}, {ID: "b"}})

	before := clk.Now()
	src.rows = []item{{ID: "a", Title: "new"}, {ID: "c"}, {ID: "b", Deleted: true}}
	src.onSync = func() { clk.Advance(time.Minute) }

	assert.NoError(t, c.Resync(context.Background()), "resyncing")

	assert.DeepEqual(t, ids(c.Query()), []string{"a", "c"}, "ids mismatch")
	got, _ := c.Get("a")
	assert.Equal(t, got.Title, "new", "server row should win")

	cur := cursors.Get("items", "u1")
	if cur == nil {
		t.Fatal("cursor was not set")
	}
	assert.Equal(t, cur.Equal(before), true, "cursor should be the instant captured before the fetch")
	assert.Equal(t, src.calls[0] == nil, true, "first resync should fetch everything")

	// the next resync is gated by the cursor
	assert.NoError(t, c.Resync(context.Background()), "resyncing again")
	if src.calls[1] == nil {
		t.Fatal("second resync should send the cursor")
	}
	assert.Equal(t, src.calls[1].Equal(before), true, "since mismatch")
	assert.Equal(t, cursors.Get("items", "u1").After(before), true, "cursor should advance")
}

func TestResync_failure(t *testing.T) {
	src := &fakeSource{}
	c, clk, cursors := setup(src)
	c.Merge([]item{{ID: "a", Title: "old"}})
	cursors.Set("items", "u1", clk.Now())
	clk.Advance(time.Hour)

	boom := errors.New("network down")
	src.rows = []item{{ID: "a", Title: "new"}, {ID: "z"}}
	src.err = boom

	err := c.Resync(context.Background())

	assert.Equal(t, errors.Cause(err), boom, "error mismatch")
	got, _ := c.Get("a")
	assert.Equal(t, got.Title, "old", "state should be untouched")
	assert.Equal(t, c.Has("z"), false, "no partial merge")
	assert.Equal(t, cursors.Get("items", "u1").Equal(clk.Now().Add(-time.Hour)), true, "cursor should be unchanged")
}

func TestResync_tombstone(t *testing.T) {
	src := &fakeSource{}
	c, clk, _ := setup(src)
	c.Merge([]item{{ID: "a"}, {ID: "b"}})

	assert.NoError(t, c.Delete("a"), "deleting a")
	c.Tombstones().Add("a", clk.Now())

	src.rows = []item{{ID: "a", Title: "lagging"}, {ID: "b"}}
	assert.NoError(t, c.Resync(context.Background()), "resyncing")

	assert.Equal(t, c.Has("a"), false, "tombstoned row should not be resurrected")
	assert.Equal(t, c.Tombstones().Has("a"), true, "unconfirmed tombstone should be kept")
}

func TestMerge_tombstone(t *testing.T) {
	c, clk, _ := setup(&fakeSource{})
	c.Merge([]item{{ID: "a"}, {ID: "b"}})

	assert.NoError(t, c.Delete("a"), "deleting a")
	c.Tombstones().Add("a", clk.Now())

	c.Merge([]item{{ID: "a", Title: "lagging"}, {ID: "b", Title: "fresh"}})

	assert.Equal(t, c.Has("a"), false, "tombstoned row should not be resurrected")
	got, _ := c.Get("b")
	assert.Equal(t, got.Title, "fresh", "other rows should merge")
}

func TestResync_prunesConfirmedTombstones(t *testing.T) {
	src := &fakeSource{}
	c, clk, _ := setup(src)
	c.Merge([]item{{ID: "a"}, {ID: "b"}})
	c.SetCursor(clk.Now())

	clk.Advance(time.Second)
	assert.NoError(t, c.Delete("a"), "deleting a")
	c.Tombstones().Add("a", clk.Now())
	c.Tombstones().Confirm("a", clk.Now())

	// window still covers the deletion and the server lags
	src.rows = []item{{ID: "a"}}
	clk.Advance(time.Second)
	assert.NoError(t, c.Resync(context.Background()), "resyncing")
	assert.Equal(t, c.Has("a"), false, "row should stay deleted")
	assert.Equal(t, c.Tombstones().Has("a"), true, "tombstone should be kept")

	// next window starts after the deletion and does not carry the id
	src.rows = nil
	clk.Advance(time.Second)
	assert.NoError(t, c.Resync(context.Background()), "resyncing")
	assert.Equal(t, c.Tombstones().Len(), 0, "tombstone should be pruned")
}

func TestResync_skipsPendingWrites(t *testing.T) {
	src := &fakeSource{}
	c, _, _ := setup(src)
	c.Merge([]item{{ID: "a", Title: "server"}, {ID: "b", Title: "server"}})

	done := c.Track("a")
	assert.NoError(t, c.Update("a", func(n item) item {
		n.Title = "optimistic"
		return n
	}), "updating a")

	src.rows = []item{{ID: "a", Title: "stale"}, {ID: "b", Title: "fresh"}}
	assert.NoError(t, c.Resync(context.Background()), "resyncing")

	got, _ := c.Get("a")
	assert.Equal(t, got.Title, "optimistic", "pending write should not be clobbered")
	got, _ = c.Get("b")
	assert.Equal(t, got.Title, "fresh", "other rows should merge")

	done()
	assert.NoError(t, c.Resync(context.Background()), "resyncing")
	got, _ = c.Get("a")
	assert.Equal(t, got.Title, "stale", "settled row should merge again")
}

func TestResync_concurrentCallsShareFetch(t *testing.T) {
	src := &fakeSource{rows: []item{{ID: "a", Title: "server"}}}
	c, _, _ := setup(src)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	src.onSync = func() {
		once.Do(func() { close(entered) })
		<-release
	}

	const n = 4
	var started, finished sync.WaitGroup
	errs := make(chan error, n)
	started.Add(n)
	finished.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer finished.Done()
			started.Done()
			errs <- c.Resync(context.Background())
		}()
	}

	<-entered
	started.Wait()
	// let the late callers join the fetch in flight
	time.Sleep(50 * time.Millisecond)
	close(release)
	finished.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err, "resyncing")
	}
	src.mu.Lock()
	calls := len(src.calls)
	src.mu.Unlock()
	assert.Equal(t, calls, 1, "concurrent resyncs should share one fetch")
	got, _ := c.Get("a")
	assert.Equal(t, got.Title, "server", "row should be merged")
}

func TestResync_skipsWritesSettledDuringFetch(t *testing.T) {
	src := &fakeSource{}
	c, _, _ := setup(src)
	c.Merge([]item{{ID: "a", Title: "server"}})

	done := c.Track("a")
	src.rows = []item{{ID: "a", Title: "stale"}}
	src.onSync = func() {
		c.Put(item{ID: "a", Title: "confirmed"})
		done()
	}

	assert.NoError(t, c.Resync(context.Background()), "resyncing")

	got, _ := c.Get("a")
	assert.Equal(t, got.Title, "confirmed", "a write newer than the fetch should win")
}

func TestPersister(t *testing.T) {
	p := &memPersister{saved: map[string][]item{}}
	src := &fakeSource{}
	cursors := cursor.NewStore(cursor.NewMemoryStorage())
	clk := clock.NewMock()

	c := New(Config[item]{Kind: "items", UserID: "u1", Source: src, Cursors: cursors, Clock: clk, Persister: p})
	assert.Equal(t, c.Seeded(), false, "fresh collection should not be seeded")
	assert.NoError(t, c.Replace([]item{{ID: "a"}, {ID: "gone", Deleted: true}}), "replacing")
	assert.Equal(t, c.Seeded(), true, "replaced collection should be seeded")

	reloaded := New(Config[item]{Kind: "items", UserID: "u1", Source: src, Cursors: cursors, Clock: clk, Persister: p})
	assert.Equal(t, reloaded.Seeded(), true, "loaded collection should be seeded")
	assert.DeepEqual(t, ids(reloaded.Query()), []string{"a"}, "loaded rows mismatch")

	other := New(Config[item]{Kind: "items", UserID: "u2", Source: src, Cursors: cursors, Clock: clk, Persister: p})
	assert.Equal(t, other.Len(), 0, "snapshot should be scoped per user")
}

func TestResync_snapshotFailure(t *testing.T) {
	p := &memPersister{saved: map[string][]item{}}
	src := &fakeSource{rows: []item{{ID: "a"}}}
	cursors := cursor.NewStore(cursor.NewMemoryStorage())
	c := New(Config[item]{Kind: "items", UserID: "u1", Source: src, Cursors: cursors, Clock: clock.NewMock(), Persister: p})

	p.saveErr = errors.New("disk full")
	err := c.Resync(context.Background())

	assert.NotEqual(t, err, nil, "should report the snapshot failure")
	assert.Equal(t, cursors.Get("items", "u1") == nil, true, "cursor should not advance past an unsaved snapshot")
}

func TestClose(t *testing.T) {
	c, clk, _ := setup(&fakeSource{})
	assert.NoError(t, c.Replace([]item{{ID: "a"}}), "replacing")
	c.Tombstones().Add("x", clk.Now())

	var calls int
	c.Subscribe(func(rows []item) { calls++ })
	c.Close()
	c.Put(item{ID: "b"})

	assert.Equal(t, calls, 1, "closed collection should drop subscriptions")
	assert.Equal(t, c.Seeded(), false, "closed collection should not be seeded")
	assert.Equal(t, c.Tombstones().Len(), 0, "tombstones should be cleared")
	assert.DeepEqual(t, ids(c.Query()), []string{"b"}, "rows mismatch")
}
