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

package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/daylilycatalog/catalog/pkg/cli/client"
	"github.com/daylilycatalog/catalog/pkg/cli/collection"
	"github.com/daylilycatalog/catalog/pkg/clock"
)

// fakeServer is an in-memory data service that soft-deletes rows the way the
// real one does
type fakeServer struct {
	mu     sync.Mutex
	clock  *clock.Mock
	nextID int
	// err fails every write while set
	err error

	listings  map[string]client.Listing
	lists     map[string]client.List
	images    map[string]client.Image
	cultivars map[string]client.CultivarReference

	byIDsCalls [][]string
}

func newFakeServer(clk *clock.Mock) *fakeServer {
	return &fakeServer{
		clock:     clk,
		listings:  map[string]client.Listing{},
		lists:     map[string]client.List{},
		images:    map[string]client.Image{},
		cultivars: map[string]client.CultivarReference{},
	}
}

func (s *fakeServer) remote() Remote {
	return Remote{
		Listings:  fakeListings{s},
		Lists:     fakeLists{s},
		Images:    fakeImages{s},
		Cultivars: fakeCultivars{s},
	}
}

func (s *fakeServer) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

// now returns the server time and moves the clock so that every write gets a
// distinct timestamp
func (s *fakeServer) now() time.Time {
	return s.clock.Advance(time.Millisecond)
}

func syncRows[R collection.Row](m map[string]R, since *time.Time) []R {
	var ret []R
	for _, r := range m {
		if since == nil || !r.RowUpdatedAt().Before(*since) {
			ret = append(ret, r)
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].RowID() < ret[j].RowID() })
	return ret
}

func liveRows[R collection.Row](m map[string]R) []R {
	var ret []R
	for _, r := range m {
		if !r.IsDeleted() {
			ret = append(ret, r)
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].RowID() < ret[j].RowID() })
	return ret
}

type fakeListings struct{ s *fakeServer }

func (f fakeListings) Sync(ctx context.Context, since *time.Time) ([]client.Listing, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return syncRows(f.s.listings, since), nil
}

func (f fakeListings) List(ctx context.Context) ([]client.Listing, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return liveRows(f.s.listings), nil
}

func (f fakeListings) Create(ctx context.Context, input client.ListingInput) (client.Listing, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return client.Listing{}, f.s.err
	}

	now := f.s.now()
	l := listingKind{}.MakeTemp(f.s.newID("listing"), input, now)
	l.UserID = "u1"
	l.Slug = fmt.Sprintf("%s-%d", input.Title, f.s.nextID)
	f.s.listings[l.ID] = l
	return l, nil
}

func (f fakeListings) Update(ctx context.Context, id string, patch client.ListingPatch) (client.Listing, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return client.Listing{}, f.s.err
	}

	l := listingKind{}.ApplyPatch(f.s.listings[id], patch)
	l.UpdatedAt = f.s.now()
	f.s.listings[id] = l
	return l, nil
}

func (f fakeListings) Delete(ctx context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return f.s.err
	}
	f.s.deleteListing(id)
	return nil
}

// deleteListing soft-deletes a listing along with its images and membership
func (s *fakeServer) deleteListing(id string) {
	now := s.now()

	l, ok := s.listings[id]
	if !ok {
		return
	}
	l.Deleted = true
	l.UpdatedAt = now
	s.listings[id] = l

	for lid, list := range s.lists {
		if list.HasMember(id) {
			list = removeMember(list, id)
			list.UpdatedAt = now
			s.lists[lid] = list
		}
	}
	for iid, img := range s.images {
		if img.ListingID != nil && *img.ListingID == id {
			img.Deleted = true
			img.UpdatedAt = now
			s.images[iid] = img
		}
	}
}

func removeMember(l client.List, listingID string) client.List {
	members := []client.ListMember{}
	for _, m := range l.Listings {
		if m.ID != listingID {
			members = append(members, m)
		}
	}
	l.Listings = members
	return l
}

type fakeLists struct{ s *fakeServer }

func (f fakeLists) Sync(ctx context.Context, since *time.Time) ([]client.List, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return syncRows(f.s.lists, since), nil
}

func (f fakeLists) List(ctx context.Context) ([]client.List, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return liveRows(f.s.lists), nil
}

func (f fakeLists) Create(ctx context.Context, input client.ListInput) (client.List, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return client.List{}, f.s.err
	}

	l := listKind{}.MakeTemp(f.s.newID("list"), input, f.s.now())
	f.s.lists[l.ID] = l
	return l, nil
}

func (f fakeLists) Update(ctx context.Context, id string, patch client.ListPatch) (client.List, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return client.List{}, f.s.err
	}

	l := listKind{}.ApplyPatch(f.s.lists[id], patch)
	l.UpdatedAt = f.s.now()
	f.s.lists[id] = l
	return l, nil
}

func (f fakeLists) Delete(ctx context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return f.s.err
	}

	l := f.s.lists[id]
	l.Deleted = true
	l.UpdatedAt = f.s.now()
	f.s.lists[id] = l
	return nil
}

func (f fakeLists) AddMember(ctx context.Context, listID, listingID string) (client.List, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return client.List{}, f.s.err
	}

	l := f.s.lists[listID]
	if !l.HasMember(listingID) {
		l.Listings = append(append([]client.ListMember{}, l.Listings...), client.ListMember{ID: listingID})
	}
	l.UpdatedAt = f.s.now()
	f.s.lists[listID] = l
	return l, nil
}

func (f fakeLists) RemoveMember(ctx context.Context, listID, listingID string) (client.List, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return client.List{}, f.s.err
	}

	l := removeMember(f.s.lists[listID], listingID)
	l.UpdatedAt = f.s.now()
	f.s.lists[listID] = l
	return l, nil
}

type fakeImages struct{ s *fakeServer }

func (f fakeImages) Sync(ctx context.Context, since *time.Time) ([]client.Image, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return syncRows(f.s.images, since), nil
}

func (f fakeImages) List(ctx context.Context) ([]client.Image, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return liveRows(f.s.images), nil
}

func (f fakeImages) Create(ctx context.Context, input client.ImageInput) (client.Image, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return client.Image{}, f.s.err
	}

	img := imageKind{}.MakeTemp(f.s.newID("image"), input, f.s.now())
	f.s.images[img.ID] = img
	return img, nil
}

func (f fakeImages) Update(ctx context.Context, id string, patch client.ImagePatch) (client.Image, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return client.Image{}, f.s.err
	}

	img := imageKind{}.ApplyPatch(f.s.images[id], patch)
	img.UpdatedAt = f.s.now()
	f.s.images[id] = img
	return img, nil
}

func (f fakeImages) Delete(ctx context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return f.s.err
	}

	now := f.s.now()
	img := f.s.images[id]
	img.Deleted = true
	img.UpdatedAt = now
	f.s.images[id] = img

	var siblings []client.Image
	for _, other := range f.s.images {
		if !other.Deleted && other.Parent() == img.Parent() {
			siblings = append(siblings, other)
		}
	}
	sort.Slice(siblings, func(i, j int) bool { return imageLess(siblings[i], siblings[j]) })
	for i, sib := range siblings {
		if sib.Order != i {
			sib.Order = i
			sib.UpdatedAt = now
			f.s.images[sib.ID] = sib
		}
	}
	return nil
}

type fakeCultivars struct{ s *fakeServer }

func (f fakeCultivars) Sync(ctx context.Context, since *time.Time) ([]client.CultivarReference, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return syncRows(f.s.cultivars, since), nil
}

func (f fakeCultivars) List(ctx context.Context) ([]client.CultivarReference, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return liveRows(f.s.cultivars), nil
}

func (f fakeCultivars) GetByIDs(ctx context.Context, ids []string) ([]client.CultivarReference, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	f.s.byIDsCalls = append(f.s.byIDsCalls, ids)
	var ret []client.CultivarReference
	for _, id := range ids {
		if c, ok := f.s.cultivars[id]; ok {
			ret = append(ret, c)
		}
	}
	return ret, nil
}

// memSnapshots is an in-memory SnapshotStore
type memSnapshots struct {
	data map[string][]byte
}

func (m *memSnapshots) LoadSnapshot(kind, userID string) ([]byte, bool, error) {
	b, ok := m.data[kind+"/"+userID]
	return b, ok, nil
}

func (m *memSnapshots) SaveSnapshot(kind, userID string, data []byte) error {
	m.data[kind+"/"+userID] = data
	return nil
}
