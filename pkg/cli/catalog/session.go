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

// Package catalog wires the collections and writes of every entity kind into
// a session owned by one signed-in user
package catalog

import (
	"context"
	"encoding/json"

	"github.com/daylilycatalog/catalog/pkg/cli/bootstrap"
	"github.com/daylilycatalog/catalog/pkg/cli/client"
	"github.com/daylilycatalog/catalog/pkg/cli/collection"
	"github.com/daylilycatalog/catalog/pkg/cli/cursor"
	"github.com/daylilycatalog/catalog/pkg/cli/mutation"
	"github.com/daylilycatalog/catalog/pkg/clock"
	"github.com/pkg/errors"
)

// Resource is the remote data service of one writable entity kind
type Resource[R collection.Row, C any, P any] interface {
	collection.Source[R]
	mutation.Remote[R, C, P]
}

// ListResource is the remote data service of lists
type ListResource interface {
	Resource[client.List, client.ListInput, client.ListPatch]
	AddMember(ctx context.Context, listID, listingID string) (client.List, error)
	RemoveMember(ctx context.Context, listID, listingID string) (client.List, error)
}

// CultivarResource is the remote data service of cultivar references
type CultivarResource interface {
	collection.Source[client.CultivarReference]
	GetByIDs(ctx context.Context, ids []string) ([]client.CultivarReference, error)
}

// Remote groups the remote data services of every entity kind
type Remote struct {
	Listings  Resource[client.Listing, client.ListingInput, client.ListingPatch]
	Lists     ListResource
	Images    Resource[client.Image, client.ImageInput, client.ImagePatch]
	Cultivars CultivarResource
}

// NewRemote returns the HTTP data services reached through c
func NewRemote(c *client.Client) Remote {
	return Remote{
		Listings:  client.NewResource[client.Listing, client.ListingInput, client.ListingPatch](c, client.KindListings),
		Lists:     client.NewListResource(c),
		Images:    client.NewResource[client.Image, client.ImageInput, client.ImagePatch](c, client.KindImages),
		Cultivars: client.NewResource[client.CultivarReference, struct{}, struct{}](c, client.KindCultivarReferences),
	}
}

// SnapshotStore persists serialized collection snapshots
type SnapshotStore interface {
	LoadSnapshot(kind, userID string) ([]byte, bool, error)
	SaveSnapshot(kind, userID string, data []byte) error
}

// jsonPersister stores the rows of one collection as JSON in a SnapshotStore
type jsonPersister[R collection.Row] struct {
	store SnapshotStore
}

func (p jsonPersister[R]) Load(kind, userID string) ([]R, bool, error) {
	b, ok, err := p.store.LoadSnapshot(kind, userID)
	if err != nil || !ok {
		return nil, false, err
	}

	var rows []R
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, false, errors.Wrapf(err, "decoding %s snapshot", kind)
	}

	return rows, true, nil
}

func (p jsonPersister[R]) Save(kind, userID string, rows []R) error {
	b, err := json.Marshal(rows)
	if err != nil {
		return errors.Wrapf(err, "encoding %s snapshot", kind)
	}

	return p.store.SaveSnapshot(kind, userID, b)
}

func persister[R collection.Row](s SnapshotStore) collection.Persister[R] {
	if s == nil {
		return nil
	}

	return jsonPersister[R]{store: s}
}

// Options configures a session
type Options struct {
	UserID  string
	Remote  Remote
	Cursors *cursor.Store
	Clock   clock.Clock
	// Snapshots keeps the collections between processes. Collections live
	// in memory only when it is nil.
	Snapshots SnapshotStore
}

// Session owns the collections of one user for the lifetime of a sign-in.
// A different user needs a new session.
type Session struct {
	userID string

	Listings   *Listings
	Lists      *Lists
	Images     *Images
	Cultivars  *Cultivars
	Membership *Membership
}

// New returns a session for the given options
func New(opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Cursors == nil {
		opts.Cursors = cursor.NewStore(cursor.NewMemoryStorage())
	}

	cultivars := newCultivars(collection.New(collection.Config[client.CultivarReference]{
		Kind:      client.KindCultivarReferences,
		UserID:    opts.UserID,
		Source:    opts.Remote.Cultivars,
		Cursors:   opts.Cursors,
		Clock:     opts.Clock,
		Persister: persister[client.CultivarReference](opts.Snapshots),
		Less:      cultivarLess,
	}), opts.Remote.Cultivars)

	listings := newListings(collection.New(collection.Config[client.Listing]{
		Kind:      client.KindListings,
		UserID:    opts.UserID,
		Source:    opts.Remote.Listings,
		Cursors:   opts.Cursors,
		Clock:     opts.Clock,
		Persister: persister[client.Listing](opts.Snapshots),
		Less:      listingLess,
	}), opts.Remote.Listings, cultivars)

	lists := newLists(collection.New(collection.Config[client.List]{
		Kind:      client.KindLists,
		UserID:    opts.UserID,
		Source:    opts.Remote.Lists,
		Cursors:   opts.Cursors,
		Clock:     opts.Clock,
		Persister: persister[client.List](opts.Snapshots),
		Less:      listLess,
	}), opts.Remote.Lists)

	images := newImages(collection.New(collection.Config[client.Image]{
		Kind:      client.KindImages,
		UserID:    opts.UserID,
		Source:    opts.Remote.Images,
		Cursors:   opts.Cursors,
		Clock:     opts.Clock,
		Persister: persister[client.Image](opts.Snapshots),
		Less:      imageLess,
	}), opts.Remote.Images)

	return &Session{
		userID:     opts.UserID,
		Listings:   listings,
		Lists:      lists,
		Images:     images,
		Cultivars:  cultivars,
		Membership: newMembership(lists, listings, images, opts.Remote.Lists),
	}
}

// UserID returns the id of the user owning the session
func (s *Session) UserID() string {
	return s.userID
}

// targets returns the bootstrap targets of the given kinds, or of every kind
// when none is given
func (s *Session) targets(kinds ...string) ([]bootstrap.Target, error) {
	all := []bootstrap.Target{
		bootstrap.For(s.Listings.Collection()),
		bootstrap.For(s.Lists.Collection()),
		bootstrap.For(s.Images.Collection()),
		bootstrap.For(s.Cultivars.Collection()),
	}
	if len(kinds) == 0 {
		return all, nil
	}

	var ret []bootstrap.Target
	for _, k := range kinds {
		var found bool
		for _, t := range all {
			if t.Kind() == k {
				ret = append(ret, t)
				found = true
			}
		}
		if !found {
			return nil, errors.Errorf("unknown kind '%s'", k)
		}
	}

	return ret, nil
}

// Sync seeds the collections of the given kinds that are not seeded yet and
// resyncs the others. It syncs every kind when none is given.
func (s *Session) Sync(ctx context.Context, kinds ...string) error {
	targets, err := s.targets(kinds...)
	if err != nil {
		return err
	}

	return bootstrap.All(ctx, targets...)
}

// Reseed re-seeds the collections of the given kinds, or of every kind when
// none is given
func (s *Session) Reseed(ctx context.Context, kinds ...string) error {
	targets, err := s.targets(kinds...)
	if err != nil {
		return err
	}

	return bootstrap.ReseedAll(ctx, targets...)
}

// Close drops the state of every collection
func (s *Session) Close() {
	s.Listings.Collection().Close()
	s.Lists.Collection().Close()
	s.Images.Collection().Close()
	s.Cultivars.Collection().Close()
}
