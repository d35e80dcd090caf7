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

	"github.com/daylilycatalog/catalog/pkg/cli/client"
	"github.com/daylilycatalog/catalog/pkg/cli/collection"
	"github.com/daylilycatalog/catalog/pkg/cli/mutation"
	"github.com/pkg/errors"
)

// Lists is the lists collection and its writes. Membership edits go through
// Membership.
type Lists struct {
	*mutation.Mutator[client.List, client.ListInput, client.ListPatch]
}

func newLists(
	c *collection.Collection[client.List],
	remote mutation.Remote[client.List, client.ListInput, client.ListPatch],
) *Lists {
	return &Lists{
		Mutator: mutation.New[client.List, client.ListInput, client.ListPatch](c, remote, listKind{}),
	}
}

// All returns every list
func (l *Lists) All() []client.List {
	return l.Collection().Query()
}

// Get returns the list with the given id
func (l *Lists) Get(id string) (client.List, bool) {
	return l.Collection().Get(id)
}

// Membership keeps the listing membership of lists. A list's Listings field
// is the only record of membership, and the lists and listings collections
// sync independently: a listing deleted elsewhere stays in the lists holding
// it until those lists are resynced. InvalidateRelated resyncs them on demand.
type Membership struct {
	lists    *Lists
	listings *Listings
	images   *Images
	remote   ListResource
}

func newMembership(lists *Lists, listings *Listings, images *Images, remote ListResource) *Membership {
	return &Membership{
		lists:    lists,
		listings: listings,
		images:   images,
		remote:   remote,
	}
}

// restoreMembers rolls back only the membership of a list
func restoreMembers(cur, prev client.List) client.List {
	cur.Listings = prev.Listings
	return cur
}

// AddListing adds a listing to a list. A listing already in the list is not
// added twice.
func (m *Membership) AddListing(ctx context.Context, listID, listingID string) (client.List, error) {
	if client.IsTempID(listingID) {
		return client.List{}, errors.Wrapf(mutation.ErrUnsaved, "adding %s", listingID)
	}

	apply := func(l client.List) client.List {
		if l.HasMember(listingID) {
			return l
		}

		members := make([]client.ListMember, 0, len(l.Listings)+1)
		members = append(members, l.Listings...)
		l.Listings = append(members, client.ListMember{ID: listingID})
		return l
	}

	return m.lists.Relate(ctx, listID, apply, restoreMembers, func(ctx context.Context) (client.List, error) {
		return m.remote.AddMember(ctx, listID, listingID)
	})
}

// RemoveListing removes a listing from a list
func (m *Membership) RemoveListing(ctx context.Context, listID, listingID string) (client.List, error) {
	apply := func(l client.List) client.List {
		members := make([]client.ListMember, 0, len(l.Listings))
		for _, member := range l.Listings {
			if member.ID != listingID {
				members = append(members, member)
			}
		}
		l.Listings = members
		return l
	}

	return m.lists.Relate(ctx, listID, apply, restoreMembers, func(ctx context.Context) (client.List, error) {
		return m.remote.RemoveMember(ctx, listID, listingID)
	})
}

// ListsContaining returns the lists holding the given listing
func (m *Membership) ListsContaining(listingID string) []client.List {
	return m.lists.Collection().Where(func(l client.List) bool {
		return l.HasMember(listingID)
	})
}

// Members returns the listings of a list that are held locally. Member ids
// without a local listing are skipped.
func (m *Membership) Members(listID string) ([]client.Listing, error) {
	l, ok := m.lists.Get(listID)
	if !ok {
		return nil, errors.Wrapf(collection.ErrNotFound, "getting list %s", listID)
	}

	var ret []client.Listing
	for _, member := range l.Listings {
		if listing, ok := m.listings.Get(member.ID); ok {
			ret = append(ret, listing)
		}
	}

	return ret, nil
}

// Dangling maps the id of every list holding member ids without a local
// listing to those ids
func (m *Membership) Dangling() map[string][]string {
	ret := map[string][]string{}
	for _, l := range m.lists.All() {
		for _, member := range l.Listings {
			if !m.listings.Collection().Has(member.ID) {
				ret[l.ID] = append(ret[l.ID], member.ID)
			}
		}
	}

	return ret
}

// InvalidateRelated resyncs the collections whose rows may refer to rows of
// the given kind. Call it after writes known to affect those references,
// such as deleting a listing.
func (m *Membership) InvalidateRelated(ctx context.Context, kind string) error {
	switch kind {
	case client.KindListings:
		if err := m.lists.Collection().Resync(ctx); err != nil {
			return errors.Wrap(err, "resyncing lists")
		}
		if err := m.images.Collection().Resync(ctx); err != nil {
			return errors.Wrap(err, "resyncing images")
		}
	case client.KindLists, client.KindImages, client.KindCultivarReferences:
		return nil
	default:
		return errors.Errorf("unknown kind '%s'", kind)
	}

	return nil
}
