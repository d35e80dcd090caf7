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

// Listings is the listings collection and its writes
type Listings struct {
	*mutation.Mutator[client.Listing, client.ListingInput, client.ListingPatch]
	cultivars *Cultivars
}

func newListings(
	c *collection.Collection[client.Listing],
	remote mutation.Remote[client.Listing, client.ListingInput, client.ListingPatch],
	cultivars *Cultivars,
) *Listings {
	return &Listings{
		Mutator:   mutation.New[client.Listing, client.ListingInput, client.ListingPatch](c, remote, listingKind{}),
		cultivars: cultivars,
	}
}

// All returns every listing
func (l *Listings) All() []client.Listing {
	return l.Collection().Query()
}

// Get returns the listing with the given id
func (l *Listings) Get(id string) (client.Listing, bool) {
	return l.Collection().Get(id)
}

// Cultivar returns the cultivar reference the listing links to, fetching it
// when it is not held locally. It reports false when the listing links to no
// cultivar or the server does not know the linked one.
func (l *Listings) Cultivar(ctx context.Context, listing client.Listing) (client.CultivarReference, bool, error) {
	if listing.CultivarReferenceID == nil {
		return client.CultivarReference{}, false, nil
	}

	id := *listing.CultivarReferenceID
	if err := l.cultivars.Hydrate(ctx, []string{id}); err != nil {
		return client.CultivarReference{}, false, errors.Wrap(err, "hydrating cultivar reference")
	}

	ref, ok := l.cultivars.Get(id)
	return ref, ok, nil
}
