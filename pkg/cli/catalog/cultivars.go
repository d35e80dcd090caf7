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
	"github.com/pkg/errors"
)

// Cultivars is the cultivar reference collection. Cultivar references are
// shared registry data the client only reads.
type Cultivars struct {
	coll   *collection.Collection[client.CultivarReference]
	remote CultivarResource
}

func newCultivars(c *collection.Collection[client.CultivarReference], remote CultivarResource) *Cultivars {
	return &Cultivars{coll: c, remote: remote}
}

// Collection returns the underlying collection
func (c *Cultivars) Collection() *collection.Collection[client.CultivarReference] {
	return c.coll
}

// Get returns the cultivar reference with the given id
func (c *Cultivars) Get(id string) (client.CultivarReference, bool) {
	return c.coll.Get(id)
}

// Hydrate fetches the given ids that are not held locally and merges them
func (c *Cultivars) Hydrate(ctx context.Context, ids []string) error {
	var missing []string
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] || c.coll.Has(id) {
			continue
		}
		seen[id] = true
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return nil
	}

	rows, err := c.remote.GetByIDs(ctx, missing)
	if err != nil {
		return errors.Wrap(err, "getting cultivar references")
	}
	c.coll.Merge(rows)

	return nil
}
