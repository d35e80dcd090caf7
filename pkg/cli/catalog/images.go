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
	"github.com/daylilycatalog/catalog/pkg/cli/client"
	"github.com/daylilycatalog/catalog/pkg/cli/collection"
	"github.com/daylilycatalog/catalog/pkg/cli/mutation"
)

// Images is the images collection and its writes. Inserting an image appends
// it to its parent and deleting one closes the gap it leaves.
type Images struct {
	*mutation.Mutator[client.Image, client.ImageInput, client.ImagePatch]
}

func newImages(
	c *collection.Collection[client.Image],
	remote mutation.Remote[client.Image, client.ImageInput, client.ImagePatch],
) *Images {
	return &Images{
		Mutator: mutation.New[client.Image, client.ImageInput, client.ImagePatch](c, remote, imageKind{}),
	}
}

func (i *Images) forParent(parent string) []client.Image {
	// the collection orders images by parent, then order
	return i.Collection().Where(func(img client.Image) bool {
		return img.Parent() == parent
	})
}

// ForListing returns the images of a listing in display order
func (i *Images) ForListing(listingID string) []client.Image {
	return i.forParent(client.Image{ListingID: &listingID}.Parent())
}

// ForProfile returns the images of a seller profile in display order
func (i *Images) ForProfile(profileID string) []client.Image {
	return i.forParent(client.Image{UserProfileID: &profileID}.Parent())
}
