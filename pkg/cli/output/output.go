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

// Package output provides functions to print informations on the terminal
// in a consistent manner
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/daylilycatalog/catalog/pkg/cli/client"
	"github.com/daylilycatalog/catalog/pkg/cli/log"
)

const timeLayout = "Jan 2, 2006 3:04pm (MST)"

func formatPrice(p *float64) string {
	if p == nil {
		return "-"
	}

	return fmt.Sprintf("$%.2f", *p)
}

// ListingRow prints a listing on a single line
func ListingRow(l client.Listing) {
	id := l.ID
	if client.IsTempID(id) {
		id = log.ColorGray.Sprint("(unsaved)")
	}

	log.Plainf("%s %s %s %s\n", log.ColorYellow.Sprintf("(%s)", id), l.Title, formatPrice(l.Price), log.ColorGray.Sprintf("[%s]", l.Status))
}

// ListingInfo prints the details of a listing along with its cultivar
// reference and images
func ListingInfo(l client.Listing, ref *client.CultivarReference, images []client.Image) {
	log.Infof("listing id: %s\n", l.ID)
	log.Infof("title: %s\n", l.Title)
	log.Infof("status: %s\n", l.Status)
	log.Infof("price: %s\n", formatPrice(l.Price))
	log.Infof("updated at: %s\n", l.UpdatedAt.Local().Format(timeLayout))
	if ref != nil {
		log.Infof("cultivar: %s (%s, %d)\n", ref.Name, ref.Hybridizer, ref.Year)
	}
	for _, img := range images {
		log.Infof("image %d: %s\n", img.Order, img.URL)
	}

	if l.Description != "" {
		fmt.Printf("\n------------------------description------------------------\n")
		fmt.Printf("%s", strings.TrimRight(l.Description, "\n"))
		fmt.Printf("\n-----------------------------------------------------------\n")
	}
}

// ListRow prints a list on a single line
func ListRow(l client.List) {
	noun := "listings"
	if len(l.Listings) == 1 {
		noun = "listing"
	}

	log.Plainf("%s %s %s\n", log.ColorYellow.Sprintf("(%s)", l.ID), l.Title, log.ColorGray.Sprintf("(%d %s)", len(l.Listings), noun))
}

// ImageRow prints an image on a single line
func ImageRow(img client.Image) {
	log.Plainf("%s %d %s\n", log.ColorYellow.Sprintf("(%s)", img.ID), img.Order, img.URL)
}

// CultivarInfo prints registry data about a cultivar
func CultivarInfo(c client.CultivarReference) {
	log.Infof("cultivar id: %s\n", c.ID)
	log.Infof("name: %s\n", c.Name)
	log.Infof("hybridizer: %s\n", c.Hybridizer)
	log.Infof("year: %d\n", c.Year)
	log.Infof("ploidy: %s\n", c.Ploidy)
	log.Infof("bloom size: %s\n", c.BloomSize)
	log.Infof("scape height: %s\n", c.ScapeHeight)
}

// LastSync prints when the local state was last synced
func LastSync(t time.Time) {
	if t.IsZero() {
		log.Info("never synced\n")
		return
	}

	log.Infof("last synced at %s\n", t.Local().Format(timeLayout))
}
