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

package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/daylilycatalog/catalog/pkg/assert"
	"github.com/daylilycatalog/catalog/pkg/cli/client"
	"github.com/daylilycatalog/catalog/pkg/cli/log"
	"github.com/fatih/color"
)

func capture(t *testing.T, fn func()) string {
	var buf bytes.Buffer
	restore := log.SetOutput(&buf)
	t.Cleanup(restore)

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	fn()
	return buf.String()
}

func TestListingRow(t *testing.T) {
	price := 25.0

	got := capture(t, func() {
		ListingRow(client.Listing{ID: "l1", Title: "Ruby Spider", Price: &price, Status: "published"})
		ListingRow(client.Listing{ID: client.TempIDPrefix + "x", Title: "Draft", Status: "draft"})
	})

	assert.Equal(t, got, "  (l1) Ruby Spider $25.00 [published]\n  ((unsaved)) Draft - [draft]\n", "output mismatch")
}

func TestListRow(t *testing.T) {
	got := capture(t, func() {
		ListRow(client.List{ID: "a", Title: "Spiders", Listings: []client.ListMember{{ID: "l1"}}})
		ListRow(client.List{ID: "b", Title: "Doubles"})
	})

	assert.Equal(t, got, "  (a) Spiders (1 listing)\n  (b) Doubles (0 listings)\n", "output mismatch")
}

func TestLastSync(t *testing.T) {
	got := capture(t, func() { LastSync(time.Time{}) })
	assert.Equal(t, strings.Contains(got, "never synced"), true, "zero time should report never")
}
