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

package listings

import (
	"testing"

	"github.com/daylilycatalog/catalog/pkg/assert"
	"github.com/daylilycatalog/catalog/pkg/cli/context"
	"github.com/spf13/cobra"
)

func findCmd(t *testing.T, parent *cobra.Command, name string) *cobra.Command {
	for _, c := range parent.Commands() {
		if c.Name() == name {
			return c
		}
	}

	t.Fatalf("command %s not found", name)
	return nil
}

func TestBuildPatch(t *testing.T) {
	cmd := NewCmd(context.CatalogCtx{})

	edit := findCmd(t, cmd, "edit")
	_, changed, err := buildPatch(edit)
	assert.NoError(t, err, "building empty patch")
	assert.Equal(t, changed, false, "no flag should be changed")

	assert.NoError(t, edit.Flags().Set("price", "12.5"), "setting price")
	assert.NoError(t, edit.Flags().Set("status", "published"), "setting status")

	p, changed, err := buildPatch(edit)
	assert.NoError(t, err, "building patch")
	assert.Equal(t, changed, true, "flags should be changed")
	assert.Equal(t, p.Title == nil, true, "title should be untouched")
	assert.Equal(t, p.Description == nil, true, "description should be untouched")
	assert.Equal(t, *p.Price, 12.5, "price mismatch")
	assert.Equal(t, *p.Status, "published", "status mismatch")
}

func TestBuildPatch_invalid(t *testing.T) {
	cmd := NewCmd(context.CatalogCtx{})

	add := findCmd(t, cmd, "add")
	assert.NoError(t, add.Flags().Set("status", "archived"), "setting status")

	_, _, err := buildPatch(add)
	assert.NotEqual(t, err, nil, "unknown status should be rejected")
}
