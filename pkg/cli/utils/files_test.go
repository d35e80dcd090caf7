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

package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/daylilycatalog/catalog/pkg/assert"
)

func TestEnsureDir(t *testing.T) {
	testPath := filepath.Join(t.TempDir(), "catalog", "nested")

	ok, err := FileExists(testPath)
	assert.NoError(t, err, "checking before creation")
	assert.Equal(t, ok, false, "dir should not exist yet")

	assert.Equal(t, EnsureDir(testPath), nil, "EnsureDir should succeed")

	info, err := os.Stat(testPath)
	assert.Equal(t, err, nil, "directory should exist")
	assert.Equal(t, info.IsDir(), true, "should be a directory")

	assert.Equal(t, EnsureDir(testPath), nil, "EnsureDir should succeed on existing directory")
}
