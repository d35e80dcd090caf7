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

package prompt

import (
	"strings"
	"testing"

	"github.com/daylilycatalog/catalog/pkg/assert"
)

func TestFormatQuestion(t *testing.T) {
	assert.Equal(t, FormatQuestion("Discard local state?", false), "Discard local state? (y/N)", "pessimistic")
	assert.Equal(t, FormatQuestion("Continue?", true), "Continue? (Y/n)", "optimistic")
}

func TestReadYesNo(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		def      bool
		expected bool
		err      error
	}{
		{name: "y", input: "y\n", expected: true},
		{name: "uppercase yes", input: "YES\n", expected: true},
		{name: "n with default yes", input: "n\n", def: true, expected: false},
		{name: "empty with default no", input: "\n", expected: false},
		{name: "whitespace with default yes", input: "  \n", def: true, expected: true},
		{name: "no trailing newline", input: "y", expected: true},
		{name: "eof with default yes", input: "", def: true, expected: true},
		{name: "invalid", input: "maybe\n", def: true, expected: false, err: ErrInvalidAnswer},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ReadYesNo(strings.NewReader(tc.input), tc.def)

			assert.Equal(t, err, tc.err, "error mismatch")
			assert.Equal(t, result, tc.expected, "result mismatch")
		})
	}
}
