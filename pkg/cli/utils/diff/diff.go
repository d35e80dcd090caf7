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

// Package diff renders line-by-line diffs of edited text by wrapping
// github.com/sergi/go-diff/diffmatchpatch
package diff

import (
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of a diffed line
type Op int

const (
	// Equal is an unchanged line
	Equal Op = iota
	// Insert is an added line
	Insert
	// Delete is a removed line
	Delete
)

// Line is a single line of a diff
type Line struct {
	Op   Op
	Text string
}

// Lines computes line-by-line diff between two strings
func Lines(s1, s2 string) []Line {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = time.Hour

	s1Chars, s2Chars, arr := dmp.DiffLinesToRunes(s1, s2)
	diffs := dmp.DiffMainRunes(s1Chars, s2Chars, false)
	diffs = dmp.DiffCharsToLines(diffs, arr)

	var ret []Line
	for _, d := range diffs {
		op := Equal
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = Insert
		case diffmatchpatch.DiffDelete:
			op = Delete
		}

		for _, text := range strings.SplitAfter(d.Text, "\n") {
			if text == "" {
				continue
			}
			ret = append(ret, Line{Op: op, Text: strings.TrimSuffix(text, "\n")})
		}
	}

	return ret
}

// Changed reports whether any line differs
func Changed(lines []Line) bool {
	for _, l := range lines {
		if l.Op != Equal {
			return true
		}
	}

	return false
}
