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

package clock

import (
	"testing"
	"time"
)

func TestMockAdvance(t *testing.T) {
	c := NewMock()
	start := c.Now()

	got := c.Advance(90 * time.Second)

	if !got.Equal(start.Add(90 * time.Second)) {
		t.Fatalf("advanced time mismatch. got %s", got)
	}
	if !c.Now().Equal(got) {
		t.Fatalf("Now() did not reflect the advanced time. got %s", c.Now())
	}
}

func TestMockSetNow(t *testing.T) {
	c := NewMock()
	want := time.Date(2024, time.July, 4, 12, 0, 0, 0, time.UTC)

	c.SetNow(want)

	if !c.Now().Equal(want) {
		t.Fatalf("expected %s, got %s", want, c.Now())
	}
}
