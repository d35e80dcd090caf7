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

package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestDebugGatedByEnv(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	t.Setenv(debugEnvName, "")
	Debug("hidden %d\n", 1)
	if buf.Len() != 0 {
		t.Fatalf("expected no debug output, got %q", buf.String())
	}

	t.Setenv(debugEnvName, debugEnvValue)
	Debug("shown %d\n", 2)
	if !strings.Contains(buf.String(), "DEBUG: shown 2") {
		t.Fatalf("expected debug output, got %q", buf.String())
	}
}

func TestSuccessf(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Successf("added %s\n", "Ruffled Apricot")

	if got := buf.String(); got != "  ✔ added Ruffled Apricot\n" {
		t.Fatalf("unexpected output %q", got)
	}
}
