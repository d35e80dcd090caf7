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
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/daylilycatalog/catalog/pkg/assert"
	"github.com/pkg/errors"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(prev)
		SetLevel(LevelInfo)
	})

	return &buf
}

func TestSetLevel(t *testing.T) {
	defer SetLevel(LevelInfo)

	SetLevel(LevelDebug)
	assert.Equal(t, GetLevel(), LevelDebug, "level mismatch")

	SetLevel(LevelError)
	assert.Equal(t, GetLevel(), LevelError, "level mismatch")
}

func TestIsLevel(t *testing.T) {
	testCases := []struct {
		level    string
		expected bool
	}{
		{LevelDebug, true},
		{LevelInfo, true},
		{LevelWarn, true},
		{LevelError, true},
		{"trace", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			assert.Equal(t, IsLevel(tc.level), tc.expected, "result mismatch")
		})
	}
}

func TestShouldLog(t *testing.T) {
	defer SetLevel(LevelInfo)

	testCases := []struct {
		currentLevel string
		logLevel     string
		expected     bool
	}{
		{LevelDebug, LevelDebug, true},
		{LevelDebug, LevelError, true},
		{LevelInfo, LevelDebug, false},
		{LevelInfo, LevelInfo, true},
		{LevelInfo, LevelWarn, true},
		{LevelWarn, LevelInfo, false},
		{LevelWarn, LevelWarn, true},
		{LevelError, LevelWarn, false},
		{LevelError, LevelError, true},
	}

	for _, tc := range testCases {
		SetLevel(tc.currentLevel)
		assert.Equal(t, shouldLog(tc.logLevel), tc.expected, fmt.Sprintf("current %s, log %s", tc.currentLevel, tc.logLevel))
	}
}

func TestWithFields(t *testing.T) {
	buf := captureOutput(t)

	WithFields(Fields{
		"kind":  "listings",
		"count": 3,
		"err":   errors.New("boom"),
	}).Warn("expunged rows")

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(errors.Wrap(err, "decoding log line"))
	}

	assert.Equal(t, got["level"], LevelWarn, "level mismatch")
	assert.Equal(t, got["msg"], "expunged rows", "msg mismatch")
	assert.Equal(t, got["kind"], "listings", "kind mismatch")
	assert.Equal(t, got["count"], float64(3), "count mismatch")
	assert.Equal(t, got["err"], "boom", "err mismatch")
}

func TestWrite_filtered(t *testing.T) {
	buf := captureOutput(t)
	SetLevel(LevelWarn)

	Debug("debug")
	Info("info")
	Warn("warn")
	ErrorWrap(errors.New("cause"), "failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, len(lines), 2, "line count mismatch")
	assert.Equal(t, strings.Contains(lines[0], `"msg":"warn"`), true, "first line mismatch")
	assert.Equal(t, strings.Contains(lines[1], `"msg":"failed: cause"`), true, "second line mismatch")
}
