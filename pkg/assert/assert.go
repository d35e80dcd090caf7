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

// Package assert provides functions to assert a condition in tests
package assert

import (
	"fmt"
	"io"
	"net/http"
	"reflect"
	"runtime/debug"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func getErrorMessage(m string, a, b interface{}) string {
	return fmt.Sprintf(`%s.
Actual:
========================
%+v
========================

Expected:
========================
%+v
========================

%s`, m, a, b, string(debug.Stack()))
}

func checkEqual(a, b interface{}, message string) (bool, string) {
	if a == b {
		return true, ""
	}

	var m string
	if len(message) == 0 {
		m = fmt.Sprintf("%v != %v", a, b)
	} else {
		m = message
	}
	errorMessage := getErrorMessage(m, a, b)

	return false, errorMessage
}

// Equal errors a test if the actual does not match the expected
func Equal(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	ok, m := checkEqual(a, b, message)
	if !ok {
		t.Error(m)
	}
}

// NotEqual fails a test if the actual matches the expected
func NotEqual(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	ok, m := checkEqual(a, b, message)
	if ok {
		t.Error(m)
	}
}

// DeepEqual fails a test if the actual does not deeply equal the expected.
// Nil and empty slices and maps are considered equal.
func DeepEqual(t *testing.T, a interface{}, b interface{}, message string) {
	t.Helper()

	if !cmp.Equal(a, b, cmpopts.EquateEmpty()) {
		t.Errorf("%s.\n%s", message, cmp.Diff(b, a, cmpopts.EquateEmpty()))
	}
}

// NoError fails a test immediately if the given error is not nil
func NoError(t *testing.T, err error, message string) {
	t.Helper()

	if err != nil {
		t.Fatalf("%s: %+v", message, err)
	}
}

// IsNil errors a test if the given value is not nil
func IsNil(t *testing.T, v interface{}, message string) {
	t.Helper()

	if v == nil {
		return
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return
		}
	}

	t.Errorf("%s: expected nil, got %+v", message, v)
}

// StatusCodeEquals fails a test if the status code of the response does not
// match the expected one. The response body is printed on mismatch.
func StatusCodeEquals(t *testing.T, res *http.Response, expected int, message string) {
	t.Helper()

	if res.StatusCode == expected {
		return
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("%s: reading body: %v", message, err)
	}

	t.Fatalf("%s: status code mismatch. Expected: %d. Got: %d. Body: %s", message, expected, res.StatusCode, string(body))
}
