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

// Package prompt provides utilities for interactive yes/no prompts
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidAnswer is returned when an answer is neither yes nor no
var ErrInvalidAnswer = errors.New("answer with y or n")

// FormatQuestion formats a yes/no question with a choice indicator that
// capitalizes the default answer
func FormatQuestion(question string, def bool) string {
	choices := "(y/N)"
	if def {
		choices = "(Y/n)"
	}

	return fmt.Sprintf("%s %s", question, choices)
}

// ParseYesNo interprets an answer. An empty answer yields the default.
func ParseYesNo(input string, def bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}

	return false, ErrInvalidAnswer
}

// ReadYesNo reads one line from the reader and interprets it. A reader that
// ends without any input yields the default.
func ReadYesNo(r io.Reader, def bool) (bool, error) {
	input, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, errors.Wrap(err, "reading answer")
	}

	return ParseYesNo(input, def)
}
