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

package assert

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// scanUntil reads r byte by byte until the text read so far contains want
func scanUntil(r io.Reader, want string) error {
	reader := bufio.NewReader(r)
	var seen strings.Builder

	for !strings.Contains(seen.String(), want) {
		b, err := reader.ReadByte()
		if err == io.EOF {
			return errors.Errorf("output ended before '%s' appeared", want)
		} else if err != nil {
			return errors.Wrap(err, "reading output")
		}

		seen.WriteByte(b)
	}

	return nil
}

// WaitForPrompt waits until stdout prints the expected prompt. Prompts need
// not end with a newline.
func WaitForPrompt(stdout io.Reader, expectedPrompt string, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- scanUntil(stdout, expectedPrompt)
	}()

	select {
	case err := <-errCh:
		return err
	case <-time.After(timeout):
		return errors.Errorf("timeout waiting for prompt '%s'", expectedPrompt)
	}
}

// RespondToPrompt waits for a prompt and writes the response to stdin
func RespondToPrompt(stdout io.Reader, stdin io.Writer, expectedPrompt, response string, timeout time.Duration) error {
	if err := WaitForPrompt(stdout, expectedPrompt, timeout); err != nil {
		return err
	}

	if _, err := io.WriteString(stdin, response); err != nil {
		return errors.Wrap(err, "writing response to stdin")
	}

	return nil
}
