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

// Package testutils provides utilities used in tests of the catalog binary
package testutils

import (
	"bufio"
	"bytes"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
)

// Prompts for user input
const (
	PromptFullSync      = "A full sync replaces the local catalog"
	PromptRemoveListing = "remove this listing?"
)

// Timeout for waiting for prompts in tests
const promptTimeout = 10 * time.Second

// RunCmdOptions is an option for RunCmd
type RunCmdOptions struct {
	Env []string
}

// NewCmd returns a new command running the binary along with pointers to
// stderr and stdout
func NewCmd(opts RunCmdOptions, binaryName string, arg ...string) (*exec.Cmd, *bytes.Buffer, *bytes.Buffer, error) {
	var stderr, stdout bytes.Buffer

	binaryPath, err := filepath.Abs(binaryName)
	if err != nil {
		return &exec.Cmd{}, &stderr, &stdout, errors.Wrap(err, "getting the absolute path to the test binary")
	}

	cmd := exec.Command(binaryPath, arg...)
	cmd.Stderr = &stderr
	cmd.Stdout = &stdout
	cmd.Env = opts.Env

	return cmd, &stderr, &stdout, nil
}

// RunCmd runs a catalog command and returns its stdout. It fails the test if
// the command fails.
func RunCmd(t *testing.T, opts RunCmdOptions, binaryName string, arg ...string) string {
	out, err := TryCmd(t, opts, binaryName, arg...)
	if err != nil {
		t.Fatal(err)
	}

	return out
}

// TryCmd runs a catalog command and returns its stdout and the error it
// exited with, if any
func TryCmd(t *testing.T, opts RunCmdOptions, binaryName string, arg ...string) (string, error) {
	t.Logf("running: %s %s", binaryName, strings.Join(arg, " "))

	cmd, stderr, stdout, err := NewCmd(opts, binaryName, arg...)
	if err != nil {
		return "", errors.Wrap(err, "getting command")
	}

	err = cmd.Run()
	t.Logf("\n%s", stdout)
	if err != nil {
		return stdout.String(), errors.Wrapf(err, "running command %s", stderr.String())
	}

	return stdout.String(), nil
}

// WaitCmd runs a catalog command and passes stdout and stdin to the callback
func WaitCmd(t *testing.T, opts RunCmdOptions, runFunc func(io.Reader, io.WriteCloser) error, binaryName string, arg ...string) (string, error) {
	t.Logf("running: %s %s", binaryName, strings.Join(arg, " "))

	binaryPath, err := filepath.Abs(binaryName)
	if err != nil {
		return "", errors.Wrap(err, "getting absolute path to test binary")
	}

	cmd := exec.Command(binaryPath, arg...)
	cmd.Env = opts.Env

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", errors.Wrap(err, "getting stdout pipe")
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", errors.Wrap(err, "getting stdin")
	}
	defer stdin.Close()

	if err = cmd.Start(); err != nil {
		return "", errors.Wrap(err, "starting command")
	}

	var output bytes.Buffer
	tee := io.TeeReader(stdout, &output)

	if err := runFunc(tee, stdin); err != nil {
		t.Logf("\n%s", output.String())
		return output.String(), errors.Wrap(err, "running callback")
	}

	io.Copy(&output, stdout)

	if err := cmd.Wait(); err != nil {
		t.Logf("\n%s", output.String())
		return output.String(), errors.Wrapf(err, "command failed: %s", stderr.String())
	}

	t.Logf("\n%s", output.String())
	return output.String(), nil
}

// MustWaitCmd runs WaitCmd and fails the test if it returns an error
func MustWaitCmd(t *testing.T, opts RunCmdOptions, runFunc func(io.Reader, io.WriteCloser) error, binaryName string, arg ...string) string {
	output, err := WaitCmd(t, opts, runFunc, binaryName, arg...)
	if err != nil {
		t.Fatal(err)
	}

	return output
}

// waitForPrompt waits for an expected prompt to appear in stdout with a timeout.
// Prompts do not end with a newline so stdout is read byte by byte.
func waitForPrompt(stdout io.Reader, expectedPrompt string, timeout time.Duration) error {
	resultCh := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(stdout)
		var buffer strings.Builder

		for {
			b, err := reader.ReadByte()
			if err == io.EOF {
				resultCh <- errors.Errorf("expected prompt '%s' not found in stdout", expectedPrompt)
				return
			} else if err != nil {
				resultCh <- errors.Wrap(err, "reading stdout")
				return
			}

			buffer.WriteByte(b)
			if strings.Contains(buffer.String(), expectedPrompt) {
				resultCh <- nil
				return
			}
		}
	}()

	select {
	case err := <-resultCh:
		return err
	case <-time.After(timeout):
		return errors.Errorf("timeout waiting for prompt '%s'", expectedPrompt)
	}
}

func respond(stdout io.Reader, stdin io.WriteCloser, expectedPrompt, response string) error {
	if err := waitForPrompt(stdout, expectedPrompt, promptTimeout); err != nil {
		return err
	}

	if _, err := io.WriteString(stdin, response); err != nil {
		return errors.Wrap(err, "writing response to stdin")
	}

	return nil
}

// ConfirmFullSync waits for the full sync prompt and confirms
func ConfirmFullSync(stdout io.Reader, stdin io.WriteCloser) error {
	return respond(stdout, stdin, PromptFullSync, "y\n")
}

// CancelFullSync waits for the full sync prompt and cancels
func CancelFullSync(stdout io.Reader, stdin io.WriteCloser) error {
	return respond(stdout, stdin, PromptFullSync, "n\n")
}

// ConfirmRemoveListing waits for the prompt for removing a listing and confirms
func ConfirmRemoveListing(stdout io.Reader, stdin io.WriteCloser) error {
	return respond(stdout, stdin, PromptRemoveListing, "y\n")
}
