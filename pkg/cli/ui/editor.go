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

// Package ui provides the user interface for the program
package ui

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/daylilycatalog/catalog/pkg/cli/consts"
	"github.com/daylilycatalog/catalog/pkg/cli/context"
	"github.com/daylilycatalog/catalog/pkg/cli/utils"
	"github.com/pkg/errors"
)

// GetTmpContentPath returns a path, not taken by another editing session, for
// the temporary file containing content being edited
func GetTmpContentPath(ctx context.CatalogCtx) (string, error) {
	for i := 0; ; i++ {
		filename := fmt.Sprintf("%s_%d.%s", consts.TmpContentFileBase, i, consts.TmpContentFileExt)
		candidate := filepath.Join(ctx.Paths.Cache, consts.CatalogDirName, filename)

		ok, err := utils.FileExists(candidate)
		if err != nil {
			return "", errors.Wrapf(err, "checking if file exists at %s", candidate)
		}
		if !ok {
			return candidate, nil
		}
	}
}

// DefaultEditor returns the editor command for the $EDITOR of the system with
// flags, if necessary, that make the command wait until the editor exits
func DefaultEditor() string {
	switch editor := os.Getenv("EDITOR"); editor {
	case "atom":
		return "atom -w"
	case "subl":
		return "subl -n -w"
	case "code":
		return "code -n -w"
	case "mate":
		return "mate -w"
	case "vim", "nano", "emacs", "nvim", "hx":
		return editor
	default:
		return "vi"
	}
}

func newEditorCmd(ctx context.CatalogCtx, fpath string) (*exec.Cmd, error) {
	args := strings.Fields(ctx.Editor)
	if len(args) == 0 {
		return nil, errors.New("no editor is configured")
	}
	args = append(args, fpath)

	return exec.Command(args[0], args[1:]...), nil
}

// GetEditorInput writes the initial content to a temporary file, launches a
// text editor on it and returns the content once the editor exits
func GetEditorInput(ctx context.CatalogCtx, initial string) (string, error) {
	fpath, err := GetTmpContentPath(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting temporary content file path")
	}

	if err := os.WriteFile(fpath, []byte(initial), 0644); err != nil {
		return "", errors.Wrap(err, "preparing the temporary content file")
	}
	defer os.Remove(fpath)

	cmd, err := newEditorCmd(ctx, fpath)
	if err != nil {
		return "", errors.Wrap(err, "creating an editor command")
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", errors.Wrap(err, "running the editor")
	}

	b, err := os.ReadFile(fpath)
	if err != nil {
		return "", errors.Wrap(err, "reading the temporary content file")
	}

	return string(b), nil
}
