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

package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/daylilycatalog/catalog/pkg/assert"
	"github.com/daylilycatalog/catalog/pkg/cli/consts"
	"github.com/daylilycatalog/catalog/pkg/cli/database"
	"github.com/daylilycatalog/catalog/pkg/cli/testutils"
	"github.com/daylilycatalog/catalog/pkg/cli/utils"
	"github.com/pkg/errors"
)

var binaryName = "test-catalog"

func setupTestEnv(t *testing.T) (string, testutils.RunCmdOptions) {
	testDir := t.TempDir()
	opts := testutils.RunCmdOptions{
		Env: []string{
			fmt.Sprintf("XDG_CONFIG_HOME=%s", testDir),
			fmt.Sprintf("XDG_DATA_HOME=%s", testDir),
			fmt.Sprintf("XDG_CACHE_HOME=%s", testDir),
		},
	}
	return testDir, opts
}

func TestMain(m *testing.M) {
	if err := exec.Command("go", "build", "-o", binaryName).Run(); err != nil {
		log.Print(errors.Wrap(err, "building a binary").Error())
		os.Exit(1)
	}

	code := m.Run()
	os.Remove(binaryName)
	os.Exit(code)
}

func TestInit(t *testing.T) {
	testDir, opts := setupTestEnv(t)

	testutils.RunCmd(t, opts, binaryName, "version")

	ok, err := utils.FileExists(filepath.Join(testDir, consts.CatalogDirName, consts.ConfigFilename))
	if err != nil {
		t.Fatal(errors.Wrap(err, "checking if config exists"))
	}
	assert.Equal(t, ok, true, "config file should be initialized")

	db, err := database.Open(filepath.Join(testDir, consts.CatalogDirName, consts.CatalogDBFileName))
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening database"))
	}
	defer db.Close()

	for _, table := range []string{"system", "snapshots"} {
		var count int
		database.MustScan(t, fmt.Sprintf("counting %s", table),
			db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type = ? AND name = ?", "table", table), &count)
		assert.Equal(t, count, 1, fmt.Sprintf("%s table count mismatch", table))
	}
}

func TestVersion(t *testing.T) {
	_, opts := setupTestEnv(t)

	out := testutils.RunCmd(t, opts, binaryName, "version")
	assert.Equal(t, out, "catalog master\n", "version output mismatch")
}

func TestVersion_debug(t *testing.T) {
	_, opts := setupTestEnv(t)
	opts.Env = append(opts.Env, "CATALOG_DEBUG=1")

	out := testutils.RunCmd(t, opts, binaryName, "version")
	assert.Equal(t, strings.Contains(out, "DEBUG: "), true, "debug lines should be printed")
	assert.Equal(t, strings.HasSuffix(out, "catalog master\n"), true, "version should be printed last")
}

func TestCustomDBPath(t *testing.T) {
	testDir, opts := setupTestEnv(t)
	dbPath := filepath.Join(testDir, "custom.db")

	testutils.RunCmd(t, opts, binaryName, "version", "--dbPath", dbPath)

	ok, err := utils.FileExists(dbPath)
	if err != nil {
		t.Fatal(errors.Wrap(err, "checking if db exists"))
	}
	assert.Equal(t, ok, true, "database should be created at the custom path")
}

func TestNotLoggedIn(t *testing.T) {
	_, opts := setupTestEnv(t)

	for _, args := range [][]string{{"sync"}, {"listings", "ls"}, {"lists", "ls"}} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, err := testutils.TryCmd(t, opts, binaryName, args...)
			assert.NotEqual(t, err, nil, "command should fail without a session")
		})
	}

	out := testutils.RunCmd(t, opts, binaryName, "logout")
	assert.Equal(t, strings.Contains(out, "not logged in"), true, "logout should report the missing session")
}

func TestParseFlag(t *testing.T) {
	testCases := []struct {
		args     []string
		expected string
	}{
		{args: []string{"sync", "--dbPath=/tmp/a.db"}, expected: "/tmp/a.db"},
		{args: []string{"--dbPath", "/tmp/b.db", "sync"}, expected: "/tmp/b.db"},
		{args: []string{"sync", "--dbPath"}, expected: ""},
		{args: []string{"sync"}, expected: ""},
	}

	for _, tc := range testCases {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			assert.Equal(t, parseFlag(tc.args, "dbPath"), tc.expected, "result mismatch")
		})
	}
}
