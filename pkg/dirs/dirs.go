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

// Package dirs provides base directory definitions for the system following
// the XDG base directory layout
package dirs

import (
	"os"
	"os/user"
	"path/filepath"

	"github.com/pkg/errors"
)

// The environment variable names for the XDG base directory specification
const (
	envConfigHome = "XDG_CONFIG_HOME"
	envDataHome   = "XDG_DATA_HOME"
	envCacheHome  = "XDG_CACHE_HOME"
)

// Dirs is a set of base directories
type Dirs struct {
	Home       string
	ConfigHome string
	DataHome   string
	CacheHome  string
}

var (
	// Home is the home directory of the user
	Home string
	// ConfigHome is the directory in which user-specific configurations are written
	ConfigHome string
	// DataHome is the directory in which user-specific data files are written
	DataHome string
	// CacheHome is the directory in which non-essential cached data is written
	CacheHome string
)

func init() {
	Reload()
}

// Reload reloads the directory definitions from the environment
func Reload() {
	d := Resolve(getHomeDir(), os.Getenv)

	Home = d.Home
	ConfigHome = d.ConfigHome
	DataHome = d.DataHome
	CacheHome = d.CacheHome
}

// Resolve computes the base directories for the given home directory, letting
// non-empty environment values take precedence over the defaults
func Resolve(home string, getenv func(string) string) Dirs {
	read := func(envName, defaultPath string) string {
		if dir := getenv(envName); dir != "" {
			return dir
		}

		return defaultPath
	}

	return Dirs{
		Home:       home,
		ConfigHome: read(envConfigHome, filepath.Join(home, ".config")),
		DataHome:   read(envDataHome, filepath.Join(home, ".local", "share")),
		CacheHome:  read(envCacheHome, filepath.Join(home, ".cache")),
	}
}

func getHomeDir() string {
	usr, err := user.Current()
	if err != nil {
		panic(errors.Wrap(err, "getting home dir"))
	}

	return usr.HomeDir
}
