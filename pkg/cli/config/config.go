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

// Package config reads and writes the catalog config file
package config

import (
	"os"
	"path/filepath"

	"github.com/daylilycatalog/catalog/pkg/cli/consts"
	"github.com/daylilycatalog/catalog/pkg/cli/context"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config holds catalog configuration
type Config struct {
	Editor      string `yaml:"editor"`
	APIEndpoint string `yaml:"apiEndpoint"`
}

// GetPath returns the path to the catalog config file
func GetPath(ctx context.CatalogCtx) string {
	return filepath.Join(ctx.Paths.Config, consts.CatalogDirName, consts.ConfigFilename)
}

// Read reads the config file
func Read(ctx context.CatalogCtx) (Config, error) {
	var ret Config

	b, err := os.ReadFile(GetPath(ctx))
	if err != nil {
		return ret, errors.Wrap(err, "reading config file")
	}

	if err := yaml.Unmarshal(b, &ret); err != nil {
		return ret, errors.Wrap(err, "unmarshalling config")
	}

	return ret, nil
}

// Write writes the config to the config file
func Write(ctx context.CatalogCtx, cf Config) error {
	b, err := yaml.Marshal(cf)
	if err != nil {
		return errors.Wrap(err, "marshalling config into YAML")
	}

	if err := os.WriteFile(GetPath(ctx), b, 0644); err != nil {
		return errors.Wrap(err, "writing the config file")
	}

	return nil
}
