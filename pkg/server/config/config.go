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

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/daylilycatalog/catalog/pkg/dirs"
	"github.com/daylilycatalog/catalog/pkg/server/app"
	"github.com/daylilycatalog/catalog/pkg/server/log"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/robfig/cron"
)

const (
	// DefaultDBDir is the default directory name for the catalog data
	DefaultDBDir = "catalog"
	// DefaultDBFilename is the default database filename
	DefaultDBFilename = "server.db"
	// DefaultExpungeSchedule runs the expunge job every day at 03:30
	DefaultExpungeSchedule = "0 30 3 * * *"
	// DefaultEnvFile is the dotenv file loaded from the working directory
	DefaultEnvFile = ".env"
)

var (
	// DefaultDBPath is the default path to the database file
	DefaultDBPath = filepath.Join(dirs.DataHome, DefaultDBDir, DefaultDBFilename)
)

var (
	// ErrDBMissingPath is an error for an incomplete configuration missing the database path
	ErrDBMissingPath = errors.New("DB Path is empty")
	// ErrPortInvalid is an error for an incomplete configuration with invalid port
	ErrPortInvalid = errors.New("Invalid Port")
	// ErrLogLevelInvalid is an error for an unknown log level
	ErrLogLevelInvalid = errors.New("Invalid log level")
	// ErrRetentionInvalid is an error for a retention window that is not positive
	ErrRetentionInvalid = errors.New("Invalid retention")
	// ErrScheduleInvalid is an error for an expunge schedule that cron cannot parse
	ErrScheduleInvalid = errors.New("Invalid expunge schedule")
)

// LoadEnvFile loads variables from the given dotenv file into the environment.
// Variables already set take precedence. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "loading %s", path)
	}

	log.WithFields(log.Fields{
		"path": path,
	}).Debug("loaded environment file")

	return nil
}

func readBoolEnv(name string) bool {
	return os.Getenv(name) == "true"
}

// getOrEnv returns value if non-empty, otherwise env var, otherwise default
func getOrEnv(value, envKey, defaultVal string) string {
	if value != "" {
		return value
	}
	if env := os.Getenv(envKey); env != "" {
		return env
	}
	return defaultVal
}

// Config is an application configuration
type Config struct {
	Port             string
	DBPath           string
	LogLevel         string
	Retention        time.Duration
	ExpungeSchedule  string
	DisableRateLimit bool
}

// Params are the configuration parameters for creating a new Config
type Params struct {
	Port             string
	DBPath           string
	LogLevel         string
	Retention        string
	ExpungeSchedule  string
	DisableRateLimit bool
}

func parseRetention(s string) (time.Duration, error) {
	if s == "" {
		return app.DefaultRetention, nil
	}

	d, err := time.ParseDuration(s)
	if err == nil {
		return d, nil
	}

	// a bare number is a count of days
	days, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(ErrRetentionInvalid, "'%s'", s)
	}

	return time.Duration(days) * 24 * time.Hour, nil
}

// New constructs and returns a new validated config.
// Empty string params will fall back to environment variables and defaults.
// DBPath is either a SQLite file path or a postgres:// DSN.
func New(p Params) (Config, error) {
	retention, err := parseRetention(getOrEnv(p.Retention, "RETENTION", ""))
	if err != nil {
		return Config{}, err
	}

	c := Config{
		Port:             getOrEnv(p.Port, "PORT", "3001"),
		DBPath:           getOrEnv(p.DBPath, "DBPath", DefaultDBPath),
		LogLevel:         getOrEnv(p.LogLevel, "LOG_LEVEL", log.LevelInfo),
		Retention:        retention,
		ExpungeSchedule:  getOrEnv(p.ExpungeSchedule, "EXPUNGE_SCHEDULE", DefaultExpungeSchedule),
		DisableRateLimit: p.DisableRateLimit || readBoolEnv("DisableRateLimit"),
	}

	if err := validate(c); err != nil {
		return Config{}, err
	}

	return c, nil
}

func validate(c Config) error {
	if c.Port == "" {
		return ErrPortInvalid
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errors.Wrapf(ErrPortInvalid, "'%s'", c.Port)
	}

	if c.DBPath == "" {
		return ErrDBMissingPath
	}

	if !log.IsLevel(c.LogLevel) {
		return errors.Wrapf(ErrLogLevelInvalid, "'%s'", c.LogLevel)
	}

	if c.Retention <= 0 {
		return ErrRetentionInvalid
	}

	if _, err := cron.Parse(c.ExpungeSchedule); err != nil {
		return errors.Wrapf(ErrScheduleInvalid, "'%s': %s", c.ExpungeSchedule, err)
	}

	return nil
}
