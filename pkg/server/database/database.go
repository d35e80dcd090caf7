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

// Package database defines the models of the data service and manages its
// database connection
package database

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/daylilycatalog/catalog/pkg/server/log"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitSchema migrates database schema to reflect the latest model definition
func InitSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Session{},
		&Listing{},
		&List{},
		&ListMember{},
		&Image{},
		&CultivarReference{},
		&ExpungeHorizon{},
	); err != nil {
		return errors.Wrap(err, "auto migrating schema")
	}

	return nil
}

// getDBLogLevel maps the application log level to the gorm log level. SQL
// statements are only logged in debug mode.
func getDBLogLevel(level string) logger.LogLevel {
	switch level {
	case log.LevelDebug:
		return logger.Info
	case log.LevelWarn:
		return logger.Warn
	case log.LevelError:
		return logger.Error
	default:
		return logger.Silent
	}
}

// IsPostgresDSN reports whether the given data source name points to a
// PostgreSQL server rather than a SQLite file
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func getDialector(dsn string) (gorm.Dialector, error) {
	if IsPostgresDSN(dsn) {
		return postgres.Open(dsn), nil
	}

	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "creating database directory at %s", dir)
		}
	}

	return sqlite.Open(dsn), nil
}

// Open initializes the database connection. The dsn is either a PostgreSQL
// URL or a path to a SQLite file.
func Open(dsn string) (*gorm.DB, error) {
	dialector, err := getDialector(dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(getDBLogLevel(log.GetLevel())),
	})
	if err != nil {
		return nil, errors.Wrap(err, "opening database connection")
	}

	if db.Dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "getting the underlying connection")
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// Close closes the underlying connection of the given database
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "getting the underlying connection")
	}

	return sqlDB.Close()
}
