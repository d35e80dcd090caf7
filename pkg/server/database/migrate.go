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

package database

import (
	"embed"

	"github.com/daylilycatalog/catalog/pkg/server/log"
	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
	"gorm.io/gorm"
)

// MigrationTableName is the name of the table that keeps track of migrations
const MigrationTableName = "migrations"

//go:embed migrations/*.sql
var migrationFiles embed.FS

func getMigrationDialect(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "postgres"
	}

	return "sqlite3"
}

// Migrate applies the embedded SQL migrations on top of the schema created
// by InitSchema
func Migrate(db *gorm.DB) error {
	source := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}

	if _, err := runMigrations(db, source); err != nil {
		return err
	}

	return nil
}

// runMigrations applies pending migrations from the source and returns the
// number of migrations applied
func runMigrations(db *gorm.DB, source migrate.MigrationSource) (int, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, errors.Wrap(err, "getting the underlying connection")
	}

	ms := migrate.MigrationSet{TableName: MigrationTableName}
	n, err := ms.Exec(sqlDB, getMigrationDialect(db), source, migrate.Up)
	if err != nil {
		return n, errors.Wrap(err, "running migrations")
	}

	log.WithFields(log.Fields{
		"applied": n,
	}).Info("Database migrated.")

	return n, nil
}
