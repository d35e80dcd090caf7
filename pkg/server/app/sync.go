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

package app

import (
	"fmt"
	"time"

	"github.com/daylilycatalog/catalog/pkg/server/database"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entity kinds served by the sync endpoints
const (
	KindListings           = "listings"
	KindLists              = "lists"
	KindImages             = "images"
	KindCultivarReferences = "cultivar-references"
)

// Kinds lists every entity kind with the table that stores it
var Kinds = []struct {
	Name  string
	Table string
}{
	{KindListings, "listings"},
	{KindLists, "lists"},
	{KindImages, "images"},
	{KindCultivarReferences, "cultivar_references"},
}

// checkSyncWindow returns ErrSyncWindowExpired if deleted rows of the kind
// may have been expunged after the given cursor
func checkSyncWindow(db *gorm.DB, kind string, since *time.Time) error {
	if since == nil {
		return nil
	}

	var horizon database.ExpungeHorizon
	err := db.Where("kind = ?", kind).First(&horizon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	} else if err != nil {
		return errors.Wrap(err, "finding expunge horizon")
	}

	if since.Before(horizon.Cutoff) {
		return ErrSyncWindowExpired
	}

	return nil
}

// syncScope selects the rows changed at or after since, oldest first.
// Deleted rows are included so that clients learn about them.
func syncScope(since *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if since != nil {
			db = db.Where("updated_at >= ?", since.UTC())
		}

		return db.Order("updated_at ASC").Order("id ASC")
	}
}

func liveScope(db *gorm.DB) *gorm.DB {
	return db.Where("deleted = ?", false)
}

// ExpungeDeleted permanently removes rows soft-deleted before the given
// time and advances the expunge horizon of every kind that lost rows. It
// returns the number of rows removed per kind.
func (a *App) ExpungeDeleted(before time.Time) (map[string]int64, error) {
	before = before.UTC().Truncate(time.Microsecond)
	ret := map[string]int64{}

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		for _, k := range Kinds {
			res := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE deleted = ? AND updated_at < ?", k.Table), true, before)
			if res.Error != nil {
				return errors.Wrapf(res.Error, "expunging %s", k.Name)
			}
			if res.RowsAffected == 0 {
				continue
			}

			ret[k.Name] = res.RowsAffected

			horizon := database.ExpungeHorizon{Kind: k.Name, Cutoff: before}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "kind"}},
				DoUpdates: clause.AssignmentColumns([]string{"cutoff"}),
			}).Create(&horizon).Error; err != nil {
				return errors.Wrapf(err, "saving expunge horizon for %s", k.Name)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return ret, nil
}
