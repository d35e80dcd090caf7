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
	"strings"
	"time"

	"github.com/daylilycatalog/catalog/pkg/server/database"
	"github.com/daylilycatalog/catalog/pkg/server/helpers"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CultivarParams are the registry fields of a cultivar reference
type CultivarParams struct {
	Name        string `yaml:"name"`
	Hybridizer  string `yaml:"hybridizer"`
	Year        int    `yaml:"year"`
	Ploidy      string `yaml:"ploidy"`
	BloomSize   string `yaml:"bloom_size"`
	ScapeHeight string `yaml:"scape_height"`
}

func (p CultivarParams) equal(c database.CultivarReference) bool {
	return p.Name == c.Name && p.Hybridizer == c.Hybridizer && p.Year == c.Year &&
		p.Ploidy == c.Ploidy && p.BloomSize == c.BloomSize && p.ScapeHeight == c.ScapeHeight
}

// ImportResult counts the outcome of a cultivar import
type ImportResult struct {
	Created   int
	Updated   int
	Unchanged int
}

// ImportCultivarReferences upserts registry entries by name. Entries whose
// fields did not change keep their updated_at so that clients do not
// refetch them.
func (a *App) ImportCultivarReferences(params []CultivarParams) (ImportResult, error) {
	var ret ImportResult

	for _, p := range params {
		if strings.TrimSpace(p.Name) == "" {
			return ret, ErrCultivarNameRequired
		}
	}

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		now := a.now()

		for _, p := range params {
			p.Name = strings.TrimSpace(p.Name)

			var existing database.CultivarReference
			err := tx.Where("name = ?", p.Name).First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				id, err := helpers.GenUUID()
				if err != nil {
					return err
				}

				c := database.CultivarReference{
					Model:       database.Model{ID: id, CreatedAt: now, UpdatedAt: now},
					Name:        p.Name,
					Hybridizer:  p.Hybridizer,
					Year:        p.Year,
					Ploidy:      p.Ploidy,
					BloomSize:   p.BloomSize,
					ScapeHeight: p.ScapeHeight,
				}
				if err := tx.Create(&c).Error; err != nil {
					return errors.Wrapf(err, "inserting cultivar %s", p.Name)
				}

				ret.Created++
				continue
			} else if err != nil {
				return errors.Wrapf(err, "finding cultivar %s", p.Name)
			}

			if p.equal(existing) && !existing.Deleted {
				ret.Unchanged++
				continue
			}

			existing.Hybridizer = p.Hybridizer
			existing.Year = p.Year
			existing.Ploidy = p.Ploidy
			existing.BloomSize = p.BloomSize
			existing.ScapeHeight = p.ScapeHeight
			existing.Deleted = false
			existing.UpdatedAt = now
			if err := tx.Save(&existing).Error; err != nil {
				return errors.Wrapf(err, "updating cultivar %s", p.Name)
			}

			ret.Updated++
		}

		return nil
	})

	return ret, err
}

// DeleteCultivarReference marks the cultivar reference with the given name
// deleted
func (a *App) DeleteCultivarReference(name string) error {
	res := a.DB.Model(&database.CultivarReference{}).Scopes(liveScope).Where("name = ?", name).
		Updates(map[string]interface{}{"deleted": true, "updated_at": a.now()})
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting cultivar reference")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// SyncCultivarReferences returns the cultivar references changed at or after
// since, including deleted ones
func (a *App) SyncCultivarReferences(since *time.Time) ([]database.CultivarReference, error) {
	if err := checkSyncWindow(a.DB, KindCultivarReferences, since); err != nil {
		return nil, err
	}

	var refs []database.CultivarReference
	if err := a.DB.Scopes(syncScope(since)).Find(&refs).Error; err != nil {
		return nil, errors.Wrap(err, "finding cultivar references")
	}

	return refs, nil
}

// ListCultivarReferences returns every live cultivar reference
func (a *App) ListCultivarReferences() ([]database.CultivarReference, error) {
	var refs []database.CultivarReference
	if err := a.DB.Scopes(liveScope).Order("name ASC").Find(&refs).Error; err != nil {
		return nil, errors.Wrap(err, "finding cultivar references")
	}

	return refs, nil
}

// GetCultivarReferencesByIDs returns the live cultivar references with the given ids
func (a *App) GetCultivarReferencesByIDs(ids []string) ([]database.CultivarReference, error) {
	var refs []database.CultivarReference
	if len(ids) == 0 {
		return refs, nil
	}

	if err := a.DB.Scopes(liveScope).Where("id IN ?", ids).Order("name ASC").Find(&refs).Error; err != nil {
		return nil, errors.Wrap(err, "finding cultivar references")
	}

	return refs, nil
}
