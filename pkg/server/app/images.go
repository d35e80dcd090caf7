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
	"net/url"
	"time"

	"github.com/daylilycatalog/catalog/pkg/server/database"
	"github.com/daylilycatalog/catalog/pkg/server/helpers"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ImageParams are the fields of a new image. Order is the requested
// position among the images of the same parent; out of range values append.
type ImageParams struct {
	URL           string
	Order         int
	ListingID     *string
	UserProfileID *string
}

// ImagePatch is a partial update of an image
type ImagePatch struct {
	URL   *string
	Order *int
}

func validateImageURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidImageURL
	}

	return nil
}

func siblingScope(img database.Image) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", img.UserID)
		if img.ListingID != nil {
			return db.Where("listing_id = ?", *img.ListingID)
		}

		return db.Where("user_profile_id = ?", *img.UserProfileID)
	}
}

// loadSiblings returns the live images under the parent of img, excluding
// img itself, in position order
func loadSiblings(tx *gorm.DB, img database.Image) ([]database.Image, error) {
	var siblings []database.Image
	if err := tx.Scopes(liveScope, siblingScope(img)).
		Where("id <> ?", img.ID).
		Order("position ASC").Order("created_at ASC").
		Find(&siblings).Error; err != nil {
		return nil, errors.Wrap(err, "finding sibling images")
	}

	return siblings, nil
}

func insertAt(images []database.Image, img database.Image, pos int) []database.Image {
	if pos < 0 || pos > len(images) {
		pos = len(images)
	}

	ret := make([]database.Image, 0, len(images)+1)
	ret = append(ret, images[:pos]...)
	ret = append(ret, img)
	ret = append(ret, images[pos:]...)

	return ret
}

// renumber assigns dense zero-based positions to the given images and saves
// the ones whose position changed, except for the image with skipID
func renumber(tx *gorm.DB, images []database.Image, skipID string, now time.Time) error {
	for i := range images {
		if images[i].Position == i {
			continue
		}

		images[i].Position = i
		images[i].UpdatedAt = now
		if images[i].ID == skipID {
			continue
		}

		if err := tx.Model(&database.Image{}).Where("id = ?", images[i].ID).
			Updates(map[string]interface{}{"position": i, "updated_at": now}).Error; err != nil {
			return errors.Wrap(err, "renumbering images")
		}
	}

	return nil
}

func (a *App) checkImageParent(tx *gorm.DB, user database.User, p ImageParams) error {
	hasListing := p.ListingID != nil && *p.ListingID != ""
	hasProfile := p.UserProfileID != nil && *p.UserProfileID != ""
	if hasListing == hasProfile {
		return ErrImageParentRequired
	}

	if hasListing {
		if _, err := findListing(tx, user.ID, *p.ListingID); err != nil {
			return err
		}
	} else if *p.UserProfileID != user.ID {
		return ErrNotFound
	}

	return nil
}

// CreateImage attaches an image to a listing or to the profile of the user.
// Later images under the same parent shift to keep positions dense.
func (a *App) CreateImage(user database.User, p ImageParams) (database.Image, error) {
	var img database.Image

	if err := validateImageURL(p.URL); err != nil {
		return img, err
	}

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		if err := a.checkImageParent(tx, user, p); err != nil {
			return err
		}

		id, err := helpers.GenUUID()
		if err != nil {
			return err
		}

		now := a.now()
		img = database.Image{
			Model:         database.Model{ID: id, CreatedAt: now, UpdatedAt: now},
			UserID:        user.ID,
			URL:           p.URL,
			Position:      -1,
			ListingID:     emptyToNil(p.ListingID),
			UserProfileID: emptyToNil(p.UserProfileID),
		}

		siblings, err := loadSiblings(tx, img)
		if err != nil {
			return err
		}

		ordered := insertAt(siblings, img, p.Order)
		if err := renumber(tx, ordered, img.ID, now); err != nil {
			return err
		}
		for _, o := range ordered {
			if o.ID == img.ID {
				img.Position = o.Position
			}
		}

		if err := tx.Create(&img).Error; err != nil {
			return errors.Wrap(err, "inserting image")
		}

		return nil
	})

	return img, err
}

func findImage(db *gorm.DB, userID, id string) (database.Image, error) {
	var img database.Image
	err := db.Scopes(liveScope).Where("id = ? AND user_id = ?", id, userID).First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return img, ErrNotFound
	} else if err != nil {
		return img, errors.Wrap(err, "finding image")
	}

	return img, nil
}

// UpdateImage changes the URL or the position of an image
func (a *App) UpdateImage(user database.User, id string, p ImagePatch) (database.Image, error) {
	var img database.Image

	if p.URL != nil {
		if err := validateImageURL(*p.URL); err != nil {
			return img, err
		}
	}

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		img, err = findImage(tx, user.ID, id)
		if err != nil {
			return err
		}

		now := a.now()
		if p.Order != nil {
			siblings, err := loadSiblings(tx, img)
			if err != nil {
				return err
			}

			pos := *p.Order
			if pos < 0 || pos > len(siblings) {
				pos = len(siblings)
			}

			if err := renumber(tx, insertAt(siblings, img, pos), img.ID, now); err != nil {
				return err
			}
			img.Position = pos
		}
		if p.URL != nil {
			img.URL = *p.URL
		}

		img.UpdatedAt = now
		if err := tx.Save(&img).Error; err != nil {
			return errors.Wrap(err, "updating the image")
		}

		return nil
	})

	return img, err
}

// DeleteImage marks an image deleted and closes the gap it leaves
func (a *App) DeleteImage(user database.User, id string) (database.Image, error) {
	var img database.Image

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		img, err = findImage(tx, user.ID, id)
		if err != nil {
			return err
		}

		now := a.now()
		img.Deleted = true
		img.UpdatedAt = now
		if err := tx.Save(&img).Error; err != nil {
			return errors.Wrap(err, "deleting image")
		}

		siblings, err := loadSiblings(tx, img)
		if err != nil {
			return err
		}

		return renumber(tx, siblings, "", now)
	})

	return img, err
}

// SyncImages returns the images of the user changed at or after since,
// including deleted ones
func (a *App) SyncImages(user database.User, since *time.Time) ([]database.Image, error) {
	if err := checkSyncWindow(a.DB, KindImages, since); err != nil {
		return nil, err
	}

	var images []database.Image
	if err := a.DB.Where("user_id = ?", user.ID).Scopes(syncScope(since)).Find(&images).Error; err != nil {
		return nil, errors.Wrap(err, "finding images")
	}

	return images, nil
}

// ListImages returns the live images of the user
func (a *App) ListImages(user database.User) ([]database.Image, error) {
	var images []database.Image
	if err := a.DB.Scopes(liveScope).Where("user_id = ?", user.ID).Order("position ASC").Order("created_at ASC").Find(&images).Error; err != nil {
		return nil, errors.Wrap(err, "finding images")
	}

	return images, nil
}

// GetImagesByIDs returns the live images of the user with the given ids
func (a *App) GetImagesByIDs(user database.User, ids []string) ([]database.Image, error) {
	var images []database.Image
	if len(ids) == 0 {
		return images, nil
	}

	if err := a.DB.Scopes(liveScope).Where("user_id = ? AND id IN ?", user.ID, ids).Order("position ASC").Find(&images).Error; err != nil {
		return nil, errors.Wrap(err, "finding images")
	}

	return images, nil
}
