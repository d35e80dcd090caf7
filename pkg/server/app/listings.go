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

// Listing statuses
const (
	ListingStatusDraft     = "draft"
	ListingStatusPublished = "published"
	ListingStatusHidden    = "hidden"
	ListingStatusSold      = "sold"
)

func validateStatus(status string) error {
	switch status {
	case ListingStatusDraft, ListingStatusPublished, ListingStatusHidden, ListingStatusSold:
		return nil
	}

	return ErrInvalidStatus
}

// ListingParams are the fields of a new listing
type ListingParams struct {
	Title               string
	Description         string
	Price               *float64
	CultivarReferenceID *string
	Status              string
}

// ListingPatch is a partial update of a listing. Nil fields are left untouched.
type ListingPatch struct {
	Title               *string
	Description         *string
	Price               *float64
	CultivarReferenceID *string
	Status              *string
}

func validatePrice(price *float64) error {
	if price != nil && *price < 0 {
		return ErrPriceNegative
	}

	return nil
}

func checkCultivarReference(tx *gorm.DB, id *string) error {
	if id == nil || *id == "" {
		return nil
	}

	var count int64
	if err := tx.Model(&database.CultivarReference{}).Scopes(liveScope).Where("id = ?", *id).Count(&count).Error; err != nil {
		return errors.Wrap(err, "counting cultivar reference")
	}
	if count == 0 {
		return ErrCultivarReferenceNotFound
	}

	return nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}

	return s
}

// CreateListing creates a listing owned by the given user
func (a *App) CreateListing(user database.User, p ListingParams) (database.Listing, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return database.Listing{}, ErrTitleRequired
	}
	status := p.Status
	if status == "" {
		status = ListingStatusDraft
	}
	if err := validateStatus(status); err != nil {
		return database.Listing{}, err
	}
	if err := validatePrice(p.Price); err != nil {
		return database.Listing{}, err
	}
	if err := checkCultivarReference(a.DB, p.CultivarReferenceID); err != nil {
		return database.Listing{}, err
	}

	id, err := helpers.GenUUID()
	if err != nil {
		return database.Listing{}, err
	}

	now := a.now()
	listing := database.Listing{
		Model:               database.Model{ID: id, CreatedAt: now, UpdatedAt: now},
		UserID:              user.ID,
		Title:               title,
		Slug:                helpers.Slugify(title),
		Description:         p.Description,
		Price:               p.Price,
		CultivarReferenceID: emptyToNil(p.CultivarReferenceID),
		Status:              status,
	}
	if err := a.DB.Create(&listing).Error; err != nil {
		return listing, errors.Wrap(err, "inserting listing")
	}

	return listing, nil
}

func findListing(db *gorm.DB, userID, id string) (database.Listing, error) {
	var listing database.Listing
	err := db.Scopes(liveScope).Where("id = ? AND user_id = ?", id, userID).First(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return listing, ErrNotFound
	} else if err != nil {
		return listing, errors.Wrap(err, "finding listing")
	}

	return listing, nil
}

// UpdateListing applies the given patch to a live listing of the user
func (a *App) UpdateListing(user database.User, id string, p ListingPatch) (database.Listing, error) {
	listing, err := findListing(a.DB, user.ID, id)
	if err != nil {
		return listing, err
	}

	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return listing, ErrTitleRequired
		}
		listing.Title = title
		listing.Slug = helpers.Slugify(title)
	}
	if p.Description != nil {
		listing.Description = *p.Description
	}
	if p.Price != nil {
		if err := validatePrice(p.Price); err != nil {
			return listing, err
		}
		listing.Price = p.Price
	}
	if p.CultivarReferenceID != nil {
		if err := checkCultivarReference(a.DB, p.CultivarReferenceID); err != nil {
			return listing, err
		}
		listing.CultivarReferenceID = emptyToNil(p.CultivarReferenceID)
	}
	if p.Status != nil {
		if err := validateStatus(*p.Status); err != nil {
			return listing, err
		}
		listing.Status = *p.Status
	}

	listing.UpdatedAt = a.now()
	if err := a.DB.Save(&listing).Error; err != nil {
		return listing, errors.Wrap(err, "updating the listing")
	}

	return listing, nil
}

// DeleteListing marks a listing deleted. Its images are deleted with it and
// it is removed from every list that contained it.
func (a *App) DeleteListing(user database.User, id string) (database.Listing, error) {
	var listing database.Listing

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		listing, err = findListing(tx, user.ID, id)
		if err != nil {
			return err
		}

		now := a.now()
		listing.Deleted = true
		listing.UpdatedAt = now
		if err := tx.Save(&listing).Error; err != nil {
			return errors.Wrap(err, "deleting listing")
		}

		if err := tx.Model(&database.Image{}).Scopes(liveScope).
			Where("listing_id = ?", listing.ID).
			Updates(map[string]interface{}{"deleted": true, "updated_at": now}).Error; err != nil {
			return errors.Wrap(err, "deleting listing images")
		}

		var listIDs []string
		if err := tx.Model(&database.ListMember{}).Where("listing_id = ?", listing.ID).Pluck("list_id", &listIDs).Error; err != nil {
			return errors.Wrap(err, "finding containing lists")
		}
		if len(listIDs) == 0 {
			return nil
		}

		if err := tx.Where("listing_id = ?", listing.ID).Delete(&database.ListMember{}).Error; err != nil {
			return errors.Wrap(err, "deleting list memberships")
		}
		if err := touchLists(tx, listIDs, now); err != nil {
			return err
		}

		return nil
	})

	return listing, err
}

// SyncListings returns the listings of the user changed at or after since,
// including deleted ones
func (a *App) SyncListings(user database.User, since *time.Time) ([]database.Listing, error) {
	if err := checkSyncWindow(a.DB, KindListings, since); err != nil {
		return nil, err
	}

	var listings []database.Listing
	if err := a.DB.Where("user_id = ?", user.ID).Scopes(syncScope(since)).Find(&listings).Error; err != nil {
		return nil, errors.Wrap(err, "finding listings")
	}

	return listings, nil
}

// ListListings returns the live listings of the user
func (a *App) ListListings(user database.User) ([]database.Listing, error) {
	var listings []database.Listing
	if err := a.DB.Scopes(liveScope).Where("user_id = ?", user.ID).Order("created_at ASC").Find(&listings).Error; err != nil {
		return nil, errors.Wrap(err, "finding listings")
	}

	return listings, nil
}

// GetListingsByIDs returns the live listings of the user with the given ids
func (a *App) GetListingsByIDs(user database.User, ids []string) ([]database.Listing, error) {
	var listings []database.Listing
	if len(ids) == 0 {
		return listings, nil
	}

	if err := a.DB.Scopes(liveScope).Where("user_id = ? AND id IN ?", user.ID, ids).Order("created_at ASC").Find(&listings).Error; err != nil {
		return nil, errors.Wrap(err, "finding listings")
	}

	return listings, nil
}
