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

// ListParams are the fields of a new list
type ListParams struct {
	Title       string
	Description string
}

// ListPatch is a partial update of a list
type ListPatch struct {
	Title       *string
	Description *string
}

func preloadMembers(db *gorm.DB) *gorm.DB {
	return db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC").Order("listing_id ASC")
	})
}

// touchLists bumps updated_at of the given lists so that their new
// membership reaches clients through sync
func touchLists(tx *gorm.DB, ids []string, now time.Time) error {
	if err := tx.Model(&database.List{}).Where("id IN ?", ids).Update("updated_at", now).Error; err != nil {
		return errors.Wrap(err, "touching lists")
	}

	return nil
}

func findList(db *gorm.DB, userID, id string) (database.List, error) {
	var list database.List
	err := db.Scopes(liveScope, preloadMembers).Where("id = ? AND user_id = ?", id, userID).First(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return list, ErrNotFound
	} else if err != nil {
		return list, errors.Wrap(err, "finding list")
	}

	return list, nil
}

// CreateList creates an empty list owned by the given user
func (a *App) CreateList(user database.User, p ListParams) (database.List, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return database.List{}, ErrTitleRequired
	}

	id, err := helpers.GenUUID()
	if err != nil {
		return database.List{}, err
	}

	now := a.now()
	list := database.List{
		Model:       database.Model{ID: id, CreatedAt: now, UpdatedAt: now},
		UserID:      user.ID,
		Title:       title,
		Description: p.Description,
		Members:     []database.ListMember{},
	}
	if err := a.DB.Create(&list).Error; err != nil {
		return list, errors.Wrap(err, "inserting list")
	}

	return list, nil
}

// UpdateList applies the given patch to a live list of the user
func (a *App) UpdateList(user database.User, id string, p ListPatch) (database.List, error) {
	list, err := findList(a.DB, user.ID, id)
	if err != nil {
		return list, err
	}

	updates := map[string]interface{}{}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return list, ErrTitleRequired
		}
		updates["title"] = title
		list.Title = title
	}
	if p.Description != nil {
		updates["description"] = *p.Description
		list.Description = *p.Description
	}

	list.UpdatedAt = a.now()
	updates["updated_at"] = list.UpdatedAt
	if err := a.DB.Model(&database.List{}).Where("id = ?", list.ID).Updates(updates).Error; err != nil {
		return list, errors.Wrap(err, "updating the list")
	}

	return list, nil
}

// DeleteList marks a list deleted and drops its memberships
func (a *App) DeleteList(user database.User, id string) (database.List, error) {
	var list database.List

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		list, err = findList(tx, user.ID, id)
		if err != nil {
			return err
		}

		if err := tx.Where("list_id = ?", list.ID).Delete(&database.ListMember{}).Error; err != nil {
			return errors.Wrap(err, "deleting list memberships")
		}

		list.Deleted = true
		list.UpdatedAt = a.now()
		list.Members = []database.ListMember{}
		if err := tx.Model(&database.List{}).Where("id = ?", list.ID).
			Updates(map[string]interface{}{"deleted": true, "updated_at": list.UpdatedAt}).Error; err != nil {
			return errors.Wrap(err, "deleting list")
		}

		return nil
	})

	return list, err
}

// AddListMember adds a live listing of the user to one of their lists. Adding
// a listing that is already a member only bumps the list.
func (a *App) AddListMember(user database.User, listID, listingID string) (database.List, error) {
	var list database.List

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := findList(tx, user.ID, listID); err != nil {
			return err
		}
		if _, err := findListing(tx, user.ID, listingID); err != nil {
			return err
		}

		now := a.now()
		var count int64
		if err := tx.Model(&database.ListMember{}).Where("list_id = ? AND listing_id = ?", listID, listingID).Count(&count).Error; err != nil {
			return errors.Wrap(err, "counting membership")
		}
		if count == 0 {
			member := database.ListMember{ListID: listID, ListingID: listingID, CreatedAt: now}
			if err := tx.Create(&member).Error; err != nil {
				return errors.Wrap(err, "inserting membership")
			}
		}

		if err := touchLists(tx, []string{listID}, now); err != nil {
			return err
		}

		var err error
		list, err = findList(tx, user.ID, listID)
		return err
	})

	return list, err
}

// RemoveListMember removes a listing from a list of the user
func (a *App) RemoveListMember(user database.User, listID, listingID string) (database.List, error) {
	var list database.List

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := findList(tx, user.ID, listID); err != nil {
			return err
		}

		if err := tx.Where("list_id = ? AND listing_id = ?", listID, listingID).Delete(&database.ListMember{}).Error; err != nil {
			return errors.Wrap(err, "deleting membership")
		}
		if err := touchLists(tx, []string{listID}, a.now()); err != nil {
			return err
		}

		var err error
		list, err = findList(tx, user.ID, listID)
		return err
	})

	return list, err
}

// SyncLists returns the lists of the user changed at or after since,
// including deleted ones
func (a *App) SyncLists(user database.User, since *time.Time) ([]database.List, error) {
	if err := checkSyncWindow(a.DB, KindLists, since); err != nil {
		return nil, err
	}

	var lists []database.List
	if err := a.DB.Scopes(preloadMembers, syncScope(since)).Where("user_id = ?", user.ID).Find(&lists).Error; err != nil {
		return nil, errors.Wrap(err, "finding lists")
	}

	return lists, nil
}

// ListLists returns the live lists of the user
func (a *App) ListLists(user database.User) ([]database.List, error) {
	var lists []database.List
	if err := a.DB.Scopes(liveScope, preloadMembers).Where("user_id = ?", user.ID).Order("created_at ASC").Find(&lists).Error; err != nil {
		return nil, errors.Wrap(err, "finding lists")
	}

	return lists, nil
}

// GetListsByIDs returns the live lists of the user with the given ids
func (a *App) GetListsByIDs(user database.User, ids []string) ([]database.List, error) {
	var lists []database.List
	if len(ids) == 0 {
		return lists, nil
	}

	if err := a.DB.Scopes(liveScope, preloadMembers).Where("user_id = ? AND id IN ?", user.ID, ids).Order("created_at ASC").Find(&lists).Error; err != nil {
		return nil, errors.Wrap(err, "finding lists")
	}

	return lists, nil
}
