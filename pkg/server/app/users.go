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

	"github.com/daylilycatalog/catalog/pkg/server/database"
	"github.com/daylilycatalog/catalog/pkg/server/helpers"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CreateUser mirrors a seller account provisioned by the identity provider
func (a *App) CreateUser(email string) (database.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return database.User{}, ErrEmailRequired
	}

	var count int64
	if err := a.DB.Model(&database.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return database.User{}, errors.Wrap(err, "counting user")
	}
	if count > 0 {
		return database.User{}, ErrDuplicateEmail
	}

	id, err := helpers.GenUUID()
	if err != nil {
		return database.User{}, err
	}

	now := a.now()
	user := database.User{
		Model: database.Model{ID: id, CreatedAt: now, UpdatedAt: now},
		Email: email,
	}
	if err := a.DB.Create(&user).Error; err != nil {
		return database.User{}, errors.Wrap(err, "saving user")
	}

	return user, nil
}

// GetUserByEmail finds a user by email
func (a *App) GetUserByEmail(email string) (*database.User, error) {
	var user database.User
	err := a.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "finding user")
	}

	return &user, nil
}

func countLive(tx *gorm.DB, model interface{}, userID string) (int64, error) {
	var count int64
	err := tx.Model(model).Where("user_id = ? AND deleted = ?", userID, false).Count(&count).Error

	return count, err
}

// RemoveUser removes a user and their sessions. It refuses to remove a
// user who still owns live rows.
func (a *App) RemoveUser(email string) error {
	user, err := a.GetUserByEmail(email)
	if err != nil {
		return err
	}

	return a.DB.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&database.Listing{}, &database.List{}, &database.Image{}} {
			count, err := countLive(tx, model, user.ID)
			if err != nil {
				return errors.Wrap(err, "counting rows")
			}
			if count > 0 {
				return ErrUserHasExistingResources
			}
		}

		if err := a.DeleteUserSessions(tx, user.ID); err != nil {
			return err
		}
		if err := tx.Delete(user).Error; err != nil {
			return errors.Wrap(err, "deleting user")
		}

		return nil
	})
}
