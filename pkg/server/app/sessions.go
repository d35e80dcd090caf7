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
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/daylilycatalog/catalog/pkg/server/database"
	"github.com/daylilycatalog/catalog/pkg/server/helpers"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// SessionDuration is how long an issued session key stays valid
const SessionDuration = 24 * 100 * time.Hour

func genSessionKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "reading random bytes")
	}

	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateSession returns a new session for the user of the given id
func (a *App) CreateSession(userID string) (database.Session, error) {
	key, err := genSessionKey()
	if err != nil {
		return database.Session{}, errors.Wrap(err, "generating key")
	}
	id, err := helpers.GenUUID()
	if err != nil {
		return database.Session{}, err
	}

	now := a.now()
	session := database.Session{
		Model:      database.Model{ID: id, CreatedAt: now, UpdatedAt: now},
		UserID:     userID,
		Key:        key,
		LastUsedAt: now,
		ExpiresAt:  now.Add(SessionDuration),
	}
	if err := a.DB.Create(&session).Error; err != nil {
		return database.Session{}, errors.Wrap(err, "saving session")
	}

	return session, nil
}

// AuthenticateSession returns the user who owns the given unexpired session key
func (a *App) AuthenticateSession(key string) (database.User, error) {
	var user database.User

	var session database.Session
	err := a.DB.Where("key = ?", key).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrLoginRequired
	} else if err != nil {
		return user, errors.Wrap(err, "finding session")
	}

	now := a.now()
	if session.ExpiresAt.Before(now) {
		return user, ErrLoginRequired
	}

	err = a.DB.Where("id = ?", session.UserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrLoginRequired
	} else if err != nil {
		return user, errors.Wrap(err, "finding user")
	}

	if err := a.DB.Model(&session).Update("last_used_at", now).Error; err != nil {
		return user, errors.Wrap(err, "touching session")
	}

	return user, nil
}

// DeleteUserSessions deletes all existing sessions for the given user. It effectively
// invalidates all existing sessions.
func (a *App) DeleteUserSessions(db *gorm.DB, userID string) error {
	if err := db.Where("user_id = ?", userID).Delete(&database.Session{}).Error; err != nil {
		return errors.Wrap(err, "deleting sessions")
	}

	return nil
}

// DeleteSession deletes the session that match the given key
func (a *App) DeleteSession(key string) error {
	if err := a.DB.Where("key = ?", key).Delete(&database.Session{}).Error; err != nil {
		return errors.Wrap(err, "deleting the session")
	}

	return nil
}
