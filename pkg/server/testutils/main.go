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

// Package testutils provides utilities used in tests
package testutils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/daylilycatalog/catalog/pkg/server/database"
	"github.com/daylilycatalog/catalog/pkg/server/helpers"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// InitDB opens a database at the given path and initializes the schema
func InitDB(dbPath string) *gorm.DB {
	db, err := database.Open(dbPath)
	if err != nil {
		panic(errors.Wrap(err, "opening database"))
	}
	if err := database.InitSchema(db); err != nil {
		panic(errors.Wrap(err, "initializing schema"))
	}
	if err := database.Migrate(db); err != nil {
		panic(errors.Wrap(err, "migrating database"))
	}

	return db
}

// InitMemoryDB creates an in-memory SQLite database with the schema initialized.
// Every call gets its own database.
func InitMemoryDB(t *testing.T) *gorm.DB {
	db := InitDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", MustUUID(t)))
	t.Cleanup(func() {
		database.Close(db)
	})

	return db
}

// MustUUID generates a UUID and fails the test on error
func MustUUID(t *testing.T) string {
	uuid, err := helpers.GenUUID()
	if err != nil {
		t.Fatal(errors.Wrap(err, "Failed to generate UUID"))
	}

	return uuid
}

// SetupUserData creates and returns a new user with the given email
func SetupUserData(db *gorm.DB, email string) database.User {
	uuid, err := helpers.GenUUID()
	if err != nil {
		panic(errors.Wrap(err, "Failed to generate UUID"))
	}

	now := time.Now().UTC()
	user := database.User{
		Model: database.Model{ID: uuid, CreatedAt: now, UpdatedAt: now},
		Email: email,
	}
	if err := db.Create(&user).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare user"))
	}

	return user
}

// SetupSession creates and returns a new session for the user that expires
// after the given duration from now. A negative duration yields an expired session.
func SetupSession(db *gorm.DB, user database.User, d time.Duration) database.Session {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(errors.Wrap(err, "reading random bits"))
	}
	uuid, err := helpers.GenUUID()
	if err != nil {
		panic(errors.Wrap(err, "Failed to generate UUID"))
	}

	now := time.Now().UTC()
	session := database.Session{
		Model:     database.Model{ID: uuid, CreatedAt: now, UpdatedAt: now},
		Key:       base64.URLEncoding.EncodeToString(b),
		UserID:    user.ID,
		ExpiresAt: now.Add(d),
	}
	if err := db.Create(&session).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare session"))
	}

	return session
}

// HTTPDo makes an HTTP request and returns a response
func HTTPDo(t *testing.T, req *http.Request) *http.Response {
	hc := http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	res, err := hc.Do(req)
	if err != nil {
		t.Fatal(errors.Wrap(err, "performing http request"))
	}

	return res
}

// SetReqAuthHeader sets the authorization header in the given request for the given user
func SetReqAuthHeader(t *testing.T, db *gorm.DB, req *http.Request, user database.User) {
	session := SetupSession(db, user, time.Hour*10*24)

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", session.Key))
}

// HTTPAuthDo makes an HTTP request with an authorization header for the user
func HTTPAuthDo(t *testing.T, db *gorm.DB, req *http.Request, user database.User) *http.Response {
	SetReqAuthHeader(t, db, req, user)

	return HTTPDo(t, req)
}

// MakeReq makes an HTTP request
func MakeReq(endpoint string, method, path, data string) *http.Request {
	u := fmt.Sprintf("%s%s", endpoint, path)

	req, err := http.NewRequest(method, u, strings.NewReader(data))
	if err != nil {
		panic(errors.Wrap(err, "constructing http request"))
	}

	return req
}

// MustExec fails the test if the given database query has error
func MustExec(t *testing.T, db *gorm.DB, message string) {
	if err := db.Error; err != nil {
		t.Fatalf("%s: %s", message, err.Error())
	}
}

// MustDecodeJSON decodes the body of the response into v and fails the test on error
func MustDecodeJSON(t *testing.T, res *http.Response, v interface{}) {
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatal(errors.Wrap(err, "decoding response payload"))
	}
}
