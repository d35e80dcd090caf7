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

package controllers

import (
	"net/http"

	"github.com/daylilycatalog/catalog/pkg/server/app"
	mw "github.com/daylilycatalog/catalog/pkg/server/middleware"
	"github.com/daylilycatalog/catalog/pkg/server/presenters"
)

// NewUsers creates a new Users controller.
func NewUsers(app *app.App) *Users {
	return &Users{
		app: app,
	}
}

// Users is a user controller.
type Users struct {
	app *app.App
}

// Me returns the user that owns the session key
func (u *Users) Me(w http.ResponseWriter, r *http.Request) {
	user := mustGetUser(r)

	mw.RespondJSON(w, http.StatusOK, presenters.PresentMe(user))
}
