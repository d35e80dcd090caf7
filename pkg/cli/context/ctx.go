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

// Package context defines the catalog context
package context

import (
	"net/http"

	"github.com/daylilycatalog/catalog/pkg/cli/database"
	"github.com/daylilycatalog/catalog/pkg/clock"
)

// Paths contain directory definitions
type Paths struct {
	Home   string
	Config string
	Data   string
	Cache  string
}

// CatalogCtx is a context holding the information of the current runtime
type CatalogCtx struct {
	Paths       Paths
	APIEndpoint string
	Version     string
	DB          *database.DB
	SessionKey  string
	UserID      string
	Editor      string
	Clock       clock.Clock
	HTTPClient  *http.Client
}

// LoggedIn reports whether the context carries a session
func (ctx CatalogCtx) LoggedIn() bool {
	return ctx.SessionKey != "" && ctx.UserID != ""
}

// Redact replaces private information from the context with a set of
// placeholder values.
func Redact(ctx CatalogCtx) CatalogCtx {
	var sessionKey string
	if ctx.SessionKey != "" {
		sessionKey = "1"
	} else {
		sessionKey = "0"
	}
	ctx.SessionKey = sessionKey

	return ctx
}
