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

package middleware

import (
	"net/http"
	"strings"

	"github.com/daylilycatalog/catalog/pkg/server/app"
	"github.com/daylilycatalog/catalog/pkg/server/context"
	"github.com/pkg/errors"
)

// ErrInvalidAuthHeader is an error for a malformed Authorization header
var ErrInvalidAuthHeader = errors.New("invalid authorization header")

func getSessionKeyFromAuth(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", nil
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrInvalidAuthHeader
	}

	return strings.TrimSpace(parts[1]), nil
}

// GetCredential extracts the session key from the request. It returns an
// empty string if the request carries no credential.
func GetCredential(r *http.Request) (string, error) {
	key, err := getSessionKeyFromAuth(r)
	if err != nil {
		return "", errors.Wrap(err, "getting session key from Authorization header")
	}

	return key, nil
}

// Auth is an authentication middleware. The session key is issued by the
// identity provider and looked up here.
func Auth(a *app.App, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := GetCredential(r)
		if err != nil || key == "" {
			RespondUnauthorized(w)
			return
		}

		user, err := a.AuthenticateSession(key)
		if errors.Is(err, app.ErrLoginRequired) {
			RespondUnauthorized(w)
			return
		} else if err != nil {
			DoError(w, "authenticating with session", err, http.StatusInternalServerError)
			return
		}

		ctx := context.WithUser(r.Context(), &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
