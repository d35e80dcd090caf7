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
	"encoding/json"
	"net/http"
	"time"

	"github.com/daylilycatalog/catalog/pkg/server/app"
	"github.com/daylilycatalog/catalog/pkg/server/log"
)

// Middleware wraps a route handler
type Middleware func(h http.HandlerFunc, a *app.App, rateLimit bool) http.Handler

// DoError logs the error and responds with the given status code
func DoError(w http.ResponseWriter, msg string, err error, statusCode int) {
	if err != nil {
		log.WithFields(log.Fields{
			"statusCode": statusCode,
		}).ErrorWrap(err, msg)
	}

	RespondJSON(w, statusCode, map[string]string{"message": http.StatusText(statusCode)})
}

// RespondJSON responds with the JSON encoding of the given value
func RespondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ErrorWrap(err, "encoding response")
	}
}

// RespondUnauthorized responds with unauthorized
func RespondUnauthorized(w http.ResponseWriter) {
	w.Header().Add("WWW-Authenticate", `Bearer realm="catalog"`)
	RespondJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
}

// NotFound responds with not found
func NotFound(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
}

// statusRecorder records the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logging logs every request with its status and duration
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"durationMs": time.Since(start).Milliseconds(),
			"remoteAddr": lookupIP(r),
		}).Info("incoming request")
	})
}

// Global is the middleware applied to every request
func Global(h http.Handler) http.Handler {
	return Logging(h)
}

// APIMw is the middleware for the API routes
func APIMw(h http.HandlerFunc, a *app.App, rateLimit bool) http.Handler {
	return ApplyLimit(h, rateLimit && !a.DisableRateLimit)
}
