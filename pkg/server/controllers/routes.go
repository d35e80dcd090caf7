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
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// Route represents a single route
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	RateLimit bool
}

// RouteConfig is the configuration for routes
type RouteConfig struct {
	Controllers *Controllers
	WebRoutes   []Route
	APIRoutes   []Route
}

// NewWebRoutes returns a new web routes
func NewWebRoutes(a *app.App, c *Controllers) []Route {
	return []Route{
		{"GET", "/health", c.Health.Index, true},
	}
}

// NewAPIRoutes returns a new api routes
func NewAPIRoutes(a *app.App, c *Controllers) []Route {
	return []Route{
		{"GET", "/v1/me", mw.Auth(a, c.Users.Me), true},

		{"GET", "/v1/listings/sync", mw.Auth(a, c.Listings.Sync), false},
		{"GET", "/v1/listings/by-ids", mw.Auth(a, c.Listings.ByIDs), true},
		{"GET", "/v1/listings", mw.Auth(a, c.Listings.Index), true},
		{"POST", "/v1/listings", mw.Auth(a, c.Listings.Create), true},
		{"PATCH", "/v1/listings/{id}", mw.Auth(a, c.Listings.Update), true},
		{"DELETE", "/v1/listings/{id}", mw.Auth(a, c.Listings.Delete), true},

		{"GET", "/v1/lists/sync", mw.Auth(a, c.Lists.Sync), false},
		{"GET", "/v1/lists/by-ids", mw.Auth(a, c.Lists.ByIDs), true},
		{"GET", "/v1/lists", mw.Auth(a, c.Lists.Index), true},
		{"POST", "/v1/lists", mw.Auth(a, c.Lists.Create), true},
		{"PATCH", "/v1/lists/{id}", mw.Auth(a, c.Lists.Update), true},
		{"DELETE", "/v1/lists/{id}", mw.Auth(a, c.Lists.Delete), true},
		{"POST", "/v1/lists/{id}/listings/{listingID}", mw.Auth(a, c.Lists.AddMember), true},
		{"DELETE", "/v1/lists/{id}/listings/{listingID}", mw.Auth(a, c.Lists.RemoveMember), true},

		{"GET", "/v1/images/sync", mw.Auth(a, c.Images.Sync), false},
		{"GET", "/v1/images/by-ids", mw.Auth(a, c.Images.ByIDs), true},
		{"GET", "/v1/images", mw.Auth(a, c.Images.Index), true},
		{"POST", "/v1/images", mw.Auth(a, c.Images.Create), true},
		{"PATCH", "/v1/images/{id}", mw.Auth(a, c.Images.Update), true},
		{"DELETE", "/v1/images/{id}", mw.Auth(a, c.Images.Delete), true},

		{"GET", "/v1/cultivar-references/sync", mw.Auth(a, c.Cultivars.Sync), false},
		{"GET", "/v1/cultivar-references/by-ids", mw.Auth(a, c.Cultivars.ByIDs), true},
		{"GET", "/v1/cultivar-references", mw.Auth(a, c.Cultivars.Index), true},
	}
}

func registerRoutes(router *mux.Router, wrapper mw.Middleware, app *app.App, routes []Route) {
	for _, route := range routes {
		wrappedHandler := wrapper(route.Handler, app, route.RateLimit)

		router.
			Handle(route.Pattern, wrappedHandler).
			Methods(route.Method)
	}
}

// NewRouter creates and returns a new router
func NewRouter(app *app.App, rc RouteConfig) (http.Handler, error) {
	if err := app.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	router := mux.NewRouter().StrictSlash(true)

	apiRouter := router.PathPrefix("/api").Subrouter()
	registerRoutes(apiRouter, mw.APIMw, app, rc.APIRoutes)
	registerRoutes(router, mw.APIMw, app, rc.WebRoutes)

	router.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /"))
	})

	// catch-all
	router.NotFoundHandler = http.HandlerFunc(mw.NotFound)

	return mw.Global(router), nil
}
