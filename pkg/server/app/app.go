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

// Package app implements the business operations of the data service
package app

import (
	"time"

	"github.com/daylilycatalog/catalog/pkg/clock"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrEmptyDB is an error for missing database connection in the app configuration
	ErrEmptyDB = errors.New("No database connection was provided")
	// ErrEmptyClock is an error for missing clock in the app configuration
	ErrEmptyClock = errors.New("No clock was provided")
	// ErrInvalidRetention is an error for a non-positive retention window
	ErrInvalidRetention = errors.New("Retention must be positive")
)

// DefaultRetention is how long soft-deleted rows are kept before they are
// expunged
const DefaultRetention = 30 * 24 * time.Hour

// App is an application context
type App struct {
	DB    *gorm.DB
	Clock clock.Clock
	// Retention is how long soft-deleted rows remain visible to sync
	Retention        time.Duration
	Port             string
	DisableRateLimit bool
}

// Validate validates the app configuration
func (a *App) Validate() error {
	if a.Clock == nil {
		return ErrEmptyClock
	}
	if a.DB == nil {
		return ErrEmptyDB
	}
	if a.Retention <= 0 {
		return ErrInvalidRetention
	}

	return nil
}

// now returns the current time at the precision the databases store
func (a *App) now() time.Time {
	return a.Clock.Now().UTC().Truncate(time.Microsecond)
}
