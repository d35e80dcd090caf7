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

package database

import (
	"time"
)

// Model is the base model definition. Timestamps are assigned by the app from
// its clock so that sync cursors are deterministic.
type Model struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime:false;index"`
}

// User is a model for a seller account. Accounts are provisioned by the
// identity provider and mirrored here.
type User struct {
	Model
	Email string `json:"email" gorm:"uniqueIndex"`
}

// Session is a model for a session key issued to a user
type Session struct {
	Model
	UserID     string `gorm:"index"`
	Key        string `gorm:"uniqueIndex"`
	LastUsedAt time.Time
	ExpiresAt  time.Time
}

// Listing is a model for a daylily offered by a seller
type Listing struct {
	Model
	UserID              string `gorm:"index"`
	Title               string
	Slug                string `gorm:"index"`
	Description         string
	Price               *float64
	CultivarReferenceID *string `gorm:"index"`
	Status              string
	Deleted             bool `gorm:"default:false"`
}

// List is a model for a seller-curated group of listings
type List struct {
	Model
	UserID      string `gorm:"index"`
	Title       string
	Description string
	Members     []ListMember `gorm:"foreignKey:ListID"`
	Deleted     bool         `gorm:"default:false"`
}

// ListMember is a model for the membership of a listing in a list
type ListMember struct {
	ListID    string `gorm:"primaryKey;type:text"`
	ListingID string `gorm:"primaryKey;type:text;index"`
	CreatedAt time.Time
}

// Image is a model for a photo attached to a listing or a user profile
type Image struct {
	Model
	UserID        string `gorm:"index"`
	URL           string
	Position      int
	ListingID     *string `gorm:"index"`
	UserProfileID *string `gorm:"index"`
	Deleted       bool    `gorm:"default:false"`
}

// CultivarReference is a model for shared registry data about a cultivar
type CultivarReference struct {
	Model
	Name        string `gorm:"uniqueIndex"`
	Hybridizer  string
	Year        int
	Ploidy      string
	BloomSize   string
	ScapeHeight string
	Deleted     bool `gorm:"default:false"`
}

// ExpungeHorizon records, per entity kind, the time before which soft-deleted
// rows may have been purged. Sync cursors older than it are rejected.
type ExpungeHorizon struct {
	Kind   string `gorm:"primaryKey;type:text"`
	Cutoff time.Time
}
