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
	"github.com/pkg/errors"
)

type appError string

func (e appError) Error() string {
	return string(e)
}

var (
	// ErrNotFound an error that indicates that the given resource is not found
	ErrNotFound appError = "not found"
	// ErrLoginRequired is an error for not authenticated
	ErrLoginRequired appError = "login required"
	// ErrSyncWindowExpired is an error for a sync cursor older than the
	// expunge horizon. The client must discard its state and re-seed.
	ErrSyncWindowExpired appError = "sync window expired"

	// ErrEmailRequired is an error for a missing email
	ErrEmailRequired appError = "Please enter an email."
	// ErrDuplicateEmail is an error for an email already in use
	ErrDuplicateEmail appError = "This email is already in use."
	// ErrUserHasExistingResources is an error for removing a user who still owns rows
	ErrUserHasExistingResources appError = "user has existing listings, lists or images"

	// ErrTitleRequired is an error for a missing title
	ErrTitleRequired appError = "Title is required."
	// ErrInvalidStatus is an error for an unknown listing status
	ErrInvalidStatus appError = "Status must be one of draft, published, hidden or sold."
	// ErrPriceNegative is an error for a negative price
	ErrPriceNegative appError = "Price cannot be negative."
	// ErrCultivarReferenceNotFound is an error for linking an unknown cultivar reference
	ErrCultivarReferenceNotFound appError = "Cultivar reference not found."
	// ErrInvalidImageURL is an error for an image URL that is not an absolute http(s) URL
	ErrInvalidImageURL appError = "Image URL must be an absolute http or https URL."
	// ErrImageParentRequired is an error for an image that is not attached to exactly one parent
	ErrImageParentRequired appError = "An image belongs to exactly one listing or user profile."
	// ErrCultivarNameRequired is an error for a cultivar reference without a name
	ErrCultivarNameRequired appError = "Cultivar name is required."
)

// IsValidationError reports whether the given error is caused by invalid input
func IsValidationError(err error) bool {
	switch errors.Cause(err) {
	case ErrEmailRequired, ErrTitleRequired, ErrInvalidStatus, ErrPriceNegative,
		ErrCultivarReferenceNotFound, ErrInvalidImageURL, ErrImageParentRequired,
		ErrCultivarNameRequired:
		return true
	}

	return false
}
