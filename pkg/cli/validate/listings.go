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

// Package validate checks user input before it is sent to the server
package validate

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// MaxTitleLength is the maximum number of characters in a title
const MaxTitleLength = 200

// Listing statuses accepted by the server
var listingStatuses = []string{"draft", "published", "hidden", "sold"}

// ErrTitleEmpty is an error for an empty title
var ErrTitleEmpty = errors.New("The title is empty")

// ErrTitleMultiline is an error for a title that has linebreaks
var ErrTitleMultiline = errors.New("The title contains multiple lines")

// ErrTitleTooLong is an error for a title longer than MaxTitleLength
var ErrTitleTooLong = errors.Errorf("The title is longer than %d characters", MaxTitleLength)

// ErrPriceNegative is an error for a negative price
var ErrPriceNegative = errors.New("The price cannot be negative")

// ErrImageURL is an error for an image url that is not an absolute http(s) url
var ErrImageURL = errors.New("The image url must be an absolute http or https url")

// Title validates the title of a listing or a list
func Title(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleEmpty
	}
	if strings.ContainsAny(title, "\r\n") {
		return ErrTitleMultiline
	}
	if len([]rune(title)) > MaxTitleLength {
		return ErrTitleTooLong
	}

	return nil
}

// ListingStatus validates the status of a listing
func ListingStatus(status string) error {
	for _, s := range listingStatuses {
		if status == s {
			return nil
		}
	}

	return errors.Errorf("Unknown status '%s'. Use one of %s", status, strings.Join(listingStatuses, ", "))
}

// Price validates the price of a listing
func Price(price float64) error {
	if price < 0 {
		return ErrPriceNegative
	}

	return nil
}

// ImageURL validates the url of an image
func ImageURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrImageURL
	}

	return nil
}
