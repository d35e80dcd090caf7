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

// Package consts provides definitions of constants
package consts

var (
	// CatalogDirName is the name of the directory containing catalog files
	CatalogDirName = "catalog"
	// CatalogDBFileName is a filename for the catalog SQLite database
	CatalogDBFileName = "catalog.db"
	// TmpContentFileBase is the base for the filename for a temporary content
	TmpContentFileBase = "CATALOG_TMPCONTENT"
	// TmpContentFileExt is the extension for the temporary content file
	TmpContentFileExt = "md"
	// ConfigFilename is the name of the config file
	ConfigFilename = "catalogrc"

	// SystemSessionKey is the session key
	SystemSessionKey = "session_token"
	// SystemUserID is the id of the user who owns the session key
	SystemUserID = "user_id"
	// SystemLastSyncAt is the local time of the last completed sync
	SystemLastSyncAt = "last_sync_time"
)
