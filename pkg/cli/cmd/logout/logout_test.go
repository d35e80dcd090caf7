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

package logout

import (
	"testing"

	"github.com/daylilycatalog/catalog/pkg/assert"
	"github.com/daylilycatalog/catalog/pkg/cli/context"
	"github.com/daylilycatalog/catalog/pkg/cli/database"
	"github.com/daylilycatalog/catalog/pkg/cli/infra"
)

func TestDo(t *testing.T) {
	ctx := context.InitTestCtx(t)
	assert.Equal(t, Do(ctx), ErrNotLoggedIn, "logging out without a session")

	assert.NoError(t, infra.SaveCredentials(ctx, "key", "u1"), "saving credentials")
	ctx.SessionKey, ctx.UserID = "key", "u1"

	assert.NoError(t, Do(ctx), "logging out")

	var count int
	database.MustScan(t, "counting system rows", ctx.DB.QueryRow("SELECT count(*) FROM system"), &count)
	assert.Equal(t, count, 0, "session should be deleted")
}
