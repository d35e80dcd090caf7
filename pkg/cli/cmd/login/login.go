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

// Package login implements the login command
package login

import (
	"net/url"

	"github.com/daylilycatalog/catalog/pkg/cli/context"
	"github.com/daylilycatalog/catalog/pkg/cli/infra"
	"github.com/daylilycatalog/catalog/pkg/cli/log"
	"github.com/daylilycatalog/catalog/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  catalog login

  * Provide the session key without a prompt
  catalog login --key $CATALOG_SESSION_KEY`

var keyFlag string

// NewCmd returns a new login command
func NewCmd(ctx context.CatalogCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Login to the catalog server",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVar(&keyFlag, "key", "", "the session key issued by the identity provider")

	return cmd
}

// getServerDisplayURL returns the origin of the server the API endpoint
// belongs to, or an empty string if the endpoint is not a valid URL
func getServerDisplayURL(ctx context.CatalogCtx) string {
	u, err := url.Parse(ctx.APIEndpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}

	return u.Scheme + "://" + u.Host
}

func newRun(ctx context.CatalogCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		key := keyFlag
		if key == "" {
			if displayURL := getServerDisplayURL(ctx); displayURL != "" {
				log.Infof("signing into %s\n", displayURL)
			}

			if err := ui.PromptPassword("session key", &key); err != nil {
				return errors.Wrap(err, "getting session key input")
			}
		}
		if key == "" {
			return errors.New("empty session key")
		}

		prevUserID := ctx.UserID
		ctx.SessionKey = key

		me, err := infra.NewClient(ctx).GetMe(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "verifying the session key")
		}

		if prevUserID != "" && prevUserID != me.UserID {
			if err := infra.ClearLocalState(ctx); err != nil {
				return errors.Wrap(err, "clearing the previous user's local state")
			}
		}

		if err := infra.SaveCredentials(ctx, key, me.UserID); err != nil {
			return errors.Wrap(err, "saving credentials")
		}

		log.Successf("logged in as %s\n", me.Email)

		return nil
	}
}
