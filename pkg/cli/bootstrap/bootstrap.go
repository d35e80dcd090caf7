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

// Package bootstrap seeds collections with a full fetch and keeps seeded
// collections current
package bootstrap

import (
	"context"

	"github.com/daylilycatalog/catalog/pkg/cli/client"
	"github.com/daylilycatalog/catalog/pkg/cli/collection"
	"github.com/daylilycatalog/catalog/pkg/cli/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Initialize replaces the rows of c with every row the remote lists, clears
// its tombstones and sets its cursor to the instant captured before the fetch.
// Calling it again re-seeds from scratch.
func Initialize[R collection.Row](ctx context.Context, c *collection.Collection[R]) error {
	now := c.Clock().Now()

	rows, err := c.Source().List(ctx)
	if err != nil {
		return errors.Wrapf(err, "listing %s", c.Kind())
	}

	if err := c.Replace(rows); err != nil {
		return errors.Wrapf(err, "seeding %s", c.Kind())
	}
	c.Tombstones().Clear()
	c.SetCursor(now)

	log.Debug("seeded %s with %d rows\n", c.Kind(), len(rows))

	return nil
}

// Ensure seeds c if it has not been seeded and resyncs it otherwise. When the
// server no longer holds the changes since the cursor, c is re-seeded.
func Ensure[R collection.Row](ctx context.Context, c *collection.Collection[R]) error {
	if !c.Seeded() {
		return Initialize(ctx, c)
	}

	err := c.Resync(ctx)
	if client.IsSyncWindowExpired(err) {
		log.Debug("%s cursor expired, re-seeding\n", c.Kind())
		return Initialize(ctx, c)
	}

	return err
}

// Target is a collection bootstrap can run against
type Target interface {
	Kind() string
	Initialize(ctx context.Context) error
	Ensure(ctx context.Context) error
}

type target[R collection.Row] struct {
	c *collection.Collection[R]
}

func (t target[R]) Kind() string { return t.c.Kind() }

func (t target[R]) Initialize(ctx context.Context) error { return Initialize(ctx, t.c) }

func (t target[R]) Ensure(ctx context.Context) error { return Ensure(ctx, t.c) }

// For returns c as a Target
func For[R collection.Row](c *collection.Collection[R]) Target {
	return target[R]{c: c}
}

func run(ctx context.Context, fn func(Target, context.Context) error, targets []Target) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		t := t
		g.Go(func() error {
			return fn(t, gctx)
		})
	}

	return g.Wait()
}

// All runs Ensure on every target concurrently and returns the first error
func All(ctx context.Context, targets ...Target) error {
	return run(ctx, Target.Ensure, targets)
}

// ReseedAll runs Initialize on every target concurrently and returns the
// first error
func ReseedAll(ctx context.Context, targets ...Target) error {
	return run(ctx, Target.Initialize, targets)
}
