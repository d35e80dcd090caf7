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

// Package job runs the background maintenance of the server
package job

import (
	"github.com/daylilycatalog/catalog/pkg/server/app"
	"github.com/daylilycatalog/catalog/pkg/server/log"
	"github.com/pkg/errors"
	"github.com/robfig/cron"
)

// Runner schedules the maintenance jobs
type Runner struct {
	Cron *cron.Cron
	App  *app.App
}

// NewRunner returns a runner for the given app
func NewRunner(a *app.App) (Runner, error) {
	if err := a.Validate(); err != nil {
		return Runner{}, errors.Wrap(err, "validating the app parameters")
	}

	return Runner{
		Cron: cron.New(),
		App:  a,
	}, nil
}

// Expunge permanently removes rows that were soft-deleted longer ago than
// the retention window
func (r *Runner) Expunge() (map[string]int64, error) {
	before := r.App.Clock.Now().Add(-r.App.Retention)

	removed, err := r.App.ExpungeDeleted(before)
	if err != nil {
		return nil, errors.Wrap(err, "expunging deleted rows")
	}

	fields := log.Fields{
		"before": before.UTC(),
	}
	for kind, count := range removed {
		fields[kind] = count
	}
	log.WithFields(fields).Info("expunged deleted rows")

	return removed, nil
}

func (r *Runner) schedule(spec string) error {
	return r.Cron.AddFunc(spec, func() {
		if _, err := r.Expunge(); err != nil {
			log.ErrorWrap(err, "running expunge job")
		}
	})
}

// Do schedules the jobs on the given cron spec and starts them
func (r *Runner) Do(spec string) error {
	if err := r.schedule(spec); err != nil {
		return errors.Wrapf(err, "scheduling expunge job on '%s'", spec)
	}

	r.Cron.Start()

	log.WithFields(log.Fields{
		"schedule": spec,
	}).Info("started background jobs")

	return nil
}

// Stop stops the scheduled jobs
func (r *Runner) Stop() {
	r.Cron.Stop()
}
