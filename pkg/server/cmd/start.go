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

package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/daylilycatalog/catalog/pkg/server/buildinfo"
	"github.com/daylilycatalog/catalog/pkg/server/config"
	"github.com/daylilycatalog/catalog/pkg/server/controllers"
	"github.com/daylilycatalog/catalog/pkg/server/database"
	"github.com/daylilycatalog/catalog/pkg/server/job"
	"github.com/daylilycatalog/catalog/pkg/server/log"
	"github.com/pkg/errors"
)

func startCmd(args []string) {
	loadEnv()

	fs := setupFlagSet("start", "catalog-server start")

	port := fs.String("port", "", "Server port (env: PORT, default: 3001)")
	dbPath := fs.String("dbPath", "", dbPathUsage)
	logLevel := fs.String("logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")
	retention := fs.String("retention", "", "How long deleted rows stay visible to sync, as a duration or a number of days (env: RETENTION, default: 30)")
	schedule := fs.String("expungeSchedule", "", "Cron schedule of the expunge job (env: EXPUNGE_SCHEDULE, default: "+config.DefaultExpungeSchedule+")")
	disableRateLimit := fs.Bool("disableRateLimit", false, "Disable the per-IP rate limit (env: DisableRateLimit, default: false)")

	fs.Parse(args)

	cfg, err := config.New(config.Params{
		Port:             *port,
		DBPath:           *dbPath,
		LogLevel:         *logLevel,
		Retention:        *retention,
		ExpungeSchedule:  *schedule,
		DisableRateLimit: *disableRateLimit,
	})
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		fs.Usage()
		os.Exit(1)
	}

	log.SetLevel(cfg.LogLevel)

	app, err := initApp(cfg)
	if err != nil {
		log.ErrorWrap(err, "initializing app")
		os.Exit(1)
	}
	defer database.Close(app.DB)

	runner, err := job.NewRunner(&app)
	if err != nil {
		panic(errors.Wrap(err, "initializing job runner"))
	}
	if err := runner.Do(cfg.ExpungeSchedule); err != nil {
		panic(errors.Wrap(err, "starting jobs"))
	}
	defer runner.Stop()

	ctl := controllers.New(&app)
	rc := controllers.RouteConfig{
		WebRoutes:   controllers.NewWebRoutes(&app, ctl),
		APIRoutes:   controllers.NewAPIRoutes(&app, ctl),
		Controllers: ctl,
	}

	r, err := controllers.NewRouter(&app, rc)
	if err != nil {
		panic(errors.Wrap(err, "initializing router"))
	}

	log.WithFields(log.Fields{
		"version":   buildinfo.Version,
		"port":      cfg.Port,
		"postgres":  database.IsPostgresDSN(cfg.DBPath),
		"retention": cfg.Retention.String(),
	}).Info("catalog server starting")

	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.ErrorWrap(err, "server failed")
		os.Exit(1)
	}
}
