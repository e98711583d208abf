// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-arcade/crewclock/internal/crewclock/config"
	"github.com/go-arcade/crewclock/internal/crewclock/org"
	"github.com/go-arcade/crewclock/internal/crewclock/router"
	"github.com/go-arcade/crewclock/internal/crewclock/worktrack"
	"github.com/go-arcade/crewclock/pkg/duration"
	"github.com/go-arcade/crewclock/pkg/log"
	"github.com/go-arcade/crewclock/pkg/metrics"
	"github.com/go-arcade/crewclock/pkg/tick"
	"github.com/gofiber/fiber/v2"
)

type App struct {
	HttpApp       *fiber.App
	MetricsServer *metrics.Server
	Ticks         *tick.CronSource
	Orgs          *org.Reconciler
	Tracker       *worktrack.Tracker
	Logger        *log.Logger
	AppConf       config.Config
}

type InitAppFunc func(configPath string) (*App, func(), error)

func NewApp(
	rt *router.Router,
	ticks *tick.CronSource,
	orgs *org.Reconciler,
	tracker *worktrack.Tracker,
	metricsServer *metrics.Server,
	logger *log.Logger,
	appConf config.Config,
) (*App, func(), error) {
	httpApp := rt.Router()

	// the tracker hears about selection changes without owning the org state
	orgs.OnSwitch(tracker.OnOrgSwitch)

	cleanup := func() {
		tracker.Close()
		orgs.Close()
		ticks.Stop()

		// stop metrics server
		if metricsServer != nil {
			log.Info("Shutting down metrics server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Stop(shutdownCtx); err != nil {
				log.Errorw("Failed to stop metrics server", "error", err)
			}
		}
	}

	app := &App{
		HttpApp:       httpApp,
		MetricsServer: metricsServer,
		Ticks:         ticks,
		Orgs:          orgs,
		Tracker:       tracker,
		Logger:        logger,
		AppConf:       appConf,
	}
	return app, cleanup, nil
}

// Bootstrap init app, return App instance and cleanup function
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), config.Config, error) {
	app, cleanup, err := initApp(configFile)
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	return app, cleanup, app.AppConf, nil
}

// Mount restores the persisted state the way a fresh session does: load the
// memberships and their selection first, then pick up any open shift.
func (app *App) Mount(ctx context.Context) {
	app.Orgs.LoadOrganizations(ctx)
	if err := app.Tracker.Resume(ctx); err != nil {
		log.Errorw("failed to resume shift", "error", err)
	}
}

// Run start app and wait for exit signal, then gracefully shutdown
func Run(app *App, cleanup func()) {
	appConf := app.AppConf

	app.Ticks.Start()

	// start metrics server
	if app.MetricsServer != nil {
		if err := app.MetricsServer.Start(); err != nil {
			log.Errorw("Metrics server failed", "error", err)
		}
	}

	mountCtx, mountCancel := context.WithTimeout(context.Background(),
		duration.ParseOr(appConf.Org.RequestTimeout, 15*time.Second))
	app.Mount(mountCtx)
	mountCancel()

	// set signal listener (graceful shutdown)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// start HTTP server (async)
	go func() {
		addr := appConf.Http.Addr()
		log.Infow("HTTP listener started", "address", addr)
		if err := app.HttpApp.Listen(addr); err != nil {
			log.Errorw("HTTP listener failed",
				"address", addr,
				"error", err,
			)
		}
	}()

	// wait for exit signal
	sig := <-quit
	log.Infow("Received signal, shutting down gracefully...", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), appConf.Http.ShutdownWait())
	defer shutdownCancel()
	if err := app.HttpApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	} else {
		log.Info("HTTP server shut down gracefully")
	}

	cleanup()

	log.Info("Server shutdown complete")
	_ = log.Sync()
}
