package bootstrap

import (
	"context"

	"github.com/contentradar/scraper/internal/api"
	"github.com/contentradar/scraper/internal/config"
	"github.com/contentradar/scraper/internal/fetch"
	"github.com/contentradar/scraper/internal/logger"
	"github.com/contentradar/scraper/internal/orchestrator"
	"github.com/contentradar/scraper/internal/runlog"
	"github.com/contentradar/scraper/internal/scheduler"
	"github.com/contentradar/scraper/internal/store"
)

// App holds every long-lived component the serve command runs, assembled
// by BuildServices.
type App struct {
	Config    *config.Config
	Logger    logger.Interface
	Store     *store.Store
	RunLogs   *runlog.Store
	Scraper   *orchestrator.Scraper
	Scheduler *scheduler.Scheduler
	Server    *api.Server
	Headless  *fetch.HeadlessRenderer
}

// Start launches the scheduler and blocks on the HTTP server.
func (a *App) Start(ctx context.Context) error {
	if a.Config.AutoScrapeEnabled {
		if err := a.Scheduler.Start(ctx, a.Config.ScrapeCronSchedule); err != nil {
			return err
		}
	}
	return a.Server.Start()
}

// Shutdown stops every component in this order: scheduler,
// in-flight scraper sessions, HTTP server, headless browser, store.
func (a *App) Shutdown(ctx context.Context) {
	a.Scheduler.Stop()
	a.Scraper.StopAll(ctx)

	if err := a.Server.Stop(ctx); err != nil {
		a.Logger.Error("bootstrap: server shutdown error", "error", err.Error())
	}
	if a.Headless != nil {
		a.Headless.Close()
	}
	if err := a.Store.Close(ctx); err != nil {
		a.Logger.Error("bootstrap: store close error", "error", err.Error())
	}
}
