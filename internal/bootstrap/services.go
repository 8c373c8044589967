package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/contentradar/scraper/internal/adapters"
	"github.com/contentradar/scraper/internal/api"
	"github.com/contentradar/scraper/internal/config"
	"github.com/contentradar/scraper/internal/fetch"
	"github.com/contentradar/scraper/internal/metrics"
	"github.com/contentradar/scraper/internal/orchestrator"
	"github.com/contentradar/scraper/internal/ratelimit"
	"github.com/contentradar/scraper/internal/retry"
	"github.com/contentradar/scraper/internal/robots"
	"github.com/contentradar/scraper/internal/runlog"
	"github.com/contentradar/scraper/internal/scheduler"
	"github.com/contentradar/scraper/internal/store"
	"github.com/contentradar/scraper/internal/useragent"
)

// profilesOf converts the config's domain-profile map to ratelimit's own
// Profile type; the two shapes are structurally identical but the rate
// limiter keeps its own type rather than importing config, to avoid a
// dependency cycle (config has no reason to know about ratelimit).
func profilesOf(cfg map[string]config.DomainProfile) map[string]ratelimit.Profile {
	out := make(map[string]ratelimit.Profile, len(cfg))
	for host, p := range cfg {
		out[host] = ratelimit.Profile{
			Capacity:   p.Capacity,
			RefillRate: p.RefillRate,
			MinDelay:   p.MinDelay,
			MaxDelay:   p.MaxDelay,
		}
	}
	return out
}

// BuildServices wires the fetch/politeness stack, the store, the
// orchestrator, the scheduler, and the admin API together. The caller owns
// shutdown via App.Shutdown.
func BuildServices(ctx context.Context, deps *CommandDeps) (*App, error) {
	cfg := deps.Config
	log := deps.Logger

	metrics.Init()

	contentStore, err := store.Open(ctx, cfg.MongoURI, databaseName(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open store: %w", err)
	}

	runLogStore := runlog.New(contentStore.RunLogCollection())

	robotsCache := robots.New(&http.Client{Timeout: 10 * time.Second}, cfg.RobotsUserAgent, time.Hour, 0)
	robotsCache.OnBlocked(metrics.ObserveRobotsBlocked)
	robotsCache.OnFetchError(metrics.ObserveRobotsFetchError)

	limiter := ratelimit.New(profilesOf(cfg.DomainProfiles), cfg.MaxConcurrentFetches)
	limiter.OnWait(metrics.ObserveRateLimitWait)

	uaPool := useragent.Default()

	var headless *fetch.HeadlessRenderer
	if cfg.UseHeadlessBrowser {
		headless, err = fetch.NewHeadlessRenderer(cfg.RobotsUserAgent)
		if err != nil {
			contentStore.Close(ctx)
			return nil, fmt.Errorf("bootstrap: launch headless renderer: %w", err)
		}
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = cfg.MaxRetries

	fetcher := fetch.New(robotsCache, limiter, uaPool, log, retryCfg, headless)
	fetcher.OnResult(func(outcome string, d time.Duration) { metrics.ObserveFetch("fetch", outcome, d) })
	textFetcher := fetch.NewTextFetcher(fetcher, cfg.UseHeadlessBrowser)

	registry := adapters.Registry(textFetcher, cfg.SearchKeywords)

	scraper := orchestrator.New(registry, contentStore, runLogStore, log, cfg)

	sched := scheduler.New(scraper, log)

	server := api.NewServer(api.Params{
		Config:  cfg,
		Logger:  log,
		Scraper: scraper,
		Content: contentStore,
		RunLogs: runLogStore,
	})

	return &App{
		Config:    cfg,
		Logger:    log,
		Store:     contentStore,
		RunLogs:   runLogStore,
		Scraper:   scraper,
		Scheduler: sched,
		Server:    server,
		Headless:  headless,
	}, nil
}
