// Package bootstrap wires the scraper's components together and runs the
// long-lived serve process, grounded on the crawler's phased
// Start/CommandDeps/RunUntilInterrupt bootstrap idiom — narrowed here from
// that idiom's profiling/Postgres/Redis/SSE phases (none of which this
// service has) down to the phases this service actually needs: config and
// logger, storage, the fetch/politeness stack, adapters, the orchestrator,
// the scheduler, and the HTTP server.
package bootstrap

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/contentradar/scraper/internal/config"
	"github.com/contentradar/scraper/internal/logger"
)

// CommandDeps holds the dependencies every bootstrap phase after the first
// needs: the resolved config and a ready logger.
type CommandDeps struct {
	Config *config.Config
	Logger logger.Interface
}

// NewCommandDeps loads configuration and builds the structured logger (with
// its six file-log cores) from it.
func NewCommandDeps(envPath string) (*CommandDeps, error) {
	cfg, err := config.Load(envPath)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load config: %w", err)
	}

	log, err := logger.NewWithFileCores(
		&logger.Config{Level: logger.Level(cfg.LogLevel), Encoding: "json"},
		cfg.LogDir,
		logger.DefaultFileLogSpecs(),
	)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: create logger: %w", err)
	}
	log = log.WithComponent("scraper")

	return &CommandDeps{Config: cfg, Logger: log}, nil
}

// databaseName extracts the database name from a Mongo connection URI,
// falling back to "scraper" when the URI carries none (e.g. a bare
// mongodb://host:port with no path).
func databaseName(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "scraper"
	}
	name := strings.Trim(parsed.Path, "/")
	if name == "" {
		return "scraper"
	}
	return name
}
