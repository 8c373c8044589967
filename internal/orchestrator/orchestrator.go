// Package orchestrator wires the adapter registry, fetcher, content store,
// and run-log store into the startAll/startSpecific/stopAll/status surface
// the admin API drives, grounded on the worker pool's pool-state lifecycle
// generalized from a job queue to a fixed set of named source adapters.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/contentradar/scraper/internal/adapters"
	"github.com/contentradar/scraper/internal/config"
	"github.com/contentradar/scraper/internal/domain"
	"github.com/contentradar/scraper/internal/metrics"
	"github.com/contentradar/scraper/internal/runlog"
	"github.com/contentradar/scraper/internal/store"
)

// ErrAlreadyRunning is returned when a start is requested while any adapter
// session is still active. The orchestrator blocks a single-adapter start
// while any adapter is running; per-adapter concurrency is not a current
// capability.
var ErrAlreadyRunning = errors.New("orchestrator: a scraping run is already in progress")

// ErrUnknownAdapter is returned when startSpecific names an adapter the
// registry doesn't carry.
var ErrUnknownAdapter = errors.New("orchestrator: unknown adapter")

// Logger is the minimal structured-logging capability the orchestrator
// needs.
type Logger interface {
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
}

// session tracks one in-flight adapter run so StopAll can cancel it and
// Status can report it.
type session struct {
	sessionID string
	adapter   string
	cancel    context.CancelFunc
	startedAt time.Time
}

// Scraper is the explicit orchestrator handle: not a singleton, constructed
// once at bootstrap and held by the API/scheduler layers.
type Scraper struct {
	registry map[string]adapters.Adapter
	content  *store.Store
	runLogs  *runlog.Store
	log      Logger
	cfg      *config.Config

	mu       sync.Mutex
	sessions map[string]*session // keyed by adapter name
}

// New builds a Scraper over a fixed adapter registry.
func New(registry map[string]adapters.Adapter, content *store.Store, runLogs *runlog.Store, log Logger, cfg *config.Config) *Scraper {
	return &Scraper{
		registry: registry,
		content:  content,
		runLogs:  runLogs,
		log:      log,
		cfg:      cfg,
		sessions: make(map[string]*session),
	}
}

// AdapterNames lists the registry's adapter names, for GET /api/scraper/types.
func (s *Scraper) AdapterNames() []string {
	names := make([]string, 0, len(s.registry))
	for name := range s.registry {
		names = append(names, name)
	}
	return names
}

// StartAll runs every registered adapter concurrently, one run log session
// per adapter. It refuses to start while any adapter is already running.
func (s *Scraper) StartAll(ctx context.Context, trigger domain.Trigger, callerID string) error {
	s.mu.Lock()
	if len(s.sessions) > 0 {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for name, adapter := range s.registry {
		wg.Add(1)
		go func(name string, adapter adapters.Adapter) {
			defer wg.Done()
			if err := s.runOne(ctx, name, adapter, trigger, callerID); err != nil {
				s.log.Error("adapter run failed", "adapter", name, "error", err.Error())
			}
		}(name, adapter)
	}
	wg.Wait()
	return nil
}

// StartSpecific runs a single named adapter. It refuses to start while any
// adapter is already running, per the orchestrator's single-flight policy.
func (s *Scraper) StartSpecific(ctx context.Context, name string, trigger domain.Trigger, callerID string) error {
	adapter, ok := s.registry[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAdapter, name)
	}

	s.mu.Lock()
	if len(s.sessions) > 0 {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.mu.Unlock()

	return s.runOne(ctx, name, adapter, trigger, callerID)
}

// StopAll cooperatively cancels every in-flight session. The adapter loop
// observes ctx.Done() on its next fetch attempt; runOne marks the session
// cancelled once the adapter returns.
func (s *Scraper) StopAll(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, sess := range s.sessions {
		sess.cancel()
		if err := s.runLogs.Cancel(ctx, sess.sessionID); err != nil {
			s.log.Warn("stop: cancel run log failed", "session", sess.sessionID, "error", err.Error())
		}
		n++
	}
	return n
}

// RunningAdapter is one row of Status's active-session listing.
type RunningAdapter struct {
	Adapter   string    `json:"adapter"`
	SessionID string    `json:"sessionId"`
	StartedAt time.Time `json:"startedAt"`
}

// Status reports the orchestrator's current activity.
type Status struct {
	Running  bool             `json:"running"`
	Adapters []RunningAdapter `json:"adapters"`
}

// Status returns the orchestrator's current activity snapshot.
func (s *Scraper) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Status{Running: len(s.sessions) > 0}
	for _, sess := range s.sessions {
		out.Adapters = append(out.Adapters, RunningAdapter{
			Adapter: sess.adapter, SessionID: sess.sessionID, StartedAt: sess.startedAt,
		})
	}
	return out
}

// runOne brackets one adapter pass in a RunLog: start, run, bulk-upsert the
// yield, finalize to completed/partial/failed/cancelled.
func (s *Scraper) runOne(ctx context.Context, name string, adapter adapters.Adapter, trigger domain.Trigger, callerID string) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sessionID := uuid.NewString()
	started := time.Now()

	log := domain.RunLog{
		SessionID:     sessionID,
		AdapterName:   name,
		SourceLabel:   adapter.SourceLabel(),
		Status:        domain.RunPending,
		TriggerSource: trigger,
		CallerID:      callerID,
		Config:        s.configSnapshot(),
	}
	if _, err := s.runLogs.Start(ctx, log); err != nil {
		return fmt.Errorf("orchestrator: start run log: %w", err)
	}

	s.mu.Lock()
	s.sessions[name] = &session{sessionID: sessionID, adapter: name, cancel: cancel, startedAt: started}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, name)
		s.mu.Unlock()
	}()

	if err := s.runLogs.TransitionTo(ctx, sessionID, domain.RunRunning, nil); err != nil {
		s.log.Warn("transition to running failed", "session", sessionID, "error", err.Error())
	}

	batch, runErr := adapter.Run(runCtx)

	var upsert store.UpsertResult
	if len(batch.Candidates) > 0 {
		var err error
		upsert, err = s.content.BulkUpsert(ctx, batch.Candidates)
		if err != nil {
			batch.Errors = append(batch.Errors, domain.RunError{
				Timestamp: time.Now(), Kind: "store", Message: err.Error(),
			})
		}
	}

	results := domain.Results{
		Found:         len(batch.Candidates),
		Inserted:      upsert.Inserted,
		Updated:       upsert.Modified,
		Duplicates:    upsert.Duplicates,
		Failed:        len(batch.Errors),
		URLsProcessed: batch.URLsProcessed,
		URLsFailed:    batch.URLsFailed,
	}

	finalStatus := s.finalStatus(runCtx, runErr, batch)

	metrics.ObserveRun(name, string(finalStatus), time.Since(started))
	metrics.ObserveUpsert("inserted", upsert.Inserted)
	metrics.ObserveUpsert("modified", upsert.Modified)
	metrics.ObserveUpsert("duplicate", upsert.Duplicates)

	apply := map[string]any{
		"results":  results,
		"errors":   batch.Errors,
		"warnings": batch.Warnings,
	}
	if err := s.runLogs.TransitionTo(ctx, sessionID, finalStatus, apply); err != nil {
		s.log.Warn("finalize run log failed", "session", sessionID, "status", string(finalStatus), "error", err.Error())
	}

	s.log.Info("adapter run finished",
		"adapter", name, "session", sessionID, "status", string(finalStatus),
		"found", results.Found, "inserted", results.Inserted,
	)

	if runErr != nil {
		return runErr
	}
	return nil
}

func (s *Scraper) finalStatus(runCtx context.Context, runErr error, batch adapters.Batch) domain.RunStatus {
	if runCtx.Err() != nil {
		return domain.RunCancelled
	}
	if runErr != nil {
		return domain.RunFailed
	}
	if batch.URLsFailed > 0 && batch.URLsProcessed > 0 {
		return domain.RunPartial
	}
	if batch.URLsFailed > 0 && batch.URLsProcessed == 0 {
		return domain.RunFailed
	}
	return domain.RunCompleted
}

func (s *Scraper) configSnapshot() domain.ConfigSnapshot {
	return domain.ConfigSnapshot{
		MaxItems:   s.cfg.MaxItemsPerCategory,
		DelayMinMs: int(s.cfg.ScrapeDelayMin.Milliseconds()),
		DelayMaxMs: int(s.cfg.ScrapeDelayMax.Milliseconds()),
		TimeoutMs:  int(s.cfg.RequestTimeout.Milliseconds()),
		MaxRetries: s.cfg.MaxRetries,
		UserAgent:  s.cfg.RobotsUserAgent,
		Keywords:   s.cfg.SearchKeywords,
	}
}
