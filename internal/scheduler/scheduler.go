// Package scheduler triggers periodic orchestrator runs on a cron schedule,
// adapted from the DB-backed job scheduler's cron.AddFunc wiring down to
// the single recurring "run every adapter" schedule the spec names.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/contentradar/scraper/internal/domain"
)

// Runner is the capability the scheduler needs from the orchestrator.
type Runner interface {
	StartAll(ctx context.Context, trigger domain.Trigger, callerID string) error
}

// Logger is the minimal structured-logging capability the scheduler needs.
type Logger interface {
	Info(msg string, fields ...any)
	Error(msg string, fields ...any)
}

// Scheduler wraps a cron instance that fires one recurring "startAll" run.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	log    Logger

	mu      sync.Mutex
	running bool
}

// New builds a Scheduler. It does not start the cron loop.
func New(runner Runner, log Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		log:    log,
	}
}

// Start registers the recurring job on spec and starts the cron loop.
// parentCtx is the lifecycle context passed to every triggered run.
func (s *Scheduler) Start(parentCtx context.Context, spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.mu.Lock()
		if s.running {
			s.mu.Unlock()
			s.log.Info("scheduler: skipping tick, previous run still in progress")
			return
		}
		s.running = true
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}()

		s.log.Info("scheduler: triggering scraping run")
		if err := s.runner.StartAll(parentCtx, domain.TriggerScheduled, "scheduler"); err != nil {
			s.log.Error("scheduler: scraping run failed", "error", err.Error())
		}
	})
	if err != nil {
		return fmt.Errorf("scheduler: register cron job: %w", err)
	}

	s.cron.Start()
	s.log.Info("scheduler: started", "spec", spec)
	return nil
}

// Stop halts the cron loop and waits for any in-flight tick's AddFunc
// goroutine to return.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler: stopped")
}
