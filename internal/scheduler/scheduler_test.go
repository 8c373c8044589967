package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/contentradar/scraper/internal/domain"
)

type fakeLogger struct{}

func (fakeLogger) Info(msg string, fields ...any)  {}
func (fakeLogger) Error(msg string, fields ...any) {}

type fakeRunner struct {
	calls   int32
	block   chan struct{}
	trigger domain.Trigger
	err     error
}

func (f *fakeRunner) StartAll(ctx context.Context, trigger domain.Trigger, callerID string) error {
	atomic.AddInt32(&f.calls, 1)
	f.trigger = trigger
	if f.block != nil {
		<-f.block
	}
	return f.err
}

func TestSchedulerStartTriggersScheduledRun(t *testing.T) {
	runner := &fakeRunner{}
	s := New(runner, fakeLogger{})

	if err := s.Start(context.Background(), "@every 50ms"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&runner.calls) == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for scheduled run")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if runner.trigger != domain.TriggerScheduled {
		t.Errorf("trigger = %v, want %v", runner.trigger, domain.TriggerScheduled)
	}
}

func TestSchedulerSkipsTickWhilePreviousRunInProgress(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	s := New(runner, fakeLogger{})

	if err := s.Start(context.Background(), "@every 1s"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// cron v3 fires @every schedules on whole-second boundaries, so this
	// window holds at least two ticks: the first blocks, the second is skipped.
	time.Sleep(2500 * time.Millisecond)
	close(runner.block)
	s.Stop()

	if got := atomic.LoadInt32(&runner.calls); got != 1 {
		t.Errorf("calls = %d, want 1 (overlapping ticks should be skipped)", got)
	}
}

func TestSchedulerRejectsInvalidCronSpec(t *testing.T) {
	s := New(&fakeRunner{}, fakeLogger{})
	if err := s.Start(context.Background(), "not a cron spec"); err == nil {
		t.Fatal("Start() with invalid spec: want error, got nil")
	}
}

func TestSchedulerLogsRunnerError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("adapter exploded")}
	s := New(runner, fakeLogger{})

	if err := s.Start(context.Background(), "@every 20ms"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&runner.calls) == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for scheduled run")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
