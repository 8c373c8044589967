package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/contentradar/scraper/internal/ratelimit"
	"github.com/contentradar/scraper/internal/retry"
	"github.com/contentradar/scraper/internal/useragent"
)

type allowAllRobots struct{}

func (allowAllRobots) IsAllowed(ctx context.Context, rawURL string) (bool, error) { return true, nil }

type denyAllRobots struct{}

func (denyAllRobots) IsAllowed(ctx context.Context, rawURL string) (bool, error) { return false, nil }

type fakeLogger struct{}

func (fakeLogger) Info(msg string, fields ...any) {}
func (fakeLogger) Warn(msg string, fields ...any) {}
func (fakeLogger) Error(msg string, fields ...any) {}

func noRetryConfig() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.MaxRetries = 0
	cfg.BaseDelay = time.Millisecond
	cfg.Cap = 10 * time.Millisecond
	return cfg
}

func newTestFetcher(robots RobotsChecker) *Fetcher {
	fastProfile := map[string]ratelimit.Profile{
		"default": {Capacity: 100, RefillRate: 100, MinDelay: 0, MaxDelay: time.Millisecond},
	}
	limiter := ratelimit.New(fastProfile, 4)
	return New(robots, limiter, useragent.Default(), fakeLogger{}, noRetryConfig(), nil)
}

func TestFetchReturnsBodyOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	f := newTestFetcher(allowAllRobots{})
	res, err := f.Fetch(context.Background(), srv.URL, Options{}, false)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(res.Body) != "hello" {
		t.Errorf("body = %q, want %q", res.Body, "hello")
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", res.StatusCode)
	}
}

func TestFetchRejectsRobotsDisallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("should not be reached"))
	}))
	defer srv.Close()

	f := newTestFetcher(denyAllRobots{})
	_, err := f.Fetch(context.Background(), srv.URL, Options{}, false)
	if !IsRobotsDisallowed(err) {
		t.Fatalf("Fetch() error = %v, want ErrRobotsDisallowed", err)
	}
}

func TestFetchOnResultReportsOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newTestFetcher(allowAllRobots{})

	var mu sync.Mutex
	var gotOutcome string
	f.OnResult(func(outcome string, d time.Duration) {
		mu.Lock()
		gotOutcome = outcome
		mu.Unlock()
	})

	if _, err := f.Fetch(context.Background(), srv.URL, Options{}, false); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotOutcome != "success" {
		t.Errorf("onResult outcome = %q, want %q", gotOutcome, "success")
	}
}

func TestFetchOnResultReportsErrorOutcome(t *testing.T) {
	f := newTestFetcher(denyAllRobots{})

	var mu sync.Mutex
	var gotOutcome string
	f.OnResult(func(outcome string, d time.Duration) {
		mu.Lock()
		gotOutcome = outcome
		mu.Unlock()
	})

	if _, err := f.Fetch(context.Background(), "http://example.invalid", Options{}, false); err == nil {
		t.Fatal("Fetch() error = nil, want non-nil for robots-disallowed url")
	}

	mu.Lock()
	defer mu.Unlock()
	if gotOutcome != "error" {
		t.Errorf("onResult outcome = %q, want %q", gotOutcome, "error")
	}
}

func TestFetchSurfacesUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newTestFetcher(allowAllRobots{})
	if _, err := f.Fetch(context.Background(), srv.URL, Options{}, false); err == nil {
		t.Fatal("Fetch() error = nil, want non-nil for 500 status")
	}
}
