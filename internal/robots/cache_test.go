package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestCacheIsAllowedHonorsDisallow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /private\n"))
	}))
	defer srv.Close()

	var blocked int32
	c := New(srv.Client(), "test-agent", time.Hour, 10)
	c.OnBlocked(func(origin string) { atomic.AddInt32(&blocked, 1) })

	allowed, err := c.IsAllowed(context.Background(), srv.URL+"/private/page")
	if err != nil {
		t.Fatalf("IsAllowed() error = %v", err)
	}
	if allowed {
		t.Error("IsAllowed() = true, want false for disallowed path")
	}
	if atomic.LoadInt32(&blocked) != 1 {
		t.Errorf("onBlocked calls = %d, want 1", blocked)
	}

	allowed, err = c.IsAllowed(context.Background(), srv.URL+"/public/page")
	if err != nil {
		t.Fatalf("IsAllowed() error = %v", err)
	}
	if !allowed {
		t.Error("IsAllowed() = false, want true for allowed path")
	}
}

func TestCacheFetchErrorFallsBackToAllowAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var fetchErrs int32
	c := New(srv.Client(), "test-agent", time.Hour, 10)
	c.OnFetchError(func() { atomic.AddInt32(&fetchErrs, 1) })

	allowed, err := c.IsAllowed(context.Background(), srv.URL+"/anything")
	if err != nil {
		t.Fatalf("IsAllowed() error = %v", err)
	}
	if !allowed {
		t.Error("IsAllowed() = false, want true (allow-all fallback on fetch error)")
	}
	if atomic.LoadInt32(&fetchErrs) != 1 {
		t.Errorf("onFetchError calls = %d, want 1", fetchErrs)
	}
}

func TestCacheMissingRobotsTxtAllowsAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.Client(), "test-agent", time.Hour, 10)
	allowed, err := c.IsAllowed(context.Background(), srv.URL+"/anything")
	if err != nil {
		t.Fatalf("IsAllowed() error = %v", err)
	}
	if !allowed {
		t.Error("IsAllowed() = false, want true when robots.txt is missing")
	}
}
