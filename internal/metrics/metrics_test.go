package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	Init()
	Init() // idempotent

	if fetchRequestsTotal == nil || robotsBlockedTotal == nil || runsTotal == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}

	ObserveFetch("news", "success", 100*time.Millisecond)
	if val := testutil.ToFloat64(fetchRequestsTotal.WithLabelValues("news", "success")); val != 1 {
		t.Errorf("fetchRequestsTotal = %f, want 1", val)
	}

	ObserveRobotsBlocked("example.com")
	if val := testutil.ToFloat64(robotsBlockedTotal.WithLabelValues("example.com")); val != 1 {
		t.Errorf("robotsBlockedTotal = %f, want 1", val)
	}
}

func TestObserveUpsertSkipsZero(t *testing.T) {
	Init()
	ObserveUpsert("inserted", 0)
	if val := testutil.ToFloat64(upsertResultsTotal.WithLabelValues("inserted")); val != 0 {
		t.Errorf("ObserveUpsert(0) should not increment counter, got %f", val)
	}

	ObserveUpsert("inserted", 3)
	if val := testutil.ToFloat64(upsertResultsTotal.WithLabelValues("inserted")); val != 3 {
		t.Errorf("upsertResultsTotal = %f, want 3", val)
	}
}
