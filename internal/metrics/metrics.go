// Package metrics exposes Prometheus collectors for the scraping core,
// adapted from the crawler's package-level Prometheus collector pattern and
// re-scoped from page/byte counters to fetch/robots/rate-limit/upsert/run
// counters.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchRequestsTotal  *prometheus.CounterVec
	fetchDurationSecs   *prometheus.HistogramVec
	robotsBlockedTotal  *prometheus.CounterVec
	robotsFetchErrTotal prometheus.Counter
	rateLimitWaitSecs   *prometheus.HistogramVec
	upsertResultsTotal  *prometheus.CounterVec
	runDurationSecs     *prometheus.HistogramVec
	runsTotal           *prometheus.CounterVec

	once sync.Once
)

// Init registers the scraping core's collectors with the default registry.
// Safe to call multiple times.
func Init() {
	once.Do(func() {
		fetchRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_fetch_requests_total",
				Help: "Total fetch attempts, labeled by adapter and outcome.",
			},
			[]string{"adapter", "outcome"},
		)

		fetchDurationSecs = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_fetch_duration_seconds",
				Help:    "Histogram of fetch call latencies, labeled by adapter.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"adapter"},
		)

		robotsBlockedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_robots_blocked_total",
				Help: "Total URLs disallowed by robots.txt, labeled by origin.",
			},
			[]string{"origin"},
		)

		robotsFetchErrTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_robots_fetch_errors_total",
				Help: "Total robots.txt fetch failures that fell back to allow-all.",
			},
		)

		rateLimitWaitSecs = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_rate_limit_wait_seconds",
				Help:    "Histogram of time spent waiting on the per-domain token bucket.",
				Buckets: []float64{0, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"domain"},
		)

		upsertResultsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_upsert_results_total",
				Help: "Total bulk upsert outcomes, labeled by kind (inserted/modified/duplicate).",
			},
			[]string{"kind"},
		)

		runDurationSecs = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_run_duration_seconds",
				Help:    "Histogram of adapter run durations.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"adapter"},
		)

		runsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_runs_total",
				Help: "Total adapter runs, labeled by adapter and final status.",
			},
			[]string{"adapter", "status"},
		)
	})
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records one fetch attempt's outcome and latency.
func ObserveFetch(adapter, outcome string, duration time.Duration) {
	fetchRequestsTotal.WithLabelValues(adapter, outcome).Inc()
	fetchDurationSecs.WithLabelValues(adapter).Observe(duration.Seconds())
}

// ObserveRobotsBlocked increments the robots-denied counter for origin.
func ObserveRobotsBlocked(origin string) {
	robotsBlockedTotal.WithLabelValues(origin).Inc()
}

// ObserveRobotsFetchError increments the robots.txt fetch-failure counter.
func ObserveRobotsFetchError() {
	robotsFetchErrTotal.Inc()
}

// ObserveRateLimitWait records time spent waiting on domain's bucket.
func ObserveRateLimitWait(domain string, wait time.Duration) {
	rateLimitWaitSecs.WithLabelValues(domain).Observe(wait.Seconds())
}

// ObserveUpsert records one upsert outcome.
func ObserveUpsert(kind string, count int) {
	if count <= 0 {
		return
	}
	upsertResultsTotal.WithLabelValues(kind).Add(float64(count))
}

// ObserveRun records one adapter run's duration and final status.
func ObserveRun(adapter, status string, duration time.Duration) {
	runDurationSecs.WithLabelValues(adapter).Observe(duration.Seconds())
	runsTotal.WithLabelValues(adapter, status).Inc()
}
