package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/contentradar/scraper/internal/ratelimit"
	"github.com/contentradar/scraper/internal/retry"
	"github.com/contentradar/scraper/internal/useragent"
)

const (
	defaultTimeout    = 30 * time.Second
	maxResponseBytes  = 10 * 1024 * 1024
	successStatusLow  = 200
	successStatusHigh = 400
)

// RobotsChecker is the capability the fetcher needs from the robots cache.
type RobotsChecker interface {
	IsAllowed(ctx context.Context, rawURL string) (bool, error)
}

// Logger is the minimal structured-logging capability the fetcher needs.
type Logger interface {
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
}

// Options are per-call overrides layered on top of the fetcher's defaults.
type Options struct {
	Method     string
	Headers    map[string]string
	Body       []byte
	MaxRetries *int
}

// Result is a completed fetch's payload and response metadata.
type Result struct {
	Body       []byte
	StatusCode int
	Headers    http.Header
	Attempts   int
}

// Fetcher executes one logical fetch through the robots -> concurrency ->
// rate-limit -> retry envelope described in spec.md §4.3.
type Fetcher struct {
	client    *http.Client
	robots    RobotsChecker
	limiter   *ratelimit.Limiter
	uaPool    *useragent.Pool
	log       Logger
	retryCfg  retry.Config
	headless  *HeadlessRenderer

	onResult func(outcome string, duration time.Duration)
}

// OnResult registers a callback invoked after every Fetch with an outcome
// label ("success" or "error") and the call's total duration, for metrics
// export.
func (f *Fetcher) OnResult(fn func(outcome string, duration time.Duration)) {
	f.onResult = fn
}

// New builds a Fetcher. headless may be nil when USE_PUPPETEER is disabled.
func New(
	robots RobotsChecker,
	limiter *ratelimit.Limiter,
	uaPool *useragent.Pool,
	log Logger,
	retryCfg retry.Config,
	headless *HeadlessRenderer,
) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: defaultTimeout},
		robots:   robots,
		limiter:  limiter,
		uaPool:   uaPool,
		log:      log,
		retryCfg: retryCfg,
		headless: headless,
	}
}

// Fetch runs the full envelope for rawURL. useHeadless routes the render
// through the chromedp-driven path instead of net/http.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts Options, useHeadless bool) (*Result, error) {
	start := time.Now()
	result, err := f.fetch(ctx, rawURL, opts, useHeadless)
	if f.onResult != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		f.onResult(outcome, time.Since(start))
	}
	return result, err
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string, opts Options, useHeadless bool) (*Result, error) {
	allowed, err := f.robots.IsAllowed(ctx, rawURL)
	if err != nil {
		f.log.Warn("robots check failed, allowing", "url", rawURL, "error", err.Error())
	} else if !allowed {
		f.log.Warn("robots disallowed", "url", rawURL)
		return nil, fmt.Errorf("%w: %s", ErrRobotsDisallowed, rawURL)
	}

	maxRetries := f.retryCfg.MaxRetries
	if opts.MaxRetries != nil {
		maxRetries = *opts.MaxRetries
	}
	cfg := f.retryCfg
	cfg.MaxRetries = maxRetries

	var result *Result
	attempts := 0

	err = retry.Do(ctx, cfg, func(attempt int) error {
		attempts = attempt

		release, acqErr := f.limiter.Acquire(ctx, rawURL)
		if acqErr != nil {
			return fmt.Errorf("acquire rate limit: %w", acqErr)
		}
		defer release()

		var res *Result
		var doErr error
		if useHeadless && f.headless != nil {
			res, doErr = f.headless.Render(ctx, rawURL, defaultTimeout)
		} else {
			res, doErr = f.doHTTP(ctx, rawURL, opts)
		}
		if doErr != nil {
			return doErr
		}
		if res.StatusCode < successStatusLow || res.StatusCode >= successStatusHigh {
			return fmt.Errorf("fetch %s: unexpected status %d", rawURL, res.StatusCode)
		}
		result = res
		return nil
	})

	if err != nil {
		return nil, &FetchError{URL: rawURL, Attempts: attempts, Err: err}
	}
	result.Attempts = attempts
	return result, nil
}

func (f *Fetcher) doHTTP(ctx context.Context, rawURL string, opts Options) (*Result, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if len(opts.Body) > 0 {
		bodyReader = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("fetch: create request: %w", err)
	}

	ua := f.uaPool.Pick()
	req.Header.Set("User-Agent", ua)
	for k, v := range useragent.BrowserHeaders(ua) {
		req.Header.Set(k, v)
	}
	// Accept-Encoding is left to the transport, which then requests gzip and
	// decompresses the body itself; a hand-set value turns that off.
	req.Header.Del("Accept-Encoding")
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}

	return &Result{Body: body, StatusCode: resp.StatusCode, Headers: resp.Header.Clone()}, nil
}

// IsRobotsDisallowed reports whether err originated from a robots denial.
func IsRobotsDisallowed(err error) bool {
	return errors.Is(err, ErrRobotsDisallowed)
}
