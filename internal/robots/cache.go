package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

const (
	fetchTimeout   = 10 * time.Second
	maxBodyBytes   = 512 * 1024
	robotsTxtPath  = "/robots.txt"
	defaultTTL     = time.Hour
	defaultMaxSize = 100
)

// entry is the cached state for one origin.
type entry struct {
	origin    string
	fetchedAt time.Time
	exists    bool
	raw       []byte
	data      *robotstxt.RobotsData
	allowAll  bool
}

func (e *entry) stale(ttl time.Duration) bool {
	return time.Since(e.fetchedAt) > ttl
}

// Stats are the counters the run log's robots summary draws from.
type Stats struct {
	Checked           int
	URLsBlocked       int
	CrawlDelayApplied int
	FetchErrors       int
}

// Cache fetches and caches robots.txt per origin, answering allow/deny and
// crawl-delay queries. One network fetch is ever in flight per origin at a
// time; concurrent misses on the same origin coalesce onto it.
type Cache struct {
	client    *http.Client
	userAgent string
	ttl       time.Duration
	maxSize   int

	mu      sync.Mutex
	entries map[string]*entry
	order   []string // insertion order, for FIFO eviction
	inFlight map[string]*sync.WaitGroup

	statsMu sync.Mutex
	stats   Stats

	onBlocked    func(origin string)
	onFetchError func()
}

// OnBlocked registers a callback invoked whenever IsAllowed denies a URL,
// for metrics export.
func (c *Cache) OnBlocked(fn func(origin string)) {
	c.onBlocked = fn
}

// OnFetchError registers a callback invoked whenever a robots.txt fetch
// falls back to allow-all, for metrics export.
func (c *Cache) OnFetchError(fn func()) {
	c.onFetchError = fn
}

// New builds a Cache. ttl <= 0 uses the 1h default; maxSize <= 0 uses 100.
func New(client *http.Client, userAgent string, ttl time.Duration, maxSize int) *Cache {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	return &Cache{
		client:    client,
		userAgent: userAgent,
		ttl:       ttl,
		maxSize:   maxSize,
		entries:   make(map[string]*entry),
		inFlight:  make(map[string]*sync.WaitGroup),
	}
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache) Stats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

func originOf(rawURL string) (string, *url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("robots: parse url: %w", err)
	}
	if u.Host == "" {
		return "", nil, fmt.Errorf("robots: empty host in url %q", rawURL)
	}
	origin := u.Scheme + "://" + u.Host
	return origin, u, nil
}

// IsAllowed answers whether url is permitted for userAgent. A fetch or parse
// failure is absorbed into an allow-all entry, per spec: unreachable robots
// must not produce silent denial.
func (c *Cache) IsAllowed(ctx context.Context, rawURL string) (bool, error) {
	origin, parsed, err := originOf(rawURL)
	if err != nil {
		return false, err
	}

	c.statsMu.Lock()
	c.stats.Checked++
	c.statsMu.Unlock()

	e, err := c.getOrFetch(ctx, origin)
	if err != nil {
		return false, err
	}

	if e.allowAll {
		return true, nil
	}

	allowed := e.data.TestAgent(parsed.Path, c.userAgent)
	if !allowed {
		c.statsMu.Lock()
		c.stats.URLsBlocked++
		c.statsMu.Unlock()
		if c.onBlocked != nil {
			c.onBlocked(origin)
		}
	}
	return allowed, nil
}

// GetCrawlDelay returns the origin's crawl-delay for the configured user
// agent, or 0 if unset or uncached.
func (c *Cache) GetCrawlDelay(rawURL string) time.Duration {
	origin, _, err := originOf(rawURL)
	if err != nil {
		return 0
	}

	c.mu.Lock()
	e, ok := c.entries[origin]
	c.mu.Unlock()
	if !ok || e.allowAll || e.data == nil {
		return 0
	}

	group := e.data.FindGroup(c.userAgent)
	if group == nil || group.CrawlDelay == 0 {
		return 0
	}
	c.statsMu.Lock()
	c.stats.CrawlDelayApplied++
	c.statsMu.Unlock()
	return group.CrawlDelay
}

// GetSitemaps returns the sitemap URLs declared by the origin's robots.txt.
func (c *Cache) GetSitemaps(rawURL string) []string {
	origin, _, err := originOf(rawURL)
	if err != nil {
		return nil
	}
	c.mu.Lock()
	e, ok := c.entries[origin]
	c.mu.Unlock()
	if !ok || e.data == nil {
		return nil
	}
	return e.data.Sitemaps
}

func (c *Cache) getOrFetch(ctx context.Context, origin string) (*entry, error) {
	c.mu.Lock()
	if e, ok := c.entries[origin]; ok && !e.stale(c.ttl) {
		c.mu.Unlock()
		return e, nil
	}
	if wg, ok := c.inFlight[origin]; ok {
		c.mu.Unlock()
		wg.Wait()
		c.mu.Lock()
		e := c.entries[origin]
		c.mu.Unlock()
		return e, nil
	}

	wg := &sync.WaitGroup{}
	wg.Add(1)
	c.inFlight[origin] = wg
	c.mu.Unlock()

	e := c.fetch(ctx, origin)

	c.mu.Lock()
	c.put(origin, e)
	delete(c.inFlight, origin)
	c.mu.Unlock()
	wg.Done()

	return e, nil
}

// put inserts e, evicting the oldest entry (FIFO) if at maxSize. Caller
// holds c.mu.
func (c *Cache) put(origin string, e *entry) {
	if _, exists := c.entries[origin]; !exists {
		if len(c.order) >= c.maxSize {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, origin)
	}
	c.entries[origin] = e
}

func (c *Cache) fetch(ctx context.Context, origin string) *entry {
	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	robotsURL := origin + robotsTxtPath
	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, robotsURL, http.NoBody)
	if err != nil {
		return c.allowAllEntry(origin)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.statsMu.Lock()
		c.stats.FetchErrors++
		c.statsMu.Unlock()
		if c.onFetchError != nil {
			c.onFetchError()
		}
		return c.allowAllEntry(origin)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		c.statsMu.Lock()
		c.stats.FetchErrors++
		c.statsMu.Unlock()
		if c.onFetchError != nil {
			c.onFetchError()
		}
		return c.allowAllEntry(origin)
	}
	if resp.StatusCode != http.StatusOK {
		return &entry{origin: origin, fetchedAt: time.Now(), exists: false, allowAll: true}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.statsMu.Lock()
		c.stats.FetchErrors++
		c.statsMu.Unlock()
		if c.onFetchError != nil {
			c.onFetchError()
		}
		return c.allowAllEntry(origin)
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		c.statsMu.Lock()
		c.stats.FetchErrors++
		c.statsMu.Unlock()
		if c.onFetchError != nil {
			c.onFetchError()
		}
		return c.allowAllEntry(origin)
	}

	return &entry{origin: origin, fetchedAt: time.Now(), exists: true, raw: body, data: data}
}

func (c *Cache) allowAllEntry(origin string) *entry {
	return &entry{origin: origin, fetchedAt: time.Now(), allowAll: true}
}

// Origins returns the cache's current origin keys, sorted alphabetically,
// for introspection/tests.
func (c *Cache) Origins() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	sort.Strings(out)
	return out
}
