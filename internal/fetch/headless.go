package fetch

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// HeadlessRenderer drives fetches through a headless Chrome instance,
// grounded on JakeFAU-realtime-cpi-crawler's chromedp fetcher. Unlike that
// fetcher, one browser process is shared process-wide (per spec.md §4.3);
// each Render call opens and closes its own tab.
type HeadlessRenderer struct {
	userAgent   string
	allocator   context.Context
	allocCancel context.CancelFunc
	closeOnce   sync.Once
}

// NewHeadlessRenderer launches the shared browser allocator. Close() must
// be called once at process shutdown.
func NewHeadlessRenderer(userAgent string) (*HeadlessRenderer, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &HeadlessRenderer{userAgent: userAgent, allocator: allocCtx, allocCancel: cancel}, nil
}

// Close tears down the shared browser allocator. Safe to call more than once.
func (h *HeadlessRenderer) Close() {
	h.closeOnce.Do(h.allocCancel)
}

// Render navigates to rawURL in a fresh tab and returns the fully rendered
// DOM as the response body. The tab is closed on every exit path.
func (h *HeadlessRenderer) Render(ctx context.Context, rawURL string, timeout time.Duration) (*Result, error) {
	tabCtx, tabCancel := chromedp.NewContext(h.allocator)
	defer tabCancel()

	tabCtx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()

	meta := &responseMeta{headers: http.Header{}}
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if resp, ok := ev.(*network.EventResponseReceived); ok {
			meta.capture(resp)
		}
	})

	var html string
	var finalURL string
	actions := []chromedp.Action{
		h.networkSetup(),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return nil, fmt.Errorf("headless render %s: %w", rawURL, err)
	}

	status, headers := meta.snapshot()
	if status == 0 {
		status = http.StatusOK
	}
	return &Result{Body: []byte(html), StatusCode: status, Headers: headers}, nil
}

func (h *HeadlessRenderer) networkSetup() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if h.userAgent == "" {
			return nil
		}
		if err := emulation.SetUserAgentOverride(h.userAgent).Do(ctx); err != nil {
			return fmt.Errorf("set user-agent: %w", err)
		}
		return nil
	})
}

type responseMeta struct {
	mu      sync.RWMutex
	status  int
	headers http.Header
}

func (m *responseMeta) capture(event *network.EventResponseReceived) {
	if event.Type != network.ResourceTypeDocument || event.Response == nil {
		return
	}
	headers := http.Header{}
	for key, value := range event.Response.Headers {
		headers.Add(key, fmt.Sprint(value))
	}
	m.mu.Lock()
	m.status = int(event.Response.Status)
	m.headers = headers
	m.mu.Unlock()
}

func (m *responseMeta) snapshot() (int, http.Header) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dst := make(http.Header, len(m.headers))
	for k, vs := range m.headers {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
	return m.status, dst
}
