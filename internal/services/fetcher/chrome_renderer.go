// -----------------------------------------------------------------------
// Chrome Renderer - Local headless Chrome rendering tier
// -----------------------------------------------------------------------

package fetcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docify/internal/common"
)

// ChromeRenderer drives a headless Chrome instance for pages that only
// produce content after JavaScript execution. The browser context is
// created lazily on first use and reused across renders.
type ChromeRenderer struct {
	config *common.FetcherConfig
	logger arbor.ILogger

	mu             sync.Mutex
	allocatorCtx   context.Context
	allocatorStop  context.CancelFunc
	browserCtx     context.Context
	browserStop    context.CancelFunc
	started        bool
	startupFailure error
}

// NewChromeRenderer creates a renderer; Chrome is not launched until the
// first Render call.
func NewChromeRenderer(config *common.FetcherConfig, logger arbor.ILogger) *ChromeRenderer {
	return &ChromeRenderer{
		config: config,
		logger: logger,
	}
}

func (r *ChromeRenderer) ensureStarted() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return r.startupFailure
	}
	r.started = true

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1920, 1080),
	)

	r.allocatorCtx, r.allocatorStop = chromedp.NewExecAllocator(context.Background(), opts...)
	r.browserCtx, r.browserStop = chromedp.NewContext(r.allocatorCtx,
		chromedp.WithLogf(func(s string, i ...interface{}) {
			r.logger.Debug().Msg(fmt.Sprintf("chromedp: "+s, i...))
		}))

	// Startup probe keeps a broken Chrome install from hanging every fetch.
	testCtx, cancel := context.WithTimeout(r.browserCtx, 30*time.Second)
	defer cancel()
	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		r.startupFailure = fmt.Errorf("headless chrome unavailable: %w", err)
		r.logger.Warn().Err(err).Msg("Headless Chrome startup probe failed, renderer disabled")
		return r.startupFailure
	}

	r.logger.Info().Msg("Headless Chrome renderer started")
	return nil
}

// Render navigates to the URL, waits for JavaScript to settle, and returns
// the rendered document HTML.
func (r *ChromeRenderer) Render(ctx context.Context, url string, profile HeaderProfile) ([]byte, error) {
	if err := r.ensureStarted(); err != nil {
		return nil, err
	}

	pageCtx, cancel := chromedp.NewContext(r.browserCtx)
	defer cancel()

	pageCtx, timeoutCancel := context.WithTimeout(pageCtx, r.config.ChromeNavTimeout+r.config.ChromeWaitTime)
	defer timeoutCancel()

	headers := network.Headers{}
	for name, value := range profile.Headers {
		headers[name] = value
	}

	var html string
	err := chromedp.Run(pageCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
		chromedp.Navigate(url),
		chromedp.Sleep(r.config.ChromeWaitTime),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome render failed for %s: %w", url, err)
	}

	return []byte(html), nil
}

// Close shuts the browser down.
func (r *ChromeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browserStop != nil {
		r.browserStop()
	}
	if r.allocatorStop != nil {
		r.allocatorStop()
	}
	r.started = false
	r.startupFailure = nil
	return nil
}
