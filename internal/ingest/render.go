// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Renderer loads a page with client-side behavior executed and returns the
// resulting HTML. Used as a fallback when plain fetching yields too little
// text.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
	Close() error
}

// BrowserRenderer renders pages in a headless Chromium via rod. The browser
// is launched lazily on first use and shared across renders.
type BrowserRenderer struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

// NewBrowserRenderer returns a renderer with the given per-page timeout.
func NewBrowserRenderer(timeout time.Duration) *BrowserRenderer {
	return &BrowserRenderer{timeout: timeout}
}

func (r *BrowserRenderer) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}

	r.launcher = launcher.New().Headless(true)
	controlURL, err := r.launcher.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	r.browser = browser
	return browser, nil
}

// Render navigates to url, waits for the page to load and settle, and
// returns the rendered document HTML.
func (r *BrowserRenderer) Render(ctx context.Context, url string) (string, error) {
	browser, err := r.connect()
	if err != nil {
		return "", err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return "", fmt.Errorf("opening page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(r.timeout)
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("waiting for page load: %w", err)
	}
	// Give late-hydrating frameworks a moment to fill the DOM.
	page.WaitRequestIdle(time.Second, nil, nil, nil)()

	content, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("reading rendered HTML: %w", err)
	}
	return content, nil
}

// Close shuts the shared browser down.
func (r *BrowserRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.launcher.Cleanup()
	r.browser = nil
	return err
}
