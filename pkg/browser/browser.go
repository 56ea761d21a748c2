// Package browser renders pages through a headless Chrome session. The
// session is a scoped resource: each Render call acquires a fresh tab and
// releases it on every exit path, so no browser state leaks between calls.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/98.0.4758.102 Safari/537.36"

// Session owns a headless Chrome allocator shared by sequential Render
// calls. It is not safe for concurrent use; the pipeline is single-threaded
// by design.
type Session struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
	headful     bool
}

// Option configures a Session.
type Option func(*Session)

// WithTimeout bounds each Render call.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// WithHeadful runs the browser with a visible window, for debugging.
func WithHeadful() Option {
	return func(s *Session) { s.headful = true }
}

// New starts a headless Chrome allocator.
func New(opts ...Option) *Session {
	s := &Session{timeout: 20 * time.Second}
	for _, o := range opts {
		o(s)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !s.headful),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(defaultUserAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	s.allocCtx = allocCtx
	s.allocCancel = cancel
	return s
}

// Render navigates to the URL in a fresh tab, waits for waitSelector to
// become visible (skipped when empty), and returns the rendered HTML. The
// tab is torn down before Render returns, success or not.
func (s *Session) Render(ctx context.Context, url, waitSelector string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(s.allocCtx)
	defer cancelTab()

	runCtx, cancelRun := context.WithTimeout(tabCtx, s.timeout)
	defer cancelRun()

	// Honor caller cancellation alongside the tab's own lifetime.
	stop := context.AfterFunc(ctx, cancelRun)
	defer stop()

	actions := []chromedp.Action{chromedp.Navigate(url)}
	if waitSelector != "" {
		actions = append(actions, chromedp.WaitVisible(waitSelector, chromedp.ByQuery))
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(runCtx, actions...); err != nil {
		return "", eris.Wrapf(err, "browser: render %s", url)
	}
	return html, nil
}

// Close tears down the allocator and any remaining browser process.
func (s *Session) Close() {
	s.allocCancel()
}
