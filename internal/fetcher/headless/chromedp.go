// Package headless fetches rendered page content via chromedp and headless
// Chrome. One browser session lives for a whole run; each URL gets its own
// tab context.
package headless

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/leadgrid/harvester/internal/harvest"
)

// blockedResourcePatterns lists URL patterns aborted at the network layer.
// Media, styling and fonts are dead weight for email extraction; scripts,
// documents and XHR stay unblocked so client-rendered text still appears.
var blockedResourcePatterns = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.svg", "*.webp", "*.ico",
	"*.mp4", "*.avi", "*.mov", "*.webm",
	"*.css", "*.woff", "*.woff2", "*.ttf", "*.otf",
}

// Config controls the behavior of the headless fetcher.
type Config struct {
	UserAgent    string
	NavTimeout   time.Duration
	Settle       time.Duration
	SocialSettle time.Duration
}

func (c Config) withDefaults() Config {
	if c.NavTimeout <= 0 {
		c.NavTimeout = 8 * time.Second
	}
	if c.Settle <= 0 {
		c.Settle = 1500 * time.Millisecond
	}
	if c.SocialSettle <= 0 {
		// Social profiles render contact data after extra async calls.
		c.SocialSettle = 2500 * time.Millisecond
	}
	if c.SocialSettle < c.Settle {
		c.SocialSettle = c.Settle
	}
	return c
}

// Fetcher implements harvest.Fetcher using a long-lived browser session.
type Fetcher struct {
	cfg           Config
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	logger        *zap.Logger
}

// New launches the browser and warms up a session. The caller must Close.
func New(cfg Config, logger *zap.Logger) (*Fetcher, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("hide-scrollbars", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}
	logger.Debug("Browser session ready")

	return &Fetcher{
		cfg:           cfg,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		logger:        logger,
	}, nil
}

// Close tears down the browser and allocator contexts.
func (f *Fetcher) Close() {
	f.browserCancel()
	f.allocCancel()
	f.logger.Debug("Browser session closed")
}

// Fetch navigates to the request URL and returns the rendered DOM after the
// settle delay. Social profiles are rewritten to their About sub-page, where
// the contact email actually lives, and get the longer settle delay.
func (f *Fetcher) Fetch(ctx context.Context, req harvest.FetchRequest) (harvest.Page, error) {
	target := req.URL
	settle := f.cfg.Settle
	if req.Type == harvest.URLTypeSocialProfile {
		target = AboutURL(target)
		settle = f.cfg.SocialSettle
	}

	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, f.cfg.NavTimeout+settle)
	defer cancelTask()

	stop := forwardCancel(ctx, cancelTask)
	defer stop()

	var html string
	actions := []chromedp.Action{
		f.networkSetupAction(),
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return harvest.Page{}, fmt.Errorf("chromedp run: %w", err)
	}
	return harvest.Page{URL: target, HTML: html}, nil
}

func (f *Fetcher) networkSetupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if err := network.SetBlockedURLS(blockedResourcePatterns).Do(ctx); err != nil {
			return fmt.Errorf("block resource patterns: %w", err)
		}
		if f.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(f.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

// forwardCancel propagates outer-context cancellation into the tab task.
func forwardCancel(ctx context.Context, cancel context.CancelFunc) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}

// AboutURL rewrites a social profile URL to its About sub-page. The rewrite
// is idempotent: an About URL, with or without a query, comes back unchanged.
func AboutURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if u == "" {
		return raw
	}
	if strings.HasSuffix(u, "/about") || strings.Contains(u, "/about?") {
		return u
	}
	return u + "/about"
}

// Factory opens a Fetcher on demand, so browser startup cost is only paid
// once a batch is known to be non-empty.
type Factory struct {
	cfg    Config
	logger *zap.Logger
}

// NewFactory creates a Factory.
func NewFactory(cfg Config, logger *zap.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// Open implements harvest.FetcherFactory.
func (f *Factory) Open(_ context.Context) (harvest.Fetcher, error) {
	return New(f.cfg, f.logger)
}
