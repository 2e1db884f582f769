// Package headless implements the fetch capability with chromedp.
package headless

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/memoryleak07/GFScraper/internal/engine"
)

const defaultNavigationTimeout = 45 * time.Second

// Config controls the behavior of the headless fetch sessions.
type Config struct {
	Headless          bool
	UserAgent         string
	ChromePath        string
	NavigationTimeout time.Duration
}

// Factory owns a shared Chrome exec allocator and hands out one isolated
// browser tab per task. It implements engine.FetcherFactory.
type Factory struct {
	cfg         Config
	allocator   context.Context
	allocCancel context.CancelFunc
	logger      *zap.Logger
}

// NewFactory creates the allocator the sessions will share.
func NewFactory(cfg Config, logger *zap.Logger) *Factory {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = defaultNavigationTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("lang", "en-US"),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Factory{
		cfg:         cfg,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		logger:      logger,
	}
}

// New opens a fresh browser tab. The tab is the task's exclusive fetch
// session until Close.
func (f *Factory) New(_ context.Context) (engine.Fetcher, error) {
	tabCtx, tabCancel := chromedp.NewContext(f.allocator,
		chromedp.WithLogf(func(string, ...any) {}),
	)
	return &Session{
		ctx:     tabCtx,
		cancel:  tabCancel,
		timeout: f.cfg.NavigationTimeout,
		logger:  f.logger,
	}, nil
}

// Close tears down the shared allocator and every remaining tab.
func (f *Factory) Close() {
	f.allocCancel()
}

// Session is one exclusive browser tab. It implements engine.Fetcher.
type Session struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	logger  *zap.Logger
}

// Fetch navigates to url and extracts the flight listing fields.
// Navigation faults are reported as engine.ErrNavigation, an empty listing
// as engine.ErrNoResults; both are retryable by the executor.
func (s *Session) Fetch(ctx context.Context, url string) (engine.FieldMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrNavigation, err)
	}

	runCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	actions := []chromedp.Action{
		chromedp.ActionFunc(func(ctx context.Context) error {
			return network.Enable().Do(ctx)
		}),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500 * time.Millisecond),
	}
	if err := chromedp.Run(runCtx, actions...); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrNavigation, err)
	}

	s.acceptCookies(runCtx, url)

	data := engine.FieldMap{}
	empty := true
	for _, field := range fieldSelectors {
		var texts []string
		js := fmt.Sprintf(
			`Array.from(document.querySelectorAll(%q)).map(el => el.innerText)`,
			field.selector,
		)
		if err := chromedp.Run(runCtx, chromedp.Evaluate(js, &texts)); err != nil {
			return nil, fmt.Errorf("extract %s: %w", field.name, err)
		}
		values := make([]string, 0, len(texts))
		for _, t := range texts {
			if cleaned := CleanText(t); cleaned != "" {
				values = append(values, cleaned)
			}
		}
		if len(values) > 0 {
			empty = false
		}
		data[field.name] = values
	}

	if empty {
		return nil, engine.ErrNoResults
	}
	return data, nil
}

// Close releases the tab. Safe on every exit path.
func (s *Session) Close() error {
	s.cancel()
	return nil
}

// acceptCookies clicks Google's consent button when the dialog is present.
// Best effort: a missing dialog or a failed click is not an error.
func (s *Session) acceptCookies(ctx context.Context, url string) {
	const js = `(() => {
		const byId = document.querySelector('#L2AGLb');
		if (byId) { byId.click(); return true; }
		const byText = Array.from(document.querySelectorAll('button'))
			.find(b => b.innerText && b.innerText.includes('Accept all'));
		if (byText) { byText.click(); return true; }
		return false;
	})()`

	var clicked bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &clicked)); err != nil {
		s.logger.Debug("cookie consent probe failed", zap.String("url", url), zap.Error(err))
		return
	}
	if clicked {
		s.logger.Debug("accepted cookie consent", zap.String("url", url))
	}
}
