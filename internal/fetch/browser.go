package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/retry"
)

// BrowserConfig holds headless browser configuration.
type BrowserConfig struct {
	Bin        string
	Headless   bool
	Timeout    time.Duration
	UserAgents []string
	Retry      retry.Policy
}

// Browser loads URLs in a headless Chrome for outlets that block plain
// HTTP clients. The browser is launched on first use.
type Browser struct {
	cfg    BrowserConfig
	logger *slog.Logger

	mu      sync.Mutex
	browser *rod.Browser
}

func NewBrowser(cfg BrowserConfig, logger *slog.Logger) *Browser {
	if len(cfg.UserAgents) == 0 {
		cfg.UserAgents = DefaultUserAgents
	}
	return &Browser{
		cfg:    cfg,
		logger: logger.With("component", "browser"),
	}
}

func (b *Browser) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		return b.browser, nil
	}

	l := launcher.New().Headless(b.cfg.Headless)
	if b.cfg.Bin != "" {
		l = l.Bin(b.cfg.Bin)
	} else if path, ok := launcher.LookPath(); ok {
		l = l.Bin(path)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	b.logger.Info("browser launched", "headless", b.cfg.Headless)
	b.browser = browser
	return browser, nil
}

// RandomUserAgent picks one of the configured client identities.
func (b *Browser) RandomUserAgent() string {
	return pickUserAgent(b.cfg.UserAgents)
}

// Get navigates to url and returns the rendered body text, which for JSON
// endpoints is the raw document. Every attempt opens a new page with the
// header set and a freshly picked User-Agent.
func (b *Browser) Get(ctx context.Context, outlet, url string, header http.Header) ([]byte, error) {
	browser, err := b.connect()
	if err != nil {
		return nil, &domain.TransportError{Outlet: outlet, URL: url, Err: err}
	}

	var body []byte
	attempts, err := retry.Do(ctx, b.cfg.Retry, func(attempt int) error {
		text, err := b.load(ctx, browser, url, header)
		if err != nil {
			return err
		}
		body = text
		return nil
	}, func(err error, attempt int, wait time.Duration) {
		b.logger.Warn("page load failed, retrying",
			"outlet", outlet,
			"url", url,
			"attempt", attempt,
			"backoff", wait,
			"error", err,
		)
	})
	if err != nil {
		return nil, &domain.TransportError{
			Outlet: outlet,
			URL:    url,
			Err:    fmt.Errorf("after %d attempts: %w", attempts, err),
		}
	}

	return body, nil
}

func (b *Browser) load(ctx context.Context, browser *rod.Browser, url string, header http.Header) ([]byte, error) {
	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.RandomUserAgent()}); err != nil {
		return nil, fmt.Errorf("set user agent: %w", err)
	}
	if extra := extraHeaders(header); len(extra) > 0 {
		if _, err := page.SetExtraHeaders(extra); err != nil {
			return nil, fmt.Errorf("set headers: %w", err)
		}
	}

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	body, err := page.Element("body")
	if err != nil {
		return nil, fmt.Errorf("find body: %w", err)
	}
	text, err := body.Text()
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return []byte(text), nil
}

// extraHeaders flattens header into the name/value list rod expects. The
// User-Agent is left out since it is set per attempt.
func extraHeaders(header http.Header) []string {
	var dict []string
	for name, values := range header {
		if http.CanonicalHeaderKey(name) == "User-Agent" {
			continue
		}
		for _, v := range values {
			dict = append(dict, name, v)
		}
	}
	return dict
}

func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		err := b.browser.Close()
		b.browser = nil
		return err
	}
	return nil
}
