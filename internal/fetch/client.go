// Package fetch holds the transports outlet adapters read through.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/retry"
)

// DefaultUserAgents is rotated per attempt when no list is configured.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Linux; Android 11; SM-G981B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.0.0 Mobile Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 16_2 like Mac OS X) AppleWebKit/537.36 (KHTML, like Gecko) Version/16.2 Mobile/15E148 Safari/537.36",
}

// Config holds HTTP transport configuration.
type Config struct {
	Timeout    time.Duration
	UserAgents []string
	Retry      retry.Policy
}

// Client is a plain HTTP transport with per-request timeout and retries.
type Client struct {
	httpClient *http.Client
	userAgents []string
	policy     retry.Policy
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	agents := cfg.UserAgents
	if len(agents) == 0 {
		agents = DefaultUserAgents
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgents: agents,
		policy:     cfg.Retry,
		logger:     logger.With("component", "http"),
	}
}

// RandomUserAgent picks one of the configured client identities.
func (c *Client) RandomUserAgent() string {
	return pickUserAgent(c.userAgents)
}

func pickUserAgent(agents []string) string {
	return agents[rand.IntN(len(agents))]
}

// Get fetches url and returns the response body. Every attempt goes out with
// a freshly picked User-Agent. Failures are returned as *domain.TransportError.
func (c *Client) Get(ctx context.Context, outlet, url string, header http.Header) ([]byte, error) {
	var body []byte

	attempts, err := retry.Do(ctx, c.policy, func(attempt int) error {
		b, err := c.doRequest(ctx, outlet, url, header)
		if err != nil {
			var te *domain.TransportError
			if errors.As(err, &te) && !te.Retryable() {
				return retry.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	}, func(err error, attempt int, wait time.Duration) {
		c.logger.Warn("request failed, retrying",
			"outlet", outlet,
			"url", url,
			"attempt", attempt,
			"backoff", wait,
			"error", err,
		)
	})
	if err != nil {
		var te *domain.TransportError
		if errors.As(err, &te) {
			return nil, err
		}
		return nil, &domain.TransportError{
			Outlet: outlet,
			URL:    url,
			Err:    fmt.Errorf("after %d attempts: %w", attempts, err),
		}
	}

	return body, nil
}

func (c *Client) doRequest(ctx context.Context, outlet, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.TransportError{Outlet: outlet, URL: url, Err: fmt.Errorf("create request: %w", err)}
	}

	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set("User-Agent", c.RandomUserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Outlet: outlet, URL: url, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &domain.TransportError{Outlet: outlet, URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Outlet: outlet, URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	return body, nil
}
