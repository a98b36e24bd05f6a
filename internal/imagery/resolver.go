package imagery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/retry"
)

// ErrNoImageMeta means the page was fetched but carries no image meta tag.
var ErrNoImageMeta = errors.New("no og:image or twitter:image meta tag")

// Getter fetches a page body.
type Getter interface {
	Get(ctx context.Context, outlet, url string, header http.Header) ([]byte, error)
}

// PageHeader returns a copy of the outlet's header set that asks for the
// HTML article page rather than an API document.
func PageHeader(outlet http.Header) http.Header {
	h := outlet.Clone()
	if h == nil {
		h = make(http.Header)
	}
	h.Set("Accept", "text/html,application/xhtml+xml")
	return h
}

// Resolver fetches article pages and reads their share image meta tags.
// Each attempt goes out with a new client identity chosen by the Getter.
type Resolver struct {
	getter Getter
	outlet string
	header http.Header
	policy retry.Policy
	logger *slog.Logger
}

func NewResolver(getter Getter, outlet string, header http.Header, policy retry.Policy, logger *slog.Logger) *Resolver {
	return &Resolver{
		getter: getter,
		outlet: outlet,
		header: header,
		policy: policy,
		logger: logger.With("component", "image_resolver"),
	}
}

// Resolve returns the og:image (or twitter:image) of articleURL. After the
// policy is exhausted it returns a *domain.EnrichmentFailure.
func (r *Resolver) Resolve(ctx context.Context, articleURL string) (string, error) {
	var img string

	attempts, err := retry.Do(ctx, r.policy, func(attempt int) error {
		r.logger.Debug("fetching image meta", "url", articleURL, "attempt", attempt)

		body, err := r.getter.Get(ctx, r.outlet, articleURL, r.header.Clone())
		if err != nil {
			return err
		}

		found, err := ExtractImage(body)
		if err != nil {
			return retry.Permanent(err)
		}
		img = found
		return nil
	}, func(err error, attempt int, wait time.Duration) {
		r.logger.Warn("image fetch failed, retrying",
			"url", articleURL,
			"attempt", attempt,
			"backoff", wait,
			"error", err,
		)
	})
	if err != nil {
		return "", &domain.EnrichmentFailure{URL: articleURL, Attempts: attempts, Err: err}
	}

	return img, nil
}

// ExtractImage reads the share image from an HTML document.
func ExtractImage(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	for _, selector := range []string{
		`meta[property="og:image"]`,
		`meta[property="twitter:image"]`,
		`meta[name="twitter:image"]`,
	} {
		if content := strings.TrimSpace(doc.Find(selector).First().AttrOr("content", "")); content != "" {
			return content, nil
		}
	}

	return "", ErrNoImageMeta
}
