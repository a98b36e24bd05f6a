package imagery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/pace"
)

// Strategy selects how a missing image is recovered.
type Strategy string

const (
	// StrategyTransform only derives images from known thumbnails.
	StrategyTransform Strategy = "transform"
	// StrategyFetch only reads the article page's meta tags.
	StrategyFetch Strategy = "fetch"
	// StrategyTransformFetch transforms first and fetches when that fails.
	StrategyTransformFetch Strategy = "transform_fetch"
)

// ParseStrategy validates a configured strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyTransform, "":
		return StrategyTransform, nil
	case StrategyFetch, StrategyTransformFetch:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown image strategy %q", s)
	}
}

func (s Strategy) transforms() bool { return s != StrategyFetch }
func (s Strategy) fetches() bool    { return s == StrategyFetch || s == StrategyTransformFetch }

// Locator resolves an image by requesting the article page.
type Locator interface {
	Resolve(ctx context.Context, articleURL string) (string, error)
}

// Report is the outcome of one backfill pass.
type Report struct {
	Articles   []domain.Article
	Missing    int
	Patched    int
	Unresolved []string
}

// Worker patches articles that have no image.
type Worker struct {
	strategy  Strategy
	transform Transform
	locator   Locator
	pacer     *pace.Pacer
	logger    *slog.Logger
}

// NewWorker builds a worker. locator may be nil when strategy never fetches.
// articleDelay is the pause between the end of one page fetch, retries
// included, and the start of the next.
func NewWorker(strategy Strategy, transform Transform, locator Locator, articleDelay time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		strategy:  strategy,
		transform: transform,
		locator:   locator,
		pacer:     pace.New(articleDelay),
		logger:    logger.With("component", "image_backfill"),
	}
}

// Image finds an image for a single article, or returns an error when none
// could be derived.
func (w *Worker) Image(ctx context.Context, a domain.Article) (string, error) {
	if w.strategy.transforms() {
		if img, ok := w.transform.Apply(a.Thumbnail); ok {
			return img, nil
		}
	}

	if !w.strategy.fetches() || w.locator == nil {
		return "", &domain.EnrichmentFailure{URL: a.URL, Err: fmt.Errorf("no thumbnail to transform")}
	}

	if err := w.pacer.Wait(ctx); err != nil {
		return "", err
	}
	defer w.pacer.Rest()
	return w.locator.Resolve(ctx, a.URL)
}

// Backfill scans articles for missing images and patches them on a copy.
// Articles that stay without an image are listed by URL in the report.
func (w *Worker) Backfill(ctx context.Context, articles []domain.Article) (*Report, error) {
	report := &Report{Articles: make([]domain.Article, len(articles))}
	copy(report.Articles, articles)

	for i := range report.Articles {
		a := &report.Articles[i]
		if a.HasImage() {
			continue
		}
		report.Missing++

		img, err := w.Image(ctx, *a)
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if err != nil {
			w.logger.Warn("image unresolved", "id", a.ID, "url", a.URL, "error", err)
			report.Unresolved = append(report.Unresolved, a.URL)
			continue
		}

		a.Img = img
		report.Patched++
	}

	w.logger.Info("backfill finished",
		"missing", report.Missing,
		"patched", report.Patched,
		"unresolved", len(report.Unresolved),
	)

	return report, nil
}
