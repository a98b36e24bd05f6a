package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/feed"
	"graphics_feed/internal/rss"
)

// FeedInput is one per-outlet store read by the aggregator, with the medium
// tag its articles receive.
type FeedInput struct {
	Medium string
	Store  ArticleStore
}

// AggregateService builds the unified recent feed from per-outlet stores.
type AggregateService struct {
	feeds   []FeedInput
	output  ArticleStore
	window  time.Duration
	rssOut  TextWriter
	channel rss.Channel
	now     func() time.Time
	logger  *slog.Logger
}

func NewAggregateService(feeds []FeedInput, output ArticleStore, window time.Duration, logger *slog.Logger) *AggregateService {
	return &AggregateService{
		feeds:  feeds,
		output: output,
		window: window,
		now:    time.Now,
		logger: logger.With("component", "aggregate"),
	}
}

// WithRSS also renders the aggregated feed as RSS into w.
func (s *AggregateService) WithRSS(w TextWriter, ch rss.Channel) *AggregateService {
	s.rssOut = w
	s.channel = ch
	return s
}

// Run reads every feed, keeps the articles inside the window, sorts them
// newest first and writes the result. Unreadable feeds count as empty.
func (s *AggregateService) Run(ctx context.Context) ([]domain.Article, error) {
	now := s.now().UTC()

	all := []domain.Article{}
	for _, f := range s.feeds {
		articles, err := f.Store.Load(ctx)
		if err != nil {
			var pe *domain.PersistenceError
			if !errors.As(err, &pe) {
				return nil, fmt.Errorf("load %s feed: %w", f.Medium, err)
			}
			s.logger.Warn("feed unreadable, skipping", "medium", f.Medium, "path", pe.Path, "error", pe.Err)
			continue
		}

		recent := feed.Within(articles, f.Medium, now, s.window)
		s.logger.Debug("feed filtered", "medium", f.Medium, "stored", len(articles), "recent", len(recent))
		all = append(all, recent...)
	}

	feed.SortByDate(all)

	if err := s.output.Replace(ctx, all); err != nil {
		return all, fmt.Errorf("write aggregated feed: %w", err)
	}

	if s.rssOut != nil {
		doc, err := rss.Render(all, s.channel, now)
		if err != nil {
			return all, fmt.Errorf("render rss: %w", err)
		}
		if err := s.rssOut.Write(ctx, doc); err != nil {
			return all, fmt.Errorf("write rss: %w", err)
		}
	}

	s.logger.Info("aggregated feed written", "feeds", len(s.feeds), "articles", len(all), "window", s.window)

	return all, nil
}
