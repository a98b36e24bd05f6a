package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/feed"
)

// Archive bundles the optional database side of a sync.
type Archive struct {
	Graphics  GraphicStore
	Credits   CreditStore
	SyncState SyncStateStore
	TxManager TransactionManager
}

type SyncService struct {
	source     Source
	store      ArticleStore
	archive    *Archive
	publisher  Publisher
	precedence feed.MergePrecedence
	logger     *slog.Logger
}

// NewSyncService wires one outlet's pipeline. archive and publisher may be
// nil when the database or the broker is disabled.
func NewSyncService(
	source Source,
	store ArticleStore,
	archive *Archive,
	publisher Publisher,
	precedence feed.MergePrecedence,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		source:     source,
		store:      store,
		archive:    archive,
		publisher:  publisher,
		precedence: precedence,
		logger:     logger.With("source", source.ID()),
	}
}

func (s *SyncService) SourceID() string {
	return s.source.ID()
}

// Sync fetches the outlet, merges into its store and forwards the result to
// the archive and the publisher. A partial fetch is merged like a full one;
// only a fetch that yields nothing at all is returned as an error.
func (s *SyncService) Sync(ctx context.Context) (*domain.SyncStats, error) {
	startTime := time.Now()
	s.logger.Info("starting sync",
		"source_name", s.source.Name(),
		"precedence", s.precedence,
	)

	stats := &domain.SyncStats{SourceID: s.source.ID()}

	incoming, fetchErr := s.source.FetchArticles(ctx)
	if fetchErr != nil {
		if len(incoming) == 0 {
			return stats, fmt.Errorf("fetch articles: %w", fetchErr)
		}
		stats.Partial = true
		s.logger.Warn("partial fetch, merging what was collected",
			"count", len(incoming),
			"error", fetchErr,
		)
	}

	stats.Fetched = len(incoming)
	incoming = s.dropUnidentified(incoming, stats)

	s.logger.Info("fetched articles from source", "count", stats.Fetched, "usable", len(incoming))

	existing, err := s.store.Load(ctx)
	if err != nil {
		var pe *domain.PersistenceError
		if !errors.As(err, &pe) {
			return stats, fmt.Errorf("load store: %w", err)
		}
		s.logger.Warn("stored state unreadable, starting empty", "path", pe.Path, "error", pe.Err)
		existing = nil
	}

	merged := feed.Merge(existing, incoming, s.precedence)
	fresh, updated := s.classify(existing, incoming, merged)
	stats.New = len(fresh)
	stats.Updated = len(updated)

	written, err := s.store.Save(ctx, merged)
	if err != nil {
		return stats, fmt.Errorf("save articles: %w", err)
	}
	stats.Written = written

	if s.archive != nil {
		s.archiveArticles(ctx, append(fresh, updated...), stats)
		if err := s.updateSyncState(ctx, len(merged), stats); err != nil {
			stats.Errors++
			s.logger.Error("update sync state", "error", err)
		}
	}

	if s.publisher != nil {
		for i := range fresh {
			if err := s.publisher.Publish(ctx, s.source.ID(), &fresh[i]); err != nil {
				stats.Errors++
				s.logger.Error("publish article", "id", fresh[i].ID, "error", err)
				continue
			}
			stats.Published++
		}
	}

	stats.Duration = time.Since(startTime)

	s.logger.Info("sync completed",
		"new", stats.New,
		"updated", stats.Updated,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
		"archived", stats.Archived,
		"published", stats.Published,
		"written", stats.Written,
		"partial", stats.Partial,
		"duration", stats.Duration,
	)

	return stats, nil
}

// dropUnidentified removes records that fell back to the placeholder id;
// they cannot be deduplicated.
func (s *SyncService) dropUnidentified(articles []domain.Article, stats *domain.SyncStats) []domain.Article {
	kept := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if a.ID == domain.NoID || a.ID == "" {
			stats.Skipped++
			s.logger.Debug("skipping article without id", "url", a.URL)
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

// classify splits the ids of incoming into unseen and already stored ones,
// returning the merged copy of each, in first-fetched order.
func (s *SyncService) classify(existing, incoming, merged []domain.Article) (fresh, updated []domain.Article) {
	stored := feed.IDs(existing)

	byID := make(map[string]domain.Article, len(merged))
	for _, a := range merged {
		byID[a.ID] = a
	}

	seen := make(map[string]struct{}, len(incoming))
	for _, a := range incoming {
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}

		if _, ok := stored[a.ID]; ok {
			updated = append(updated, byID[a.ID])
		} else {
			fresh = append(fresh, byID[a.ID])
		}
	}
	return fresh, updated
}

func (s *SyncService) archiveArticles(ctx context.Context, articles []domain.Article, stats *domain.SyncStats) {
	for i := range articles {
		if err := s.saveArticle(ctx, &articles[i]); err != nil {
			stats.Errors++
			s.logger.Error("archive article", "id", articles[i].ID, "error", err)
			continue
		}
		stats.Archived++
	}
}

func (s *SyncService) saveArticle(ctx context.Context, article *domain.Article) error {
	return s.archive.TxManager.WithTransaction(ctx, func(txCtx context.Context) error {
		graphicID, err := s.archive.Graphics.Upsert(txCtx, s.source.ID(), article)
		if err != nil {
			return fmt.Errorf("upsert graphic: %w", err)
		}

		if len(article.Credits) > 0 {
			creditIDs, err := s.archive.Credits.UpsertBatch(txCtx, article.Credits)
			if err != nil {
				return fmt.Errorf("upsert credits: %w", err)
			}

			if err := s.archive.Credits.LinkToGraphic(txCtx, graphicID, creditIDs); err != nil {
				return fmt.Errorf("link credits: %w", err)
			}
		}

		return nil
	})
}

func (s *SyncService) updateSyncState(ctx context.Context, count int, stats *domain.SyncStats) error {
	state, err := s.archive.SyncState.Get(ctx, s.source.ID())
	if err != nil {
		return err
	}

	state.SourceID = s.source.ID()
	state.LastSyncedAt = time.Now()
	state.LastCount = count
	state.TotalSynced += int64(stats.New + stats.Updated)

	return s.archive.SyncState.Update(ctx, state)
}
