package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/imagery"
)

// BackfillService patches missing images in one outlet's store.
type BackfillService struct {
	store  ArticleStore
	worker ImageBackfiller
	report TextWriter
	logger *slog.Logger
}

// NewBackfillService creates the service. report receives the unresolved
// article URLs and may be nil.
func NewBackfillService(store ArticleStore, worker ImageBackfiller, report TextWriter, logger *slog.Logger) *BackfillService {
	return &BackfillService{
		store:  store,
		worker: worker,
		report: report,
		logger: logger.With("component", "backfill"),
	}
}

// Run loads the store, patches what it can and writes the store back
// regardless of the count guard, since patching never adds articles.
// Unresolved URLs go to the report; they are not an error.
func (s *BackfillService) Run(ctx context.Context) (*imagery.Report, error) {
	articles, err := s.store.Load(ctx)
	if err != nil {
		var pe *domain.PersistenceError
		if !errors.As(err, &pe) {
			return nil, fmt.Errorf("load store: %w", err)
		}
		s.logger.Warn("stored state unreadable, nothing to backfill", "path", pe.Path, "error", pe.Err)
		return &imagery.Report{}, nil
	}

	if len(articles) == 0 {
		s.logger.Info("store is empty, nothing to backfill")
		return &imagery.Report{}, nil
	}

	report, runErr := s.worker.Backfill(ctx, articles)
	if report == nil {
		return nil, fmt.Errorf("backfill images: %w", runErr)
	}

	// Patches made before a cancellation are still worth keeping.
	if report.Patched > 0 {
		if err := s.store.Replace(context.WithoutCancel(ctx), report.Articles); err != nil {
			return report, fmt.Errorf("write patched store: %w", err)
		}
	}

	if len(report.Unresolved) > 0 && s.report != nil {
		if err := s.report.WriteLines(context.WithoutCancel(ctx), report.Unresolved); err != nil {
			return report, fmt.Errorf("write unresolved report: %w", err)
		}
	}

	if runErr != nil {
		return report, fmt.Errorf("backfill images: %w", runErr)
	}
	return report, nil
}
