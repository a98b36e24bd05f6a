package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"graphics_feed/internal/domain"
)

// Runner syncs several outlets one after another. Outlets share no state,
// so a failing outlet never stops the ones after it.
type Runner struct {
	syncers []*SyncService
	logger  *slog.Logger
}

func NewRunner(syncers []*SyncService, logger *slog.Logger) *Runner {
	return &Runner{
		syncers: syncers,
		logger:  logger.With("component", "runner"),
	}
}

// SyncAll runs every outlet and joins the errors of those that failed.
func (r *Runner) SyncAll(ctx context.Context) ([]*domain.SyncStats, error) {
	var (
		all  []*domain.SyncStats
		errs []error
	)

	for _, s := range r.syncers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		stats, err := s.Sync(ctx)
		if stats != nil {
			all = append(all, stats)
		}
		if err != nil {
			r.logger.Error("outlet sync failed", "outlet", s.SourceID(), "error", err)
			errs = append(errs, fmt.Errorf("outlet %s: %w", s.SourceID(), err))
		}
	}

	r.logger.Info("run finished", "outlets", len(r.syncers), "failed", len(errs))

	return all, errors.Join(errs...)
}

func (r *Runner) Run(ctx context.Context) error {
	_, err := r.SyncAll(ctx)
	return err
}
