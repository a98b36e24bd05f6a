package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/imagery"
)

type Source interface {
	ID() string
	Name() string
	FetchArticles(ctx context.Context) ([]domain.Article, error)
}

// ArticleStore is the per-outlet JSON state.
type ArticleStore interface {
	Load(ctx context.Context) ([]domain.Article, error)
	Save(ctx context.Context, articles []domain.Article) (bool, error)
	Replace(ctx context.Context, articles []domain.Article) error
}

type GraphicStore interface {
	Upsert(ctx context.Context, outlet string, article *domain.Article) (int64, error)
}

type CreditStore interface {
	UpsertBatch(ctx context.Context, credits []domain.Credit) ([]int64, error)
	LinkToGraphic(ctx context.Context, graphicID int64, creditIDs []int64) error
}

type SyncStateStore interface {
	Get(ctx context.Context, sourceID string) (*domain.SyncState, error)
	Update(ctx context.Context, state *domain.SyncState) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, outlet string, article *domain.Article) error
	Close() error
}

type ImageBackfiller interface {
	Backfill(ctx context.Context, articles []domain.Article) (*imagery.Report, error)
}

type TextWriter interface {
	Write(ctx context.Context, text string) error
	WriteLines(ctx context.Context, lines []string) error
}
