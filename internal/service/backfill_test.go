package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/imagery"
	"graphics_feed/internal/service/mocks"
)

func TestBackfillService_WritesPatchedStoreAndReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	store := mocks.NewMockArticleStore(ctrl)
	worker := mocks.NewMockImageBackfiller(ctrl)
	report := mocks.NewMockTextWriter(ctrl)

	stored := []domain.Article{
		{ID: "a1", URL: "https://www.nytimes.com/a1", Img: domain.NoImage},
		{ID: "a2", URL: "https://www.nytimes.com/a2", Img: domain.NoImage},
	}
	patched := []domain.Article{
		{ID: "a1", URL: "https://www.nytimes.com/a1", Img: "https://img/a1.jpg"},
		{ID: "a2", URL: "https://www.nytimes.com/a2", Img: domain.NoImage},
	}

	store.EXPECT().Load(ctx).Return(stored, nil)
	worker.EXPECT().Backfill(ctx, stored).Return(&imagery.Report{
		Articles:   patched,
		Missing:    2,
		Patched:    1,
		Unresolved: []string{"https://www.nytimes.com/a2"},
	}, nil)
	store.EXPECT().Replace(gomock.Any(), patched).Return(nil)
	report.EXPECT().WriteLines(gomock.Any(), []string{"https://www.nytimes.com/a2"}).Return(nil)

	res, err := NewBackfillService(store, worker, report, testLogger).Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Patched)
}

func TestBackfillService_NothingPatchedSkipsWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	store := mocks.NewMockArticleStore(ctrl)
	worker := mocks.NewMockImageBackfiller(ctrl)

	stored := []domain.Article{{ID: "a1", Img: "https://img/a1.jpg"}}
	store.EXPECT().Load(ctx).Return(stored, nil)
	worker.EXPECT().Backfill(ctx, stored).Return(&imagery.Report{Articles: stored}, nil)

	res, err := NewBackfillService(store, worker, nil, testLogger).Run(ctx)

	require.NoError(t, err)
	assert.Zero(t, res.Patched)
}

func TestBackfillService_CorruptStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	store := mocks.NewMockArticleStore(ctrl)
	worker := mocks.NewMockImageBackfiller(ctrl)

	store.EXPECT().Load(ctx).Return([]domain.Article{}, &domain.PersistenceError{Path: "nyt.json", Err: errors.New("bad json")})

	res, err := NewBackfillService(store, worker, nil, testLogger).Run(ctx)

	require.NoError(t, err)
	assert.Zero(t, res.Missing)
}

func TestBackfillService_KeepsPatchesOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := mocks.NewMockArticleStore(ctrl)
	worker := mocks.NewMockImageBackfiller(ctrl)

	stored := []domain.Article{{ID: "a1", Img: domain.NoImage}, {ID: "a2", Img: domain.NoImage}}
	patched := []domain.Article{{ID: "a1", Img: "https://img/a1.jpg"}, {ID: "a2", Img: domain.NoImage}}

	store.EXPECT().Load(ctx).Return(stored, nil)
	worker.EXPECT().Backfill(ctx, stored).DoAndReturn(func(context.Context, []domain.Article) (*imagery.Report, error) {
		cancel()
		return &imagery.Report{Articles: patched, Missing: 2, Patched: 1}, context.Canceled
	})
	store.EXPECT().Replace(gomock.Any(), patched).Return(nil)

	res, err := NewBackfillService(store, worker, nil, testLogger).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, res.Patched)
}
