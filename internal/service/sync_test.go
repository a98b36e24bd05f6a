package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/feed"
	"graphics_feed/internal/service/mocks"
)

type SyncServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	source    *mocks.MockSource
	store     *mocks.MockArticleStore
	graphics  *mocks.MockGraphicStore
	credits   *mocks.MockCreditStore
	syncState *mocks.MockSyncStateStore
	txManager *mocks.MockTransactionManager
	publisher *mocks.MockPublisher

	archive *Archive
	service *SyncService
	logger  *slog.Logger
}

func (s *SyncServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.source = mocks.NewMockSource(s.ctrl)
	s.store = mocks.NewMockArticleStore(s.ctrl)
	s.graphics = mocks.NewMockGraphicStore(s.ctrl)
	s.credits = mocks.NewMockCreditStore(s.ctrl)
	s.syncState = mocks.NewMockSyncStateStore(s.ctrl)
	s.txManager = mocks.NewMockTransactionManager(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)

	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.source.EXPECT().ID().Return("test-source").AnyTimes()
	s.source.EXPECT().Name().Return("Test Source").AnyTimes()

	s.archive = &Archive{
		Graphics:  s.graphics,
		Credits:   s.credits,
		SyncState: s.syncState,
		TxManager: s.txManager,
	}

	s.service = NewSyncService(s.source, s.store, s.archive, s.publisher, feed.PreferIncoming, s.logger)
}

func (s *SyncServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SyncServiceTestSuite))
}

func (s *SyncServiceTestSuite) expectTransactions(times int) {
	s.txManager.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).Times(times).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	)
}

func (s *SyncServiceTestSuite) expectSyncState(count int) {
	s.syncState.EXPECT().Get(gomock.Any(), "test-source").Return(&domain.SyncState{SourceID: "test-source", TotalSynced: 4}, nil)
	s.syncState.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, state *domain.SyncState) error {
			s.Equal(count, state.LastCount)
			s.False(state.LastSyncedAt.IsZero())
			return nil
		},
	)
}

func (s *SyncServiceTestSuite) TestSync_NewArticles() {
	ctx := context.Background()

	incoming := []domain.Article{
		{ID: "a1", Date: "2024-01-06", Credits: []domain.Credit{{Name: "Josh Holder", Slug: "josh-holder"}}},
	}

	s.source.EXPECT().FetchArticles(ctx).Return(incoming, nil)
	s.store.EXPECT().Load(ctx).Return(nil, nil)
	s.store.EXPECT().Save(ctx, incoming).Return(true, nil)

	s.expectTransactions(1)
	s.graphics.EXPECT().Upsert(gomock.Any(), "test-source", &incoming[0]).Return(int64(100), nil)
	s.credits.EXPECT().UpsertBatch(gomock.Any(), incoming[0].Credits).Return([]int64{7}, nil)
	s.credits.EXPECT().LinkToGraphic(gomock.Any(), int64(100), []int64{7}).Return(nil)
	s.expectSyncState(1)

	s.publisher.EXPECT().Publish(ctx, "test-source", &incoming[0]).Return(nil)

	stats, err := s.service.Sync(ctx)

	s.NoError(err)
	s.Equal(1, stats.Fetched)
	s.Equal(1, stats.New)
	s.Equal(0, stats.Updated)
	s.Equal(1, stats.Archived)
	s.Equal(1, stats.Published)
	s.True(stats.Written)
}

func (s *SyncServiceTestSuite) TestSync_UpdatedArticlesAreArchivedNotPublished() {
	ctx := context.Background()

	existing := []domain.Article{{ID: "a1", Headline: "old", Date: "2024-01-05"}}
	incoming := []domain.Article{{ID: "a1", Headline: "new", Date: "2024-01-05"}}

	s.source.EXPECT().FetchArticles(ctx).Return(incoming, nil)
	s.store.EXPECT().Load(ctx).Return(existing, nil)
	s.store.EXPECT().Save(ctx, incoming).Return(false, nil)

	s.expectTransactions(1)
	s.graphics.EXPECT().Upsert(gomock.Any(), "test-source", &incoming[0]).Return(int64(100), nil)
	s.expectSyncState(1)

	stats, err := s.service.Sync(ctx)

	s.NoError(err)
	s.Equal(0, stats.New)
	s.Equal(1, stats.Updated)
	s.Equal(0, stats.Published)
	s.False(stats.Written)
}

func (s *SyncServiceTestSuite) TestSync_DuplicateInPageKeepsLatest() {
	ctx := context.Background()
	service := NewSyncService(s.source, s.store, nil, nil, feed.PreferIncoming, s.logger)

	s.source.EXPECT().FetchArticles(ctx).Return([]domain.Article{
		{ID: "a1", Date: "2024-01-05"},
		{ID: "a1", Date: "2024-01-06"},
	}, nil)
	s.store.EXPECT().Load(ctx).Return(nil, nil)
	s.store.EXPECT().Save(ctx, []domain.Article{{ID: "a1", Date: "2024-01-06"}}).Return(true, nil)

	stats, err := service.Sync(ctx)

	s.NoError(err)
	s.Equal(2, stats.Fetched)
	s.Equal(1, stats.New)
}

func (s *SyncServiceTestSuite) TestSync_ExistingPrecedence() {
	ctx := context.Background()
	service := NewSyncService(s.source, s.store, nil, nil, feed.PreferExisting, s.logger)

	existing := []domain.Article{{ID: "a1", Headline: "stored", Date: "2024-01-05"}}

	s.source.EXPECT().FetchArticles(ctx).Return([]domain.Article{
		{ID: "a1", Headline: "fetched", Date: "2024-01-05"},
		{ID: "a2", Headline: "fetched", Date: "2024-01-04"},
	}, nil)
	s.store.EXPECT().Load(ctx).Return(existing, nil)
	s.store.EXPECT().Save(ctx, []domain.Article{
		{ID: "a1", Headline: "stored", Date: "2024-01-05"},
		{ID: "a2", Headline: "fetched", Date: "2024-01-04"},
	}).Return(true, nil)

	stats, err := service.Sync(ctx)

	s.NoError(err)
	s.Equal(1, stats.New)
	s.Equal(1, stats.Updated)
}

func (s *SyncServiceTestSuite) TestSync_DropsPlaceholderIDs() {
	ctx := context.Background()
	service := NewSyncService(s.source, s.store, nil, nil, feed.PreferIncoming, s.logger)

	s.source.EXPECT().FetchArticles(ctx).Return([]domain.Article{
		{ID: domain.NoID, URL: "https://example.com/x"},
		{ID: "a2", Date: "2024-01-04"},
	}, nil)
	s.store.EXPECT().Load(ctx).Return(nil, nil)
	s.store.EXPECT().Save(ctx, []domain.Article{{ID: "a2", Date: "2024-01-04"}}).Return(true, nil)

	stats, err := service.Sync(ctx)

	s.NoError(err)
	s.Equal(2, stats.Fetched)
	s.Equal(1, stats.Skipped)
	s.Equal(1, stats.New)
}

func (s *SyncServiceTestSuite) TestSync_PartialFetchIsMerged() {
	ctx := context.Background()
	service := NewSyncService(s.source, s.store, nil, nil, feed.PreferIncoming, s.logger)

	incoming := []domain.Article{{ID: "a1", Date: "2024-01-06"}}
	s.source.EXPECT().FetchArticles(ctx).Return(incoming, &domain.TransportError{Outlet: "test-source", StatusCode: 503})
	s.store.EXPECT().Load(ctx).Return(nil, nil)
	s.store.EXPECT().Save(ctx, incoming).Return(true, nil)

	stats, err := service.Sync(ctx)

	s.NoError(err)
	s.True(stats.Partial)
	s.Equal(1, stats.New)
}

func (s *SyncServiceTestSuite) TestSync_SourceError() {
	ctx := context.Background()

	s.source.EXPECT().FetchArticles(ctx).Return(nil, errors.New("api error"))

	stats, err := s.service.Sync(ctx)

	s.Error(err)
	s.NotNil(stats)
	s.Contains(err.Error(), "fetch articles")
}

func (s *SyncServiceTestSuite) TestSync_CorruptStoreTreatedAsEmpty() {
	ctx := context.Background()
	service := NewSyncService(s.source, s.store, nil, nil, feed.PreferIncoming, s.logger)

	incoming := []domain.Article{{ID: "a1", Date: "2024-01-06"}}
	s.source.EXPECT().FetchArticles(ctx).Return(incoming, nil)
	s.store.EXPECT().Load(ctx).Return([]domain.Article{}, &domain.PersistenceError{Path: "x.json", Err: errors.New("bad json")})
	s.store.EXPECT().Save(ctx, incoming).Return(true, nil)

	stats, err := service.Sync(ctx)

	s.NoError(err)
	s.Equal(1, stats.New)
}

func (s *SyncServiceTestSuite) TestSync_SaveError() {
	ctx := context.Background()
	service := NewSyncService(s.source, s.store, nil, nil, feed.PreferIncoming, s.logger)

	s.source.EXPECT().FetchArticles(ctx).Return([]domain.Article{{ID: "a1"}}, nil)
	s.store.EXPECT().Load(ctx).Return(nil, nil)
	s.store.EXPECT().Save(ctx, gomock.Any()).Return(false, errors.New("disk full"))

	_, err := service.Sync(ctx)

	s.Error(err)
	s.Contains(err.Error(), "save articles")
}

func (s *SyncServiceTestSuite) TestSync_ArchiveAndPublishFailuresAreCounted() {
	ctx := context.Background()

	incoming := []domain.Article{{ID: "a1", Date: "2024-01-06"}}

	s.source.EXPECT().FetchArticles(ctx).Return(incoming, nil)
	s.store.EXPECT().Load(ctx).Return(nil, nil)
	s.store.EXPECT().Save(ctx, incoming).Return(true, nil)

	s.expectTransactions(1)
	s.graphics.EXPECT().Upsert(gomock.Any(), "test-source", gomock.Any()).Return(int64(0), errors.New("db down"))
	s.syncState.EXPECT().Get(gomock.Any(), "test-source").Return(nil, errors.New("db down"))
	s.publisher.EXPECT().Publish(ctx, "test-source", gomock.Any()).Return(errors.New("broker down"))

	stats, err := s.service.Sync(ctx)

	s.NoError(err)
	s.Equal(0, stats.Archived)
	s.Equal(0, stats.Published)
	s.Equal(3, stats.Errors)
}

func (s *SyncServiceTestSuite) TestSync_PublisherNil() {
	ctx := context.Background()
	service := NewSyncService(s.source, s.store, s.archive, nil, feed.PreferIncoming, s.logger)

	incoming := []domain.Article{{ID: "a1", Date: "2024-01-06"}}

	s.source.EXPECT().FetchArticles(ctx).Return(incoming, nil)
	s.store.EXPECT().Load(ctx).Return(nil, nil)
	s.store.EXPECT().Save(ctx, incoming).Return(true, nil)

	s.expectTransactions(1)
	s.graphics.EXPECT().Upsert(gomock.Any(), "test-source", &incoming[0]).Return(int64(100), nil)
	s.expectSyncState(1)

	stats, err := service.Sync(ctx)

	s.NoError(err)
	s.Equal(1, stats.New)
	s.Equal(0, stats.Published)
}
