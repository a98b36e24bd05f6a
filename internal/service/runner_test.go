package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/feed"
	"graphics_feed/internal/service/mocks"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func outletService(ctrl *gomock.Controller, id string, articles []domain.Article, fetchErr error) *SyncService {
	src := mocks.NewMockSource(ctrl)
	src.EXPECT().ID().Return(id).AnyTimes()
	src.EXPECT().Name().Return(id).AnyTimes()
	src.EXPECT().FetchArticles(gomock.Any()).Return(articles, fetchErr)

	store := mocks.NewMockArticleStore(ctrl)
	if len(articles) > 0 {
		store.EXPECT().Load(gomock.Any()).Return(nil, nil)
		store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(true, nil)
	}

	return NewSyncService(src, store, nil, nil, feed.PreferIncoming, testLogger)
}

func TestRunner_ContinuesPastFailingOutlet(t *testing.T) {
	ctrl := gomock.NewController(t)

	runner := NewRunner([]*SyncService{
		outletService(ctrl, "nyt", nil, errors.New("forbidden")),
		outletService(ctrl, "reuters", []domain.Article{{ID: "r1"}}, nil),
		outletService(ctrl, "scmp", nil, errors.New("timeout")),
	}, testLogger)

	stats, err := runner.SyncAll(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "outlet nyt")
	assert.Contains(t, err.Error(), "outlet scmp")
	assert.NotContains(t, err.Error(), "outlet reuters")

	require.Len(t, stats, 3)
	assert.Equal(t, "reuters", stats[1].SourceID)
	assert.Equal(t, 1, stats[1].New)
}

func TestRunner_AllSucceed(t *testing.T) {
	ctrl := gomock.NewController(t)

	runner := NewRunner([]*SyncService{
		outletService(ctrl, "bloomberg", []domain.Article{{ID: "b1"}}, nil),
	}, testLogger)

	assert.NoError(t, runner.Run(context.Background()))
}
