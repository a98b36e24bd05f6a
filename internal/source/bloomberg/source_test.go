package bloomberg

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/fetch"
	"graphics_feed/internal/retry"
	"graphics_feed/internal/source"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func lineup(endpoint string, ids ...string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf(`{"id":%q,"headline":"H %s","url":"/graphics/2024-%s/","publishedAt":"2024-03-01T00:00:00Z",
			"credits":[{"name":"Denise Lu"}],"image":{"baseUrl":"https://assets.bwbx.io/%s.png"}}`, id, id, id, id))
	}
	return fmt.Sprintf(`{%q:{"items":[%s]}}`, endpoint, strings.Join(parts, ","))
}

func newSource(url string) *Source {
	client := fetch.New(fetch.Config{Timeout: time.Second, Retry: retry.Fixed(1, 0)}, testLogger)
	return New(Config{
		Config:            source.Config{BaseURL: url, PageSize: 2},
		PageID:            "phx-graphics-v2",
		PaginatedEndpoint: DefaultPaginatedEndpoint,
	}, client, testLogger)
}

func TestSource_FetchArticles_PaginatesArchiveOnly(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "phx-graphics-v2", q.Get("page"))
		id, offset := q.Get("id"), q.Get("offset")

		mu.Lock()
		calls = append(calls, id+"@"+offset)
		mu.Unlock()

		switch {
		case id == "top_story":
			_, _ = w.Write([]byte(lineup(id, "t1", "t2")))
		case id == "top_stories_2":
			_, _ = w.Write([]byte(lineup(id, "s1")))
		case id == "archive_story_list" && offset == "0":
			_, _ = w.Write([]byte(lineup(id, "a1", "a2")))
		case id == "archive_story_list" && offset == "2":
			_, _ = w.Write([]byte(lineup(id, "a3")))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	articles, err := newSource(srv.URL).FetchArticles(context.Background())

	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, []string{"top_story@0", "top_stories_2@0", "archive_story_list@0", "archive_story_list@2"}, calls)
	mu.Unlock()
	require.Len(t, articles, 6)

	a := articles[0]
	assert.Equal(t, "t1", a.ID)
	assert.Equal(t, "https://www.bloomberg.com/graphics/2024-t1/", a.URL)
	assert.Equal(t, "https://www.bloomberg.com/graphics/", a.Label.URL)
	assert.Equal(t, "https://assets.bwbx.io/t1.png", a.Img)
	assert.Equal(t, []domain.Credit{{Name: "Denise Lu", Slug: "denise-lu"}}, a.Credits)
}

func TestSource_FetchArticles_EndpointFailureKeepsOthers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "top_stories_2" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(lineup(id, id+"-1")))
	}))
	defer srv.Close()

	articles, err := newSource(srv.URL).FetchArticles(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "top_stories_2")
	assert.Len(t, articles, 2)
}

func TestNormalize_LabelNeedsTwoSegments(t *testing.T) {
	a := Normalize(Item{ID: "x", URL: "/graphics"})
	assert.Nil(t, a.Label)
	assert.Equal(t, "https://www.bloomberg.com/graphics", a.URL)

	a = Normalize(Item{ID: "y", URL: "/features/2024-chips/"})
	require.NotNil(t, a.Label)
	assert.Equal(t, "https://www.bloomberg.com/features/", a.Label.URL)
}
