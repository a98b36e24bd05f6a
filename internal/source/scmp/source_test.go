package scmp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
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

func newSource(url string) *Source {
	client := fetch.New(fetch.Config{Timeout: time.Second, Retry: retry.Fixed(1, 0)}, testLogger)
	return New(source.Config{BaseURL: url}, client, testLogger)
}

func TestSource_FetchArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"entries":[
			{"url":"https://multimedia.scmp.com/infographics/news/china/article/3250000/typhoon/","title":"Typhoon",
			 "date":"2024-03-02","desc":"Tracking","creator1":"Marcelo Duhalde","creator2":"Dennis Wong","creator3":"",
			 "imageurl":"","coverimage":"https://img/cover.jpg"},
			{"url":"https://multimedia.scmp.com/x"}
		]}`))
	}))
	defer srv.Close()

	articles, err := newSource(srv.URL).FetchArticles(context.Background())

	require.NoError(t, err)
	require.Len(t, articles, 2)

	a := articles[0]
	assert.Equal(t, "typhoon", a.ID)
	assert.Equal(t, "https://www.scmp.com/infographics/", a.Label.URL)
	assert.Equal(t, []domain.Credit{
		{Name: "Marcelo Duhalde", Slug: "marcelo-duhalde"},
		{Name: "Dennis Wong", Slug: "dennis-wong"},
	}, a.Credits)
	assert.Equal(t, "https://img/cover.jpg", a.Img)

	b := articles[1]
	assert.Equal(t, "x", b.ID)
	assert.Nil(t, b.Label)
	assert.Equal(t, []domain.Credit{{Name: domain.UnknownAuthor, Slug: "unknown"}}, b.Credits)
	assert.Equal(t, domain.NoImage, b.Img)
	assert.Equal(t, domain.UnknownDate, b.Date)
}

func TestSource_FetchArticles_MalformedDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	articles, err := newSource(srv.URL).FetchArticles(context.Background())

	var pe *domain.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Nil(t, articles)
}

func TestNormalize_MissingURL(t *testing.T) {
	a := Normalize(Entry{Title: "No link"})
	assert.Equal(t, domain.NoID, a.ID)
	assert.Equal(t, domain.NoURL, a.URL)
}
