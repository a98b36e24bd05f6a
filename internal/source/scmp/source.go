package scmp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/normalize"
	"graphics_feed/internal/source"
)

const (
	SourceID   = "scmp"
	SourceName = "South China Morning Post"

	Origin = "https://www.scmp.com"
)

// Source reads the SCMP graphics sheet, a single JSON document.
type Source struct {
	fetcher source.Fetcher
	cfg     source.Config
	logger  *slog.Logger
}

func New(cfg source.Config, fetcher source.Fetcher, logger *slog.Logger) *Source {
	return &Source{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger.With("source", SourceID),
	}
}

func (s *Source) ID() string {
	return SourceID
}

func (s *Source) Name() string {
	return SourceName
}

func (s *Source) FetchArticles(ctx context.Context) ([]domain.Article, error) {
	body, err := s.fetcher.Get(ctx, SourceID, s.cfg.BaseURL, s.cfg.Header.Clone())
	if err != nil {
		return nil, fmt.Errorf("fetch scmp graphics: %w", err)
	}

	var doc Document
	if err := source.DecodeJSON(SourceID, s.cfg.BaseURL, body, &doc); err != nil {
		return nil, fmt.Errorf("fetch scmp graphics: %w", err)
	}

	articles := make([]domain.Article, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		articles = append(articles, Normalize(e))
	}

	s.logger.Debug("fetched sheet", "entries", len(doc.Entries))

	return articles, nil
}

// Normalize maps one sheet entry to an article. The id is the last path
// segment of the entry URL.
func Normalize(e Entry) domain.Article {
	a := domain.Article{
		ID:          domain.NoID,
		Headline:    normalize.OrDefault(e.Title, domain.Untitled),
		URL:         normalize.OrDefault(e.URL, domain.NoURL),
		Date:        normalize.OrDefault(e.Date, domain.UnknownDate),
		Description: normalize.OrDefault(e.Desc, domain.NoDescription),
		Credits:     []domain.Credit{normalize.Credit(e.Creator1, "")},
		Img:         domain.NoImage,
	}

	if e.URL != "" {
		a.ID = normalize.OrDefault(lastSegment(e.URL), domain.NoID)
		a.Label = normalize.Label(e.URL, Origin, 2)
	}

	for _, c := range []string{e.Creator2, e.Creator3} {
		if strings.TrimSpace(c) != "" {
			a.Credits = append(a.Credits, normalize.Credit(c, ""))
		}
	}

	for _, img := range []string{e.ImageURL, e.CoverImage} {
		if img != "" {
			a.Img = img
			break
		}
	}

	return a
}

func lastSegment(u string) string {
	u, _, _ = strings.Cut(u, "?")
	u = strings.TrimRight(u, "/")
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}
