package pudding

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/normalize"
	"graphics_feed/internal/source"
)

const (
	SourceID   = "pudding"
	SourceName = "The Pudding"

	projectURL    = "https://pudding.cool/projects/%s/"
	screenshotURL = "https://pudding.cool/common/assets/thumbnails/screenshots/%s.jpg"
)

var reSlugDate = regexp.MustCompile(`^(\d{4})_(\d{2})`)

// Row is one line of the search index, keyed by the header columns.
type Row struct {
	Slug    string
	Hed     string
	Dek     string
	Keyword string
	Author  string
}

// Source reads The Pudding's static search index CSV.
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
	header := s.cfg.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if header.Get("Accept") == "" {
		header.Set("Accept", "text/csv")
	}

	body, err := s.fetcher.Get(ctx, SourceID, s.cfg.BaseURL, header)
	if err != nil {
		return nil, fmt.Errorf("fetch pudding index: %w", err)
	}

	rows, err := ParseRows(body)
	if err != nil {
		return nil, fmt.Errorf("fetch pudding index: %w", &domain.ParseError{Outlet: SourceID, URL: s.cfg.BaseURL, Err: err})
	}

	articles := make([]domain.Article, 0, len(rows))
	for _, r := range rows {
		articles = append(articles, Normalize(r))
	}

	s.logger.Debug("fetched index", "rows", len(rows))

	return articles, nil
}

// ParseRows reads the CSV body using its first line as column names. Blank
// lines are skipped and cells are trimmed.
func ParseRows(body []byte) ([]Row, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	head, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(head))
	for i, h := range head {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["slug"]; !ok {
		return nil, fmt.Errorf("missing slug column")
	}

	cell := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []Row
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("read row: %w", err)
		}

		row := Row{
			Slug:    cell(rec, "slug"),
			Hed:     cell(rec, "hed"),
			Dek:     cell(rec, "dek"),
			Keyword: cell(rec, "keyword"),
			Author:  cell(rec, "author"),
		}
		if row == (Row{}) {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Normalize maps one index row to an article. The date is the first day of
// the month encoded in a YYYY_MM slug prefix.
func Normalize(r Row) domain.Article {
	a := domain.Article{
		ID:          normalize.OrDefault(r.Slug, domain.NoID),
		Headline:    normalize.OrDefault(r.Hed, domain.Untitled),
		URL:         domain.NoURL,
		Date:        DateFromSlug(r.Slug),
		Description: normalize.OrDefault(r.Dek, domain.NoDescription),
		Credits:     normalize.Credits(normalize.SplitList(r.Author)...),
		Keywords:    normalize.SplitList(r.Keyword),
		Img:         domain.NoImage,
	}

	if r.Slug != "" {
		a.URL = fmt.Sprintf(projectURL, r.Slug)
		a.Img = fmt.Sprintf(screenshotURL, r.Slug)
	}

	return a
}

// DateFromSlug returns YYYY-MM-01 for slugs like 2024_03_title.
func DateFromSlug(slug string) string {
	m := reSlugDate.FindStringSubmatch(slug)
	if m == nil {
		return domain.UnknownDate
	}
	return m[1] + "-" + m[2] + "-01"
}
