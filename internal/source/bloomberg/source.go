package bloomberg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/normalize"
	"graphics_feed/internal/pagination"
	"graphics_feed/internal/source"
)

const (
	SourceID   = "bloomberg"
	SourceName = "Bloomberg"

	Origin = "https://www.bloomberg.com"
)

var (
	DefaultEndpoints         = []string{"top_story", "top_stories_2", "archive_story_list"}
	DefaultPaginatedEndpoint = "archive_story_list"
)

// Config holds Bloomberg source configuration.
type Config struct {
	source.Config
	PageID            string
	Endpoints         []string
	PaginatedEndpoint string
}

// Source reads the lineup endpoints of the Bloomberg graphics page. Only the
// paginated endpoint is followed past its first page.
type Source struct {
	fetcher source.Fetcher
	cfg     Config
	logger  *slog.Logger
}

func New(cfg Config, fetcher source.Fetcher, logger *slog.Logger) *Source {
	if len(cfg.Endpoints) == 0 {
		cfg.Endpoints = DefaultEndpoints
	}
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

// FetchArticles reads every endpoint in order. A failing endpoint does not
// stop the others; its error is joined into the returned one.
func (s *Source) FetchArticles(ctx context.Context) ([]domain.Article, error) {
	var (
		articles []domain.Article
		errs     []error
	)

	for _, endpoint := range s.cfg.Endpoints {
		items, err := pagination.Collect(ctx, s.pageFunc(endpoint), s.cfg.Paging, s.logger.With("endpoint", endpoint))
		for _, it := range items {
			articles = append(articles, Normalize(it))
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("endpoint %s: %w", endpoint, err))
		}
		if ctx.Err() != nil {
			break
		}
	}

	if err := errors.Join(errs...); err != nil {
		return articles, fmt.Errorf("fetch bloomberg graphics: %w", err)
	}
	return articles, nil
}

func (s *Source) pageURL(endpoint string, offset int) string {
	v := url.Values{}
	v.Set("id", endpoint)
	v.Set("page", s.cfg.PageID)
	v.Set("offset", strconv.Itoa(offset))
	v.Set("variation", "archive")
	v.Set("type", "lineup_content")
	return s.cfg.BaseURL + "?" + v.Encode()
}

func (s *Source) pageFunc(endpoint string) pagination.PageFunc[Item] {
	paginated := endpoint == s.cfg.PaginatedEndpoint

	return func(ctx context.Context, cursor string) (pagination.Page[Item], error) {
		offset := 0
		if cursor != "" {
			n, err := strconv.Atoi(cursor)
			if err != nil {
				return pagination.Page[Item]{}, fmt.Errorf("bad offset cursor %q: %w", cursor, err)
			}
			offset = n
		}

		u := s.pageURL(endpoint, offset)
		body, err := s.fetcher.Get(ctx, SourceID, u, s.cfg.Header.Clone())
		if err != nil {
			return pagination.Page[Item]{}, err
		}

		var resp APIResponse
		if err := source.DecodeJSON(SourceID, u, body, &resp); err != nil {
			return pagination.Page[Item]{}, err
		}

		page := pagination.Page[Item]{Records: resp[endpoint].Items}
		if paginated {
			page.Next = strconv.Itoa(offset + s.cfg.PageSize)
			page.Limit = s.cfg.PageSize
		}
		return page, nil
	}
}

// Normalize maps one lineup item to an article. Labels need a path of at
// least two segments.
func Normalize(it Item) domain.Article {
	a := domain.Article{
		ID:          normalize.OrDefault(it.ID, domain.NoID),
		Headline:    normalize.OrDefault(it.Headline, domain.Untitled),
		URL:         domain.NoURL,
		Date:        normalize.OrDefault(it.PublishedAt, domain.UnknownDate),
		Description: normalize.OrDefault(it.Summary, domain.NoDescription),
		Credits:     make([]domain.Credit, 0, len(it.Credits)),
		Img:         domain.NoImage,
	}

	if it.URL != "" {
		a.URL = normalize.AbsoluteURL(Origin, it.URL)
		a.Label = normalize.Label(a.URL, Origin, 2)
	}

	for _, c := range it.Credits {
		a.Credits = append(a.Credits, normalize.Credit(c.Name, ""))
	}

	if it.Image != nil && it.Image.BaseURL != "" {
		a.Img = it.Image.BaseURL
	}

	return a
}
