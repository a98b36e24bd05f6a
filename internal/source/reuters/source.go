package reuters

import (
	"context"
	"encoding/json"
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
	SourceID   = "reuters"
	SourceName = "Reuters"

	Origin  = "https://www.reuters.com"
	website = "reuters"
)

// Config holds Reuters source configuration.
type Config struct {
	source.Config
	CollectionID string
}

// Source pages through a Reuters collection by offset.
type Source struct {
	fetcher source.Fetcher
	cfg     Config
	logger  *slog.Logger
}

// New creates a Reuters source. fetcher is either the plain HTTP client or
// the headless browser, depending on configuration.
func New(cfg Config, fetcher source.Fetcher, logger *slog.Logger) *Source {
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

// FetchArticles fetches pages of PageSize until a short page comes back.
func (s *Source) FetchArticles(ctx context.Context) ([]domain.Article, error) {
	items, err := pagination.Collect(ctx, s.fetchPage, s.cfg.Paging, s.logger)

	articles := make([]domain.Article, 0, len(items))
	for _, it := range items {
		articles = append(articles, Normalize(it))
	}

	if err != nil {
		return articles, fmt.Errorf("fetch reuters graphics: %w", err)
	}
	return articles, nil
}

func (s *Source) pageURL(offset int) (string, error) {
	q, err := json.Marshal(query{
		CollectionID: s.cfg.CollectionID,
		Offset:       offset,
		Size:         s.cfg.PageSize,
		Website:      website,
	})
	if err != nil {
		return "", fmt.Errorf("encode query: %w", err)
	}

	v := url.Values{}
	v.Set("query", string(q))
	v.Set("d", "258")
	v.Set("mxId", "00000000")
	v.Set("_website", website)

	return s.cfg.BaseURL + "?" + v.Encode(), nil
}

func (s *Source) fetchPage(ctx context.Context, cursor string) (pagination.Page[Item], error) {
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return pagination.Page[Item]{}, fmt.Errorf("bad offset cursor %q: %w", cursor, err)
		}
		offset = n
	}

	u, err := s.pageURL(offset)
	if err != nil {
		return pagination.Page[Item]{}, err
	}

	body, err := s.fetcher.Get(ctx, SourceID, u, s.cfg.Header.Clone())
	if err != nil {
		return pagination.Page[Item]{}, err
	}

	var resp APIResponse
	if err := source.DecodeJSON(SourceID, u, body, &resp); err != nil {
		return pagination.Page[Item]{}, err
	}

	return pagination.Page[Item]{
		Records: resp.Result.Articles,
		Next:    strconv.Itoa(offset + s.cfg.PageSize),
		Limit:   s.cfg.PageSize,
	}, nil
}

// Normalize maps one collection item to an article.
func Normalize(it Item) domain.Article {
	a := domain.Article{
		ID:          normalize.OrDefault(it.ID, domain.NoID),
		Headline:    normalize.OrDefault(it.Title, domain.Untitled),
		URL:         domain.NoURL,
		Date:        normalize.OrDefault(it.PublishedTime, domain.UnknownDate),
		Description: normalize.OrDefault(it.Description, domain.NoDescription),
		Credits:     make([]domain.Credit, 0, len(it.Authors)),
		Img:         domain.NoImage,
	}

	if it.CanonicalURL != "" {
		a.URL = Origin + it.CanonicalURL
		a.Label = normalize.Label(a.URL, Origin, 1)
	}

	for _, au := range it.Authors {
		a.Credits = append(a.Credits, normalize.Credit(au.Name, ""))
	}

	if it.Thumbnail != nil && it.Thumbnail.URL != "" {
		a.Img = it.Thumbnail.URL
	}

	return a
}
