package nyt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"graphics_feed/internal/batch"
	"graphics_feed/internal/domain"
	"graphics_feed/internal/imagery"
	"graphics_feed/internal/normalize"
	"graphics_feed/internal/pagination"
	"graphics_feed/internal/source"
)

const (
	SourceID   = "nyt"
	SourceName = "The New York Times"

	Origin = "https://www.nytimes.com"
)

// Config holds NYT source configuration.
type Config struct {
	source.Config
	CollectionID       string
	PersistedQueryHash string
	ExcludeURLs        []string
	ImageStrategy      imagery.Strategy
	Transform          imagery.Transform
	Concurrency        int
}

// Source reads the NYT graphics collection through the persisted
// CollectionsQuery, following endCursor.
type Source struct {
	fetcher source.Fetcher
	locator imagery.Locator
	cfg     Config
	logger  *slog.Logger
}

// New creates a NYT source. locator is only used when the image strategy
// fetches article pages and may be nil otherwise.
func New(cfg Config, fetcher source.Fetcher, locator imagery.Locator, logger *slog.Logger) *Source {
	return &Source{
		fetcher: fetcher,
		locator: locator,
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

// FetchArticles walks the collection and returns normalized articles. On a
// failed page the articles of the earlier pages are returned with the error.
func (s *Source) FetchArticles(ctx context.Context) ([]domain.Article, error) {
	nodes, err := pagination.Collect(ctx, s.fetchPage, s.cfg.Paging, s.logger)

	nodes = s.filter(nodes)
	articles := s.enrich(ctx, nodes)

	if err != nil {
		return articles, fmt.Errorf("fetch nyt graphics: %w", err)
	}
	return articles, nil
}

func (s *Source) pageURL(cursor string) (string, error) {
	variables := map[string]any{
		"id":                  s.cfg.CollectionID,
		"first":               s.cfg.PageSize,
		"streamQuery":         map[string]string{"sort": "newest"},
		"isFetchMore":         true,
		"isTranslatable":      true,
		"isEspanol":           false,
		"isHighEnd":           false,
		"highlightsListUri":   "nyt://per/personalized-list/__null__",
		"highlightsListFirst": 0,
		"hasHighlightsList":   false,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	extensions := map[string]any{
		"persistedQuery": map[string]any{
			"version":    1,
			"sha256Hash": s.cfg.PersistedQueryHash,
		},
	}

	vars, err := json.Marshal(variables)
	if err != nil {
		return "", fmt.Errorf("encode variables: %w", err)
	}
	ext, err := json.Marshal(extensions)
	if err != nil {
		return "", fmt.Errorf("encode extensions: %w", err)
	}

	q := url.Values{}
	q.Set("operationName", "CollectionsQuery")
	q.Set("variables", string(vars))
	q.Set("extensions", string(ext))

	return s.cfg.BaseURL + "?" + q.Encode(), nil
}

func (s *Source) fetchPage(ctx context.Context, cursor string) (pagination.Page[Node], error) {
	u, err := s.pageURL(cursor)
	if err != nil {
		return pagination.Page[Node]{}, err
	}

	body, err := s.fetcher.Get(ctx, SourceID, u, s.cfg.Header.Clone())
	if err != nil {
		return pagination.Page[Node]{}, err
	}

	var resp APIResponse
	if err := source.DecodeJSON(SourceID, u, body, &resp); err != nil {
		return pagination.Page[Node]{}, err
	}

	coll := resp.Data.LegacyCollection
	if coll == nil || coll.CollectionsPage == nil || coll.CollectionsPage.Stream == nil {
		return pagination.Page[Node]{}, nil
	}
	stream := coll.CollectionsPage.Stream

	page := pagination.Page[Node]{Records: make([]Node, 0, len(stream.Edges))}
	for _, e := range stream.Edges {
		page.Records = append(page.Records, e.Node)
	}
	if stream.PageInfo.EndCursor != nil {
		page.Next = *stream.PageInfo.EndCursor
	}

	return page, nil
}

func (s *Source) filter(nodes []Node) []Node {
	if len(s.cfg.ExcludeURLs) == 0 {
		return nodes
	}

	kept := nodes[:0:0]
	for _, n := range nodes {
		if excluded(n.URL, s.cfg.ExcludeURLs) {
			s.logger.Debug("skipping excluded article", "url", n.URL)
			continue
		}
		kept = append(kept, n)
	}
	return kept
}

func excluded(u string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(u, p) {
			return true
		}
	}
	return false
}

// enrich normalizes nodes and, when the strategy fetches, resolves page
// images in settled batches.
func (s *Source) enrich(ctx context.Context, nodes []Node) []domain.Article {
	articles := make([]domain.Article, 0, len(nodes))
	for _, n := range nodes {
		articles = append(articles, Normalize(n, s.cfg.Transform, s.cfg.ImageStrategy))
	}

	if s.cfg.ImageStrategy == imagery.StrategyTransform || s.locator == nil {
		return articles
	}

	var pending []int
	for i, a := range articles {
		if !a.HasImage() && a.URL != domain.NoURL {
			pending = append(pending, i)
		}
	}

	results := batch.Settle(ctx, pending, s.cfg.Concurrency, func(ctx context.Context, i int) (string, error) {
		return s.locator.Resolve(ctx, articles[i].URL)
	})
	for k, r := range results {
		a := &articles[pending[k]]
		if r.Err != nil {
			s.logger.Warn("image not resolved", "id", a.ID, "url", a.URL, "error", r.Err)
			continue
		}
		a.Img = r.Value
	}

	return articles
}

// Normalize maps one collection node to an article. With the transform
// strategies the image is derived from the first crop rendition.
func Normalize(n Node, transform imagery.Transform, strategy imagery.Strategy) domain.Article {
	a := domain.Article{
		ID:          normalize.OrDefault(n.ID, domain.NoID),
		URL:         normalize.OrDefault(n.URL, domain.NoURL),
		Date:        normalize.OrDefault(n.FirstPublished, domain.UnknownDate),
		Description: normalize.OrDefault(n.Summary, domain.NoDescription),
		Headline:    domain.Untitled,
		Label:       normalize.Label(n.URL, Origin, 1),
		Credits:     []domain.Credit{},
		Thumbnail:   domain.NoImage,
		Img:         domain.NoImage,
	}
	if n.Headline != nil {
		a.Headline = normalize.OrDefault(n.Headline.Default, domain.Untitled)
	}

	for _, b := range n.Bylines {
		for _, c := range b.Creators {
			slug := ""
			if _, after, ok := strings.Cut(c.URL, "/by/"); ok {
				slug = after
			}
			a.Credits = append(a.Credits, normalize.Credit(c.DisplayName, slug))
		}
	}

	if thumb := firstRendition(n.PromotionalMedia); thumb != "" {
		a.Thumbnail = thumb
	}

	if strategy != imagery.StrategyFetch {
		if img, ok := transform.Apply(a.Thumbnail); ok {
			a.Img = img
		}
	}

	return a
}

func firstRendition(pm *PromotionalMedia) string {
	if pm == nil {
		return ""
	}
	for _, c := range pm.Crops {
		for _, r := range c.Renditions {
			if r.URL != "" {
				return r.URL
			}
		}
	}
	return ""
}
