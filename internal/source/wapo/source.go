package wapo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/normalize"
	"graphics_feed/internal/pace"
	"graphics_feed/internal/source"
)

const (
	SourceID   = "wapo"
	SourceName = "The Washington Post"

	Origin = "https://www.washingtonpost.com"

	DefaultFrom = "2014"
)

// Config holds Washington Post source configuration.
type Config struct {
	source.Config
	Authors []string
	From    string
}

// Source reads the author feed of every configured graphics author.
type Source struct {
	fetcher source.Fetcher
	cfg     Config
	now     func() time.Time
	logger  *slog.Logger
}

func New(cfg Config, fetcher source.Fetcher, logger *slog.Logger) *Source {
	if cfg.From == "" {
		cfg.From = DefaultFrom
	}
	return &Source{
		fetcher: fetcher,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger.With("source", SourceID),
	}
}

func (s *Source) ID() string {
	return SourceID
}

func (s *Source) Name() string {
	return SourceName
}

// FetchArticles requests one feed page per author. A failing author is
// logged and skipped; an error is returned only when every author failed.
func (s *Source) FetchArticles(ctx context.Context) ([]domain.Article, error) {
	pacer := pace.New(s.cfg.Paging.PageDelay)
	to := s.now().UTC().Format("2006-01-02T15:04:05.000Z")

	var (
		articles []domain.Article
		failed   int
		lastErr  error
	)

	for _, slug := range s.cfg.Authors {
		if err := pacer.Wait(ctx); err != nil {
			return articles, fmt.Errorf("fetch wapo graphics: %w", err)
		}

		items, err := s.fetchAuthor(ctx, slug, to)
		pacer.Rest()
		if err != nil {
			failed++
			lastErr = err
			s.logger.Warn("author feed failed, skipping", "author", slug, "error", err)
			continue
		}

		for _, it := range items {
			articles = append(articles, Normalize(it))
		}

		s.logger.Debug("fetched author feed", "author", slug, "items", len(items))
	}

	if len(s.cfg.Authors) > 0 && failed == len(s.cfg.Authors) {
		return articles, fmt.Errorf("fetch wapo graphics: all %d authors failed: %w", failed, lastErr)
	}
	return articles, nil
}

func (s *Source) authorURL(slug, to string) (string, error) {
	q, err := json.Marshal(query{Slug: slug, From: s.cfg.From, To: to, Limit: s.cfg.PageSize})
	if err != nil {
		return "", fmt.Errorf("encode query: %w", err)
	}

	v := url.Values{}
	v.Set("_website", "washpost")
	v.Set("query", string(q))

	return s.cfg.BaseURL + "?" + v.Encode(), nil
}

func (s *Source) fetchAuthor(ctx context.Context, slug, to string) ([]Item, error) {
	u, err := s.authorURL(slug, to)
	if err != nil {
		return nil, err
	}

	body, err := s.fetcher.Get(ctx, SourceID, u, s.cfg.Header.Clone())
	if err != nil {
		return nil, err
	}

	var resp APIResponse
	if err := source.DecodeJSON(SourceID, u, body, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Normalize maps one feed item to an article. The label keeps the outlet's
// display prefix as text and is always written in object form.
func Normalize(it Item) domain.Article {
	a := domain.Article{
		ID:          normalize.OrDefault(it.ID, domain.NoID),
		Headline:    normalize.OrDefault(it.Headlines.Basic, domain.Untitled),
		URL:         domain.NoURL,
		Date:        normalize.OrDefault(it.FirstPublishDate, domain.UnknownDate),
		Description: normalize.OrDefault(it.Description.Basic, domain.NoDescription),
		Credits:     make([]domain.Credit, 0, len(it.Credits.By)),
		Img:         domain.NoImage,
	}

	if it.CanonicalURL != "" {
		a.URL = normalize.AbsoluteURL(Origin, it.CanonicalURL)
	}

	if ld := it.LabelDisplay; ld != nil && (ld.Basic.HeadlinePrefix != "" || ld.Basic.URL != "") {
		a.Label = &domain.Label{
			Text:       ld.Basic.HeadlinePrefix,
			URL:        normalize.AbsoluteURL(Origin, ld.Basic.URL),
			Structured: true,
		}
	} else if a.URL != domain.NoURL {
		if l := normalize.Label(a.URL, Origin, 1); l != nil {
			l.Structured = true
			a.Label = l
		}
	}

	for _, p := range it.Credits.By {
		a.Credits = append(a.Credits, normalize.Credit(p.Name, p.Slug))
	}

	if la := it.AdditionalProperties.LeadArt; la != nil {
		for _, img := range []string{la.AdditionalProperties.ThumbnailResizeURL, la.AdditionalProperties.OriginalURL, la.URL} {
			if img != "" {
				a.Img = img
				break
			}
		}
	}

	return a
}
