// Package rss renders the aggregated feed as RSS 2.0.
package rss

import (
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/feed"
)

// Channel describes the feed itself.
type Channel struct {
	Title       string
	Link        string
	Description string
	Author      string
}

// Render creates an RSS document from aggregated articles.
func Render(articles []domain.Article, ch Channel, now time.Time) (string, error) {
	f := &feeds.Feed{
		Title:       ch.Title,
		Link:        &feeds.Link{Href: ch.Link},
		Description: ch.Description,
		Created:     now,
	}
	if ch.Author != "" {
		f.Author = &feeds.Author{Name: ch.Author}
	}

	f.Items = make([]*feeds.Item, 0, len(articles))
	for _, a := range articles {
		item := &feeds.Item{
			Title:       a.Headline,
			Link:        &feeds.Link{Href: a.URL},
			Id:          a.Medium + ":" + a.ID,
			Description: a.Description,
		}

		if names := creditNames(a.Credits); names != "" {
			item.Author = &feeds.Author{Name: names}
		}
		if t, ok := feed.ParseDate(a.Date); ok {
			item.Created = t
		}
		if a.HasImage() {
			item.Enclosure = &feeds.Enclosure{Url: a.Img, Type: imageType(a.Img), Length: "0"}
		}

		f.Items = append(f.Items, item)
	}

	out, err := f.ToRss()
	if err != nil {
		return "", fmt.Errorf("failed to generate RSS: %w", err)
	}
	return out, nil
}

func creditNames(credits []domain.Credit) string {
	names := make([]string, 0, len(credits))
	for _, c := range credits {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

func imageType(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, ".png"):
		return "image/png"
	case strings.Contains(lower, ".webp"):
		return "image/webp"
	case strings.Contains(lower, ".gif"):
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
