package feed

import (
	"time"

	"graphics_feed/internal/domain"
)

// Within keeps the articles dated at or after now-window, tagging each copy
// with medium and rewriting its date in ISO form. Undated articles are
// dropped.
func Within(articles []domain.Article, medium string, now time.Time, window time.Duration) []domain.Article {
	cutoff := now.Add(-window)

	var kept []domain.Article
	for _, a := range articles {
		t, ok := ParseDate(a.Date)
		if !ok || t.Before(cutoff) {
			continue
		}
		a.Medium = medium
		a.Date = FormatISO(t)
		kept = append(kept, a)
	}
	return kept
}
