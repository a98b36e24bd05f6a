package feed

import (
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"graphics_feed/internal/domain"
)

// ISOLayout is the format dates are written in on aggregated output.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// ParseDate reads the outlet-native date formats seen in stored articles.
// Dates without a zone are taken as UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == domain.UnknownDate {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatISO renders t the way the feed front end expects.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// SortByDate orders articles newest first. Articles whose date cannot be
// parsed compare equal to each other and sort after every dated article;
// their relative order is preserved.
func SortByDate(articles []domain.Article) {
	type key struct {
		t  time.Time
		ok bool
	}
	keys := make(map[string]key, len(articles))
	keyOf := func(a domain.Article) key {
		if k, ok := keys[a.Date]; ok {
			return k
		}
		t, ok := ParseDate(a.Date)
		k := key{t, ok}
		keys[a.Date] = k
		return k
	}

	sort.SliceStable(articles, func(i, j int) bool {
		ki, kj := keyOf(articles[i]), keyOf(articles[j])
		if ki.ok != kj.ok {
			return ki.ok
		}
		if !ki.ok {
			return false
		}
		return ki.t.After(kj.t)
	})
}
