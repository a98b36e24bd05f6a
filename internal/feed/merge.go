// Package feed implements merge-by-identity, date ordering and the recency
// window over article collections.
package feed

import (
	"fmt"

	"graphics_feed/internal/domain"
)

// MergePrecedence decides which copy survives when stored and freshly
// fetched articles share an id.
type MergePrecedence string

const (
	// PreferIncoming treats stored data as stale: the latest fetch wins.
	PreferIncoming MergePrecedence = "incoming"
	// PreferExisting keeps the stored copy and only adds unseen ids.
	PreferExisting MergePrecedence = "existing"
)

// ParsePrecedence validates a configured precedence name.
func ParsePrecedence(s string) (MergePrecedence, error) {
	switch MergePrecedence(s) {
	case PreferIncoming, "":
		return PreferIncoming, nil
	case PreferExisting:
		return PreferExisting, nil
	default:
		return "", fmt.Errorf("unknown merge precedence %q", s)
	}
}

// Merge concatenates existing and incoming and keeps exactly one article per
// id. Within one collection a later entry replaces an earlier one, so the
// last fetched copy of a duplicated id is kept. The result is sorted by date,
// newest first.
func Merge(existing, incoming []domain.Article, precedence MergePrecedence) []domain.Article {
	low, high := existing, incoming
	if precedence == PreferExisting {
		low, high = incoming, existing
	}

	index := make(map[string]int, len(existing)+len(incoming))
	merged := make([]domain.Article, 0, len(existing)+len(incoming))

	for _, set := range [][]domain.Article{low, high} {
		for _, a := range set {
			if i, ok := index[a.ID]; ok {
				merged[i] = a
				continue
			}
			index[a.ID] = len(merged)
			merged = append(merged, a)
		}
	}

	SortByDate(merged)
	return merged
}

// IDs returns the set of ids in articles.
func IDs(articles []domain.Article) map[string]struct{} {
	ids := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		ids[a.ID] = struct{}{}
	}
	return ids
}
