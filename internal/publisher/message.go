package publisher

import (
	"time"

	"github.com/google/uuid"

	"graphics_feed/internal/domain"
)

// ActionCreate is the only action emitted: stored graphics are announced
// once, when first seen.
const ActionCreate = "create"

type ArticleMessage struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Outlet    string         `json:"outlet"`
	Article   domain.Article `json:"article"`
	Timestamp time.Time      `json:"timestamp"`
}

func NewArticleMessage(outlet string, article domain.Article, now time.Time) ArticleMessage {
	return ArticleMessage{
		ID:        uuid.NewString(),
		Action:    ActionCreate,
		Outlet:    outlet,
		Article:   article,
		Timestamp: now.UTC(),
	}
}

// RoutingKey is the key a message of outlet is published under. The queue
// is bound to every outlet below base, so consumers can also bind a single
// outlet.
func RoutingKey(base, outlet string) string {
	return base + "." + outlet
}

func bindingKey(base string) string {
	return base + ".*"
}
