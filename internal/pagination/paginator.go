// Package pagination drives an outlet's page function until its result set
// is exhausted.
package pagination

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"graphics_feed/internal/pace"
)

// Page is one response from an outlet.
type Page[R any] struct {
	Records []R
	// Next is the cursor for the following page; empty means no more pages.
	Next string
	// Limit is the page size that was requested. A page shorter than Limit
	// is the last one. Zero disables the check.
	Limit int
}

// PageFunc fetches the page at cursor. The first call receives "".
type PageFunc[R any] func(ctx context.Context, cursor string) (Page[R], error)

type Options struct {
	// PageDelay is the pause between the end of one page and the request
	// for the next.
	PageDelay time.Duration
	// MaxPages caps the number of requests; zero means unlimited.
	MaxPages int
}

// Collect calls fetch from the empty cursor until a page is empty, has no
// next cursor, or is shorter than its limit. When a page fails, the records
// of all earlier pages are returned together with the error.
func Collect[R any](ctx context.Context, fetch PageFunc[R], opts Options, logger *slog.Logger) ([]R, error) {
	pacer := pace.New(opts.PageDelay)

	var all []R
	cursor := ""

	for page := 1; opts.MaxPages <= 0 || page <= opts.MaxPages; page++ {
		if err := pacer.Wait(ctx); err != nil {
			return all, fmt.Errorf("wait for page %d: %w", page, err)
		}

		p, err := fetch(ctx, cursor)
		pacer.Rest()
		if err != nil {
			logger.Warn("page failed, keeping earlier pages",
				"page", page,
				"cursor", cursor,
				"collected", len(all),
				"error", err,
			)
			return all, fmt.Errorf("page %d (cursor %q): %w", page, cursor, err)
		}

		all = append(all, p.Records...)

		logger.Debug("fetched page",
			"page", page,
			"cursor", cursor,
			"records", len(p.Records),
			"total", len(all),
		)

		if len(p.Records) == 0 || p.Next == "" || (p.Limit > 0 && len(p.Records) < p.Limit) {
			break
		}
		cursor = p.Next
	}

	return all, nil
}
