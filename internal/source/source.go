// Package source holds what every outlet adapter shares.
package source

import (
	"context"
	"encoding/json"
	"net/http"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/pagination"
)

// Fetcher is the transport an adapter reads pages through.
type Fetcher interface {
	Get(ctx context.Context, outlet, url string, header http.Header) ([]byte, error)
}

// Config holds what every adapter needs besides its own endpoint details.
type Config struct {
	BaseURL  string
	PageSize int
	Header   http.Header
	Paging   pagination.Options
}

// Header converts a loaded headers file into an http.Header.
func Header(m map[string]string) http.Header {
	h := make(http.Header, len(m))
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}

// DecodeJSON unmarshals body into v, reporting failures as *domain.ParseError.
func DecodeJSON(outlet, url string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &domain.ParseError{Outlet: outlet, URL: url, Err: err}
	}
	return nil
}
