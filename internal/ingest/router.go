package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedScheme = errors.New("unsupported location scheme")

// Router picks a Fetcher by location scheme. A nil fetcher disables its scheme.
type Router struct {
	File     Fetcher
	S3       Fetcher
	Postgres Fetcher
}

// For returns the fetcher that serves src. HTTP(S) fetchers are built per
// source so each keeps its own timeout, retry and cache-busting settings.
func (r *Router) For(src SourceConfig) (Fetcher, error) {
	switch scheme(src.Location) {
	case "http", "https":
		if src.Fetcher == "colly" {
			return NewCollyFetcher(src.Fetch), nil
		}
		f := NewHTTPFetcher(src.Fetch)
		f.CacheBust = src.CacheBust
		return f, nil
	case "s3":
		return r.enabled("s3", r.S3)
	case "pg":
		return r.enabled("pg", r.Postgres)
	case "", "file":
		if r.File == nil {
			return FileFetcher{}, nil
		}
		return r.File, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, src.Location)
}

func (r *Router) enabled(name string, f Fetcher) (Fetcher, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: %s:// sources are not configured", ErrUnsupportedScheme, name)
	}
	return f, nil
}

// Fetch fetches location with default settings.
func (r *Router) Fetch(ctx context.Context, location string) (*FetchedDocument, error) {
	f, err := r.For(SourceConfig{Location: location})
	if err != nil {
		return nil, err
	}
	return f.Fetch(ctx, location)
}

// scheme returns the lower-cased URL scheme, or "" for bare paths.
// Single-letter schemes are Windows drive letters.
func scheme(location string) string {
	i := strings.Index(location, "://")
	if i <= 1 {
		return ""
	}
	return strings.ToLower(location[:i])
}
