package ingest

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileFetcher reads documents from the local filesystem. Locations are either
// file:// URLs or bare paths.
type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, location string) (*FetchedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := filePath(location)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &FetchedDocument{
		URL:         location,
		StatusCode:  200,
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Body:        f,
		FetchedAt:   time.Now(),
	}, nil
}

func filePath(location string) (string, error) {
	if !strings.HasPrefix(location, "file://") {
		return location, nil
	}
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("invalid file URL: %w", err)
	}
	// file://relative/path puts the first segment in Host.
	return filepath.FromSlash(u.Host + u.Path), nil
}
