package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// DocumentReader returns a stored dataset document by name.
type DocumentReader interface {
	GetDocument(ctx context.Context, name string) ([]byte, time.Time, error)
}

// PostgresFetcher reads pg://name locations from the dataset_documents table.
type PostgresFetcher struct {
	Store DocumentReader
}

func (f *PostgresFetcher) Fetch(ctx context.Context, location string) (*FetchedDocument, error) {
	name := strings.Trim(strings.TrimPrefix(location, "pg://"), "/")
	if name == "" {
		return nil, fmt.Errorf("invalid pg location %q: want pg://name", location)
	}
	body, updatedAt, err := f.Store.GetDocument(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", name, err)
	}
	return &FetchedDocument{
		URL:         location,
		StatusCode:  200,
		ContentType: "application/json",
		Body:        io.NopCloser(bytes.NewReader(body)),
		FetchedAt:   updatedAt,
	}, nil
}
