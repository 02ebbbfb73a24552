package ingest

import (
	"context"
	"io"
	"time"
)

// Kind identifies one of the three dashboard datasets.
type Kind string

const (
	KindBeca18       Kind = "beca18"
	KindInstitutions Kind = "institutions"
	KindIntegral     Kind = "integral"
)

// Kinds lists every dataset a refresh cycle must load.
var Kinds = []Kind{KindBeca18, KindInstitutions, KindIntegral}

// FetchedDocument represents the raw result of a fetch operation.
type FetchedDocument struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        io.ReadCloser
	FetchedAt   time.Time
	Headers     map[string][]string
}

// Fetcher retrieves raw content from a location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (*FetchedDocument, error)
}
