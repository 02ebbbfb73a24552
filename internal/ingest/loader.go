package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/david/becas-dashboard/internal/models"
)

// Loader fetches and decodes the three dashboard datasets.
type Loader struct {
	sources  map[Kind]SourceConfig
	fetchers map[Kind]Fetcher
}

// NewLoader resolves a fetcher for every source in reg.
func NewLoader(reg *Registry, router *Router) (*Loader, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	if router == nil {
		router = &Router{}
	}
	l := &Loader{
		sources:  make(map[Kind]SourceConfig, len(reg.Sources)),
		fetchers: make(map[Kind]Fetcher, len(reg.Sources)),
	}
	for _, src := range reg.Sources {
		f, err := router.For(src)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Kind, err)
		}
		l.sources[src.Kind] = src
		l.fetchers[src.Kind] = f
	}
	return l, nil
}

// Location returns the configured location of kind.
func (l *Loader) Location(kind Kind) string {
	return l.sources[kind].Location
}

func (l *Loader) fetch(ctx context.Context, kind Kind) ([]byte, error) {
	src := l.sources[kind]
	start := time.Now()

	doc, err := l.fetchers[kind].Fetch(ctx, src.Location)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.Location, err)
	}
	data, err := ReadDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.Location, err)
	}

	log.Printf("[ingest] fetched %s from %s (%d bytes) in %s", kind, src.Location, len(data), time.Since(start).Round(time.Millisecond))
	return data, nil
}

func (l *Loader) LoadBeca18(ctx context.Context) (*models.Beca18Document, error) {
	data, err := l.fetch(ctx, KindBeca18)
	if err != nil {
		return nil, err
	}
	return ParseBeca18(data)
}

func (l *Loader) LoadInstitutions(ctx context.Context) (*models.InstitutionsDocument, error) {
	data, err := l.fetch(ctx, KindInstitutions)
	if err != nil {
		return nil, err
	}
	return ParseInstitutions(data)
}

func (l *Loader) LoadIntegral(ctx context.Context) (*models.IntegralDocument, error) {
	data, err := l.fetch(ctx, KindIntegral)
	if err != nil {
		return nil, err
	}
	return ParseIntegral(data)
}
