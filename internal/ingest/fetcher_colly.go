package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher implements Fetcher with a Colly collector. It adds per-domain
// delays and robots.txt handling on top of plain HTTP.
type CollyFetcher struct {
	UserAgent       string
	AcceptLanguage  string
	MaxRetries      int
	RequestTimeout  time.Duration
	DomainDelay     time.Duration
	IgnoreRobotsTxt bool
	MaxBodySize     int // bytes, 0 = unlimited
	CacheDir        string
}

// NewCollyFetcher creates a CollyFetcher from a source's fetch settings.
func NewCollyFetcher(cfg FetchConfig) *CollyFetcher {
	f := &CollyFetcher{
		UserAgent:       "becas-dashboard/1.0 (+colly)",
		AcceptLanguage:  defaultAcceptLanguage,
		MaxRetries:      cfg.retries(),
		RequestTimeout:  30 * time.Second,
		DomainDelay:     500 * time.Millisecond,
		IgnoreRobotsTxt: true,
		MaxBodySize:     50 * 1024 * 1024,
	}
	if cfg.TimeoutSeconds > 0 {
		f.RequestTimeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.AcceptLanguage != "" {
		f.AcceptLanguage = cfg.AcceptLanguage
	}
	return f
}

func (f *CollyFetcher) buildCollector() *colly.Collector {
	opts := []colly.CollectorOption{
		colly.UserAgent(f.UserAgent),
		colly.MaxBodySize(f.MaxBodySize),
		colly.AllowURLRevisit(),
	}
	if f.IgnoreRobotsTxt {
		opts = append(opts, colly.IgnoreRobotsTxt())
	}
	if f.CacheDir != "" {
		opts = append(opts, colly.CacheDir(f.CacheDir))
	}

	c := colly.NewCollector(opts...)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       f.DomainDelay,
	})
	c.SetRequestTimeout(f.RequestTimeout)
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "application/json, text/plain, */*")
		r.Headers.Set("Accept-Language", f.AcceptLanguage)
	})
	return c
}

// Fetch visits targetURL once, retrying failed responses up to MaxRetries times.
func (f *CollyFetcher) Fetch(ctx context.Context, targetURL string) (*FetchedDocument, error) {
	c := f.buildCollector()

	var (
		result   *FetchedDocument
		fetchErr error
	)

	c.OnResponse(func(r *colly.Response) {
		result = &FetchedDocument{
			URL:         targetURL,
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Body:        io.NopCloser(bytes.NewReader(r.Body)),
			FetchedAt:   time.Now(),
			Headers:     map[string][]string(r.Headers.Clone()),
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		retries, _ := r.Request.Ctx.GetAny("retries").(int)
		if retries < f.MaxRetries && ctx.Err() == nil {
			r.Request.Ctx.Put("retries", retries+1)
			log.Printf("[colly] retry %d/%d for %s: %v", retries+1, f.MaxRetries, r.Request.URL, err)
			time.Sleep(time.Duration(retries+1) * time.Second)
			if rerr := r.Request.Retry(); rerr == nil {
				return
			}
		}
		fetchErr = fmt.Errorf("fetch failed after %d retries (status %d): %w", retries, r.StatusCode, err)
	})

	// Visit runs the callbacks synchronously; a retried request may have
	// succeeded even though Visit reports the first failure.
	errc := make(chan error, 1)
	go func() { errc <- c.Visit(targetURL) }()

	var visitErr error
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case visitErr = <-errc:
	}

	switch {
	case result != nil && result.StatusCode == 200:
		return result, nil
	case fetchErr != nil:
		return nil, fetchErr
	case visitErr != nil:
		return nil, fmt.Errorf("visit failed: %w", visitErr)
	case result != nil:
		return nil, fmt.Errorf("unexpected status code: %d", result.StatusCode)
	}
	return nil, fmt.Errorf("no response received for %s", targetURL)
}
