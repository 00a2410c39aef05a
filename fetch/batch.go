package fetch

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Failure records one URL that could not be fetched.
type Failure struct {
	URL string
	Err error
}

// Fetcher runs batches of URL fetches through a Dispatcher, pacing
// requests and collecting per-item failures without aborting the batch.
type Fetcher struct {
	dispatcher *Dispatcher
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// NewFetcher creates a Fetcher. delay is the minimum interval between
// requests; zero disables pacing.
func NewFetcher(d *Dispatcher, delay time.Duration, log zerolog.Logger) *Fetcher {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
	return &Fetcher{dispatcher: d, limiter: limiter, log: log}
}

// FetchAll resolves every URL to its metadata record. Results are keyed
// by URL, not by position, so callers can join them regardless of
// completion order. Failures are collected per item as (url, error)
// pairs; one bad URL never aborts the batch. Duplicate URLs are fetched
// once.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) (map[string]*VideoRecord, []Failure) {
	records := make(map[string]*VideoRecord, len(urls))
	var failures []Failure

	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true

		if err := f.limiter.Wait(ctx); err != nil {
			failures = append(failures, Failure{URL: u, Err: err})
			continue
		}

		rec, err := f.dispatcher.Fetch(ctx, u)
		if err != nil {
			f.log.Error().Str("url", u).Err(err).Msg("fetch failed")
			failures = append(failures, Failure{URL: u, Err: err})
			continue
		}

		f.log.Debug().Str("url", u).Str("platform", rec.Platform).Msg("fetched video metadata")
		records[u] = rec
	}

	return records, failures
}
