// Package fetch resolves video URLs across unrelated hosting platforms
// into one canonical metadata record shape.
//
// A Service implements one acquisition strategy (the YouTube Data API, or
// yt-dlp extraction for everything else). The Dispatcher routes each URL
// to the first Service that claims it. To support a new platform, add a
// Service implementation (or, for yt-dlp-served sites, a normalization
// table entry) and register it; the dispatcher never changes.
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// VideoRecord is the canonical metadata record every Service produces.
type VideoRecord struct {
	// ID is a deterministic UUIDv5 derived from the host and URL, so the
	// same video resolves to the same identity across runs.
	ID uuid.UUID

	Title string

	// Uploader is empty when the source cannot report one.
	Uploader string

	// UploadDate is always in UTC; it is never ambiguous about timezone.
	UploadDate time.Time

	// Duration is the video length in seconds. nil is a valid, expected
	// state for platforms that cannot report one, not an error.
	Duration *int

	// Platform is the display label of the hosting platform.
	Platform string
}

// Service retrieves and normalizes video metadata for one acquisition
// strategy.
type Service interface {
	// Matches reports whether this Service claims the given URL. It must
	// never panic, even on malformed input; all fallibility is deferred
	// to Fetch.
	Matches(rawURL string) bool

	// Fetch retrieves the canonical metadata record for the URL.
	Fetch(ctx context.Context, rawURL string) (*VideoRecord, error)
}

// Dispatcher holds an ordered list of Services and routes each URL to the
// first one that claims it. Exactly one configured Service claims any
// given accepted domain; overlapping claims are a configuration defect.
type Dispatcher struct {
	services []Service
}

// NewDispatcher creates a Dispatcher over the given Services, consulted
// in order.
func NewDispatcher(services ...Service) *Dispatcher {
	return &Dispatcher{services: services}
}

// Resolve returns the first Service claiming rawURL, or
// ErrUnsupportedSource if none does.
func (d *Dispatcher) Resolve(rawURL string) (Service, error) {
	for _, s := range d.services {
		if s.Matches(rawURL) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, rawURL)
}

// Fetch resolves rawURL to a Service and fetches its record.
func (d *Dispatcher) Fetch(ctx context.Context, rawURL string) (*VideoRecord, error) {
	svc, err := d.Resolve(rawURL)
	if err != nil {
		return nil, err
	}
	return svc.Fetch(ctx, rawURL)
}

// recordID returns a deterministic UUIDv5 for a (host, url) pair.
func recordID(host, rawURL string) uuid.UUID {
	ns := uuid.NewSHA1(uuid.NameSpaceDNS, []byte(strings.ToLower(strings.TrimSuffix(host, "."))))
	return uuid.NewSHA1(ns, []byte(rawURL))
}

// hostOf returns the lowercased hostname of rawURL, or "" if it cannot be
// parsed.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
