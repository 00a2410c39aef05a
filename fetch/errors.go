package fetch

import (
	"errors"
	"fmt"
)

// Sentinel errors for fetch operations.
var (
	// ErrUnsupportedSource indicates no configured Service claims a URL.
	// Fatal for that URL.
	ErrUnsupportedSource = errors.New("fetch: unsupported source")

	// ErrVideoUnavailable indicates a well-formed response with no
	// matching items: the video genuinely does not exist or is
	// inaccessible. Terminal; never retried.
	ErrVideoUnavailable = errors.New("fetch: video unavailable")
)

// RequestError wraps a transport or extraction failure for one URL. The
// caller may retry it; the fetch services themselves retry only within
// the transport's own configured retry count.
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("fetch: could not request %q: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ParseError wraps a response that was received successfully but is
// structurally unusable.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("fetch: could not parse response for %q: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
