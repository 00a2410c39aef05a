package topten

import (
	"topten/fetch"
	"topten/ranking"
	"topten/retry"
)

// Error handling types exported for library users.
//
// All error types support the standard error handling patterns:
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, fetch.ErrUnsupportedSource) {
//		fmt.Println("No fetch service accepts this URL")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var reqErr *fetch.RequestError
//	if errors.As(err, &reqErr) {
//		fmt.Printf("Fetching %s failed: %v\n", reqErr.URL, reqErr.Err)
//	}

// Type aliases for convenient error handling.
type (
	// RequestError wraps errors reaching a video platform.
	RequestError = fetch.RequestError
	// ParseError wraps errors interpreting a platform response.
	ParseError = fetch.ParseError
	// ValidationError reports a ballot with too few votes.
	ValidationError = ranking.ValidationError
	// RetryableError wraps errors that occurred after retries were exhausted.
	RetryableError = retry.RetryableError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrUnsupportedSource indicates no fetch service accepts the URL.
	ErrUnsupportedSource = fetch.ErrUnsupportedSource
	// ErrVideoUnavailable indicates the video is deleted, private, or
	// otherwise gone.
	ErrVideoUnavailable = fetch.ErrVideoUnavailable
)

// IsRetryable determines if an error should be retried.
// It returns false for permanent errors like context cancellation.
func IsRetryable(err error) bool {
	return retry.IsRetryable(err)
}
