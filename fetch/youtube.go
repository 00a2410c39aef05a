package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"topten/dates"
	"topten/retry"
)

// youtubeHosts maps every host the API-backed service claims. Keep this
// conservative: only hosts that are truly YouTube from a user perspective.
var youtubeHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

// YouTubeService fetches video metadata through the YouTube Data API v3.
// It requires an API key.
type YouTubeService struct {
	service     *youtube.Service
	RetryConfig *retry.Config
}

// NewYouTubeService creates the API-backed fetch service.
func NewYouTubeService(ctx context.Context, apiKey string) (*YouTubeService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("fetch: youtube api key required")
	}

	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("fetch: create youtube service: %w", err)
	}

	cfg := retry.DefaultConfig()
	return &YouTubeService{service: svc, RetryConfig: &cfg}, nil
}

// Matches reports whether rawURL belongs to one of YouTube's canonical or
// short-link hosts.
func (s *YouTubeService) Matches(rawURL string) bool {
	return youtubeHosts[hostOf(rawURL)]
}

// Fetch queries the Data API for the video's status, snippet and content
// details and normalizes them into a VideoRecord.
func (s *YouTubeService) Fetch(ctx context.Context, rawURL string) (*VideoRecord, error) {
	videoID := extractVideoID(rawURL)
	if videoID == "" {
		return nil, &RequestError{URL: rawURL, Err: errors.New("unable to determine video id from URL")}
	}

	cfg := s.RetryConfig
	if cfg == nil {
		defaultCfg := retry.DefaultConfig()
		cfg = &defaultCfg
	}

	var item *youtube.Video
	err := retry.Do(ctx, *cfg, apiErrorClassifier, func(ctx context.Context) error {
		call := s.service.Videos.List([]string{"status", "snippet", "contentDetails"}).
			Id(videoID).
			Context(ctx)

		resp, err := call.Do()
		if err != nil {
			return &RequestError{URL: rawURL, Err: err}
		}
		if resp == nil {
			return &RequestError{URL: rawURL, Err: errors.New("no API response")}
		}
		if len(resp.Items) == 0 {
			return fmt.Errorf("%w: %q", ErrVideoUnavailable, rawURL)
		}

		item = resp.Items[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	if item.Snippet == nil || item.ContentDetails == nil {
		return nil, &ParseError{URL: rawURL, Err: errors.New("response item missing snippet or content details")}
	}

	seconds, err := dates.ParseISO8601Duration(item.ContentDetails.Duration)
	if err != nil {
		return nil, &ParseError{URL: rawURL, Err: err}
	}

	uploadDate, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
	if err != nil {
		return nil, &ParseError{URL: rawURL, Err: fmt.Errorf("parse publish timestamp %q: %w", item.Snippet.PublishedAt, err)}
	}

	return &VideoRecord{
		ID:         recordID("youtube.com", rawURL),
		Title:      item.Snippet.Title,
		Uploader:   item.Snippet.ChannelTitle,
		UploadDate: uploadDate.UTC(),
		Duration:   &seconds,
		Platform:   "YouTube",
	}, nil
}

// extractVideoID pulls the canonical video id out of the supported URL
// shapes: watch?v=, youtu.be/<id>, shorts/<id>, live/<id> and embed/<id>.
// It returns "" when no id can be extracted.
func extractVideoID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	if !youtubeHosts[host] {
		return ""
	}

	path := strings.Trim(u.Path, "/")
	if host == "youtu.be" {
		return firstSegment(path)
	}

	if id := u.Query().Get("v"); id != "" {
		return id
	}

	for _, prefix := range []string{"shorts/", "live/", "embed/"} {
		if strings.HasPrefix(path, prefix) {
			return firstSegment(strings.TrimPrefix(path, prefix))
		}
	}

	return ""
}

func firstSegment(path string) string {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}

// apiErrorClassifier determines if a Data API error is retryable. A
// response with zero items is terminal - the video genuinely does not
// exist - and is never retried.
func apiErrorClassifier(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrVideoUnavailable) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 403, 429, 500, 502, 503:
			// Quota, rate limit and transient server errors.
			return true
		default:
			return false
		}
	}

	// Default to retryable for unknown transport errors.
	return true
}
