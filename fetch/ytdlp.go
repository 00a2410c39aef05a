package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultYtdlpPath    = "yt-dlp"
	defaultYtdlpTimeout = 5 * time.Minute
)

// YtdlpOptions configures a YtdlpService. One immutable value per run.
type YtdlpOptions struct {
	// AcceptedDomains are the hosts this service claims. Must be disjoint
	// from the hosts of the API-backed service.
	AcceptedDomains []string

	// Path is the yt-dlp executable. Defaults to "yt-dlp".
	Path string

	// Timeout bounds a single extraction. Defaults to 5 minutes.
	Timeout time.Duration

	// Retries and SleepInterval are passed through to yt-dlp; retrying is
	// the transport's responsibility, not this service's.
	Retries       int
	SleepInterval time.Duration

	// AllowedExtractors restricts yt-dlp to the named per-site extractors.
	AllowedExtractors []string

	// CookieFile is an optional cookie store. Some requests yield no data
	// without one.
	CookieFile string

	// Logger receives non-fatal diagnostics.
	Logger zerolog.Logger
}

// YtdlpService fetches metadata for every accepted non-YouTube domain by
// delegating to yt-dlp.
type YtdlpService struct {
	opts YtdlpOptions
	log  zerolog.Logger
}

// NewYtdlpService creates the generic extraction fetch service. A missing
// cookie file is reported as an informational diagnostic, not an error.
func NewYtdlpService(opts YtdlpOptions) *YtdlpService {
	if opts.Path == "" {
		opts.Path = defaultYtdlpPath
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultYtdlpTimeout
	}

	s := &YtdlpService{opts: opts, log: opts.Logger}

	if opts.CookieFile == "" {
		s.log.Info().Msg("no cookie file configured; some requests may yield no data")
	} else if _, err := os.Stat(opts.CookieFile); err != nil {
		s.log.Info().Str("path", opts.CookieFile).Msg("cookie file not found; some requests may yield no data")
	}

	return s
}

// Matches reports whether the URL's host is one of the accepted domains.
func (s *YtdlpService) Matches(rawURL string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return false
	}
	for _, domain := range s.opts.AcceptedDomains {
		d := strings.ToLower(domain)
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Fetch extracts the video's metadata via yt-dlp and normalizes it
// through the per-site rule table.
func (s *YtdlpService) Fetch(ctx context.Context, rawURL string) (*VideoRecord, error) {
	raw, err := s.extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return s.normalize(rawURL, secondLevelLabel(rawURL), raw)
}

// extract runs yt-dlp and decodes its JSON output. A playlist-shaped
// response is unwrapped to its first entry.
func (s *YtdlpService) extract(ctx context.Context, rawURL string) (*ytdlpInfo, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, s.opts.Path, s.args(rawURL)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cmdCtx.Err() != nil {
			return nil, &RequestError{URL: rawURL, Err: cmdCtx.Err()}
		}
		return nil, &RequestError{URL: rawURL,
			Err: fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(stderr.String()))}
	}

	info, err := parseYtdlpInfo(stdout.Bytes())
	if err != nil {
		return nil, &ParseError{URL: rawURL, Err: err}
	}
	return info, nil
}

// args builds the yt-dlp argument list from the configured options.
func (s *YtdlpService) args(rawURL string) []string {
	args := []string{"-J", "--quiet", "--no-warnings"}

	if s.opts.Retries > 0 {
		args = append(args, "--retries", strconv.Itoa(s.opts.Retries))
	}
	if s.opts.SleepInterval > 0 {
		args = append(args, "--sleep-interval", strconv.FormatFloat(s.opts.SleepInterval.Seconds(), 'f', -1, 64))
	}
	if len(s.opts.AllowedExtractors) > 0 {
		args = append(args, "--use-extractors", strings.Join(s.opts.AllowedExtractors, ","))
	}
	if s.opts.CookieFile != "" {
		if _, err := os.Stat(s.opts.CookieFile); err == nil {
			args = append(args, "--cookies", s.opts.CookieFile)
		}
	}

	return append(args, rawURL)
}

// ytdlpInfo is the subset of yt-dlp's JSON output used here. A playlist-
// shaped response carries Entries.
type ytdlpInfo struct {
	Title      string      `json:"title"`
	Channel    string      `json:"channel"`
	Uploader   string      `json:"uploader"`
	UploaderID string      `json:"uploader_id"`
	UploadDate string      `json:"upload_date"` // YYYYMMDD
	Duration   *float64    `json:"duration"`    // seconds
	Entries    []ytdlpInfo `json:"entries"`
}

// parseYtdlpInfo decodes yt-dlp's JSON output, taking the first entry of
// a playlist-shaped response.
func parseYtdlpInfo(data []byte) (*ytdlpInfo, error) {
	var info ytdlpInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	if len(info.Entries) > 0 {
		return &info.Entries[0], nil
	}
	return &info, nil
}

// secondLevelLabel returns the registrable label of the URL's host:
// "www.tiktok.com" -> "tiktok", "bsky.app" -> "bsky",
// "pt.thishorsie.rocks" -> "thishorsie".
func secondLevelLabel(rawURL string) string {
	host := hostOf(rawURL)
	if host == "" {
		return ""
	}
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return parts[0]
	}
	return parts[len(parts)-2]
}
