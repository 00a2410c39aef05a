package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
)

// siteRule describes how one platform's raw extraction output deviates
// from the canonical record shape. Some URLs have site-specific issues
// that must be handled before the result can be processed; if yt-dlp
// updates resolve any of them, the respective rule should be updated
// accordingly. New platforms get a new table entry; the request path
// never changes.
type siteRule struct {
	// canonicalLabel renames the site label (eg. "x" -> "twitter").
	canonicalLabel string

	// platform overrides the display label; empty derives it from the
	// site label.
	platform string

	// uploader picks the uploader out of the raw result; nil keeps the
	// default channel/uploader fallback.
	uploader func(raw *ytdlpInfo) string

	// title synthesizes the display title; nil keeps the raw title.
	title func(raw *ytdlpInfo, uploader string) string

	// noDuration marks platforms that never report a usable duration.
	noDuration bool

	// fixup applies link-shape special cases after the field remaps.
	fixup func(rec *VideoRecord, rawURL string, log zerolog.Logger)
}

var twitterRule = siteRule{
	canonicalLabel: "twitter",
	platform:       "Twitter",
	uploader:       func(raw *ytdlpInfo) string { return raw.UploaderID },
	title: func(raw *ytdlpInfo, uploader string) string {
		return fmt.Sprintf("X post by %s (%s)", uploader, hashTitle(raw.Title))
	},
	fixup: discardExtraTweetVideoDuration,
}

// siteRules is keyed by the second-level label of the URL's host.
var siteRules = map[string]siteRule{
	"twitter": twitterRule,
	"x":       twitterRule,
	"newgrounds": {
		uploader:   func(raw *ytdlpInfo) string { return raw.Uploader },
		noDuration: true,
	},
	"tiktok": {
		uploader: func(raw *ytdlpInfo) string { return raw.Uploader },
		title: func(raw *ytdlpInfo, uploader string) string {
			return fmt.Sprintf("Tiktok video by %s (%s)", uploader, hashTitle(raw.Title))
		},
	},
	"bilibili": {
		uploader: func(raw *ytdlpInfo) string { return raw.Uploader },
	},
	"bsky": {
		canonicalLabel: "bluesky",
		platform:       "Bluesky",
		uploader: func(raw *ytdlpInfo) string {
			// The uploader id is a full handle like "user.bsky.social";
			// only the leading segment names the account.
			handle := raw.UploaderID
			if i := strings.IndexByte(handle, '.'); i >= 0 {
				handle = handle[:i]
			}
			return handle
		},
		title: func(raw *ytdlpInfo, uploader string) string {
			return fmt.Sprintf("Bluesky post by %s (%s)", uploader, hashTitle(raw.Title))
		},
		noDuration: true,
	},
	"pony":       {platform: "PonyTube"},
	"thishorsie": {platform: "ThisHorsieRocks"},
}

// normalize passes a raw extraction result through the per-site rule
// table and builds the canonical record.
func (s *YtdlpService) normalize(rawURL, site string, raw *ytdlpInfo) (*VideoRecord, error) {
	rule, hasRule := siteRules[site]

	label := site
	if hasRule && rule.canonicalLabel != "" {
		label = rule.canonicalLabel
	}

	uploader := coalesce(raw.Channel, raw.Uploader)
	if hasRule && rule.uploader != nil {
		uploader = rule.uploader(raw)
	}

	title := raw.Title
	if hasRule && rule.title != nil {
		title = rule.title(raw, uploader)
	}

	platform := capitalize(label)
	if hasRule && rule.platform != "" {
		platform = rule.platform
	}

	var uploadDate time.Time
	if raw.UploadDate != "" {
		// yt-dlp reports upload dates as naive YYYYMMDD values that its
		// own source treats as UTC.
		t, err := time.Parse("20060102", raw.UploadDate)
		if err != nil {
			return nil, &ParseError{URL: rawURL, Err: fmt.Errorf("parse upload date %q: %w", raw.UploadDate, err)}
		}
		uploadDate = t.UTC()
	}

	var duration *int
	if hasRule && rule.noDuration {
		s.log.Warn().Str("platform", platform).Str("url", rawURL).
			Msg("platform does not report video duration")
	} else if raw.Duration != nil {
		seconds := int(*raw.Duration)
		duration = &seconds
	}

	rec := &VideoRecord{
		ID:         recordID(hostOf(rawURL), rawURL),
		Title:      title,
		Uploader:   uploader,
		UploadDate: uploadDate,
		Duration:   duration,
		Platform:   platform,
	}

	if hasRule && rule.fixup != nil {
		rule.fixup(rec, rawURL, s.log)
	}

	return rec, nil
}

// discardExtraTweetVideoDuration handles posts carrying several videos,
// addressed by a trailing numeric index ("/video/N"). yt-dlp only reports
// an accurate duration for the video at index 1, so any other index has
// its duration discarded, never silently kept.
func discardExtraTweetVideoDuration(rec *VideoRecord, rawURL string, log zerolog.Logger) {
	index, ok := trailingVideoIndex(rawURL)
	if !ok || index == 1 {
		return
	}
	if rec.Duration != nil {
		log.Warn().Str("url", rawURL).
			Msg("post has several videos and the fetched duration is inaccurate; ignoring it")
		rec.Duration = nil
	}
}

// trailingVideoIndex reports the N of a ".../video/N" URL shape.
func trailingVideoIndex(rawURL string) (int, bool) {
	trimmed := strings.TrimSuffix(rawURL, "/")
	slash := strings.LastIndexByte(trimmed, '/')
	if slash < 0 || !strings.HasSuffix(trimmed[:slash], "/video") {
		return 0, false
	}
	index, err := strconv.Atoi(trimmed[slash+1:])
	if err != nil {
		return 0, false
	}
	return index, true
}

// hashTitle returns a short fixed-length hex prefix of the title's sha256
// digest. Sites like X and TikTok have no designated title field for
// posts, so the display title embeds this prefix to reduce the chance of
// similarity between different posts by the same uploader without
// duplicating the raw text. A longer prefix would decrease that chance
// further.
func hashTitle(title string) string {
	sum := sha256.Sum256([]byte(title))
	return hex.EncodeToString(sum[:])[:5]
}

// capitalize upper-cases the first rune of a site label.
func capitalize(label string) string {
	if label == "" {
		return ""
	}
	runes := []rune(label)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
