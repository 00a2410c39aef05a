package topten

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"topten/archive"
	"topten/config"
	"topten/fetch"
	"topten/ranking"
)

// FetchVideos fetches metadata for a batch of video URLs using the
// configured fetch services: the YouTube Data API for YouTube URLs and
// yt-dlp for every other accepted domain. Duplicate and blank URLs are
// skipped. Per-URL errors are collected as failures rather than aborting
// the batch; the returned error covers setup only.
func FetchVideos(ctx context.Context, cfg *config.Config, log zerolog.Logger, urls []string) (map[string]*fetch.VideoRecord, []fetch.Failure, error) {
	yt, err := fetch.NewYouTubeService(ctx, cfg.APIKey)
	if err != nil {
		return nil, nil, err
	}
	ytdlp := fetch.NewYtdlpService(fetch.YtdlpOptions{
		AcceptedDomains:   cfg.AcceptedDomains,
		Path:              cfg.YtdlpPath,
		Timeout:           cfg.YtdlpTimeout,
		Retries:           cfg.MaxRetries,
		SleepInterval:     cfg.SleepInterval,
		AllowedExtractors: cfg.AllowedExtractors,
		CookieFile:        cfg.CookieFile,
		Logger:            log,
	})

	fetcher := fetch.NewFetcher(fetch.NewDispatcher(yt, ytdlp), cfg.SleepInterval, log)
	videos, failures := fetcher.FetchAll(ctx, urls)
	return videos, failures, nil
}

// CalcTop10 tallies ballot title rows into ranked records. The title and
// URL rows must already be aligned column for column; videos supplies
// uploader names, degrading to "unknown" for titles whose video was never
// fetched. rnd drives tie-breaking; pass a seeded source for reproducible
// output.
func CalcTop10(titleRows, urlRows [][]string, videos map[string]*fetch.VideoRecord, rnd *rand.Rand) ([]ranking.RankedRecord, error) {
	titlesToURLs, err := ranking.TitlesToURLs(titleRows, urlRows)
	if err != nil {
		return nil, err
	}
	titlesToUploaders := ranking.TitlesToUploaders(titlesToURLs, videos)
	return ranking.NewCalculator(rnd).Calc(titleRows, titlesToURLs, titlesToUploaders)
}

// History returns the archive entries from the same month 1, 5, 10, ...
// years before the reference date, keyed by offset. Offsets with no
// archived month are omitted.
func History(records []archive.Record, from time.Time, anniversaries []int, log zerolog.Logger) map[int][]archive.Record {
	return archive.History(records, from, anniversaries, log)
}
