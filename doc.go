// Package topten turns a month of community video ballots into a ranked
// top-10 showcase.
//
// It covers the full pipeline: fetching video metadata from YouTube and
// other platforms, parsing ballot timestamps and voting windows, ranking
// voted titles into percentages, and looking up anniversary entries in
// the historical archive.
//
// Overview
//
// topten provides high-level convenience functions for the most common
// operations:
//
//   - FetchVideos: Resolve and fetch metadata for a batch of video URLs
//   - CalcTop10: Tally ballots into ranked records with tie-breaking
//   - History: Look up archive entries for anniversary months
//
// Quick Start
//
// Fetch metadata for the voted URLs:
//
//	ctx := context.Background()
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	videos, failures, err := topten.FetchVideos(ctx, cfg, logger, urls)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, f := range failures {
//		fmt.Printf("skipped %s: %v\n", f.URL, f.Err)
//	}
//
// Rank the ballots:
//
//	ranked, err := topten.CalcTop10(titleRows, urlRows, videos, rnd)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, r := range ranked {
//		fmt.Printf("%s by %s (%s)\n", r.Title, r.Uploader, r.Percentage)
//	}
//
// Configuration
//
// topten uses a configuration system that loads settings from multiple
// sources:
//
//   1. Environment variables (highest priority)
//   2. Config file (topten.json or ~/.config/topten/topten.json)
//   3. Default values (lowest priority)
//
// Environment variables:
//
//   - TOPTEN_API_KEY: YouTube Data API key
//   - TOPTEN_ACCEPTED_DOMAINS: Comma-separated non-YouTube domains
//   - TOPTEN_YTDLP_PATH: Path to yt-dlp executable
//   - TOPTEN_YTDLP_TIMEOUT: Timeout for yt-dlp operations
//   - TOPTEN_MAX_RETRIES: Maximum retry attempts
//   - TOPTEN_SLEEP_INTERVAL: Delay between fetch requests
//   - TOPTEN_COOKIE_FILE: Netscape-format cookie store for yt-dlp
//   - TOPTEN_ALLOWED_EXTRACTORS: Comma-separated yt-dlp extractor names
//
// Error Handling
//
// All operations return errors that implement standard Go error handling:
//
// Checking for sentinel errors:
//
//	if errors.Is(err, topten.ErrVideoUnavailable) {
//		fmt.Println("Video deleted or private")
//	}
//
// Extracting wrapped error details:
//
//	var valErr *topten.ValidationError
//	if errors.As(err, &valErr) {
//		fmt.Printf("Ballot on line %d has %d votes\n", valErr.Line, valErr.Votes)
//	}
//
// Advanced Usage
//
// For more control, use the sub-packages directly:
//
//   - fetch: URL dispatch, YouTube API and yt-dlp fetch services
//   - ranking: Ballot processing and percentage calculation
//   - dates: Duration, timestamp, and voting-window parsing
//   - archive: Anniversary lookups over the master archive
//   - showcase: Post-processing output shapes
//   - config: Configuration management
//   - retry: Exponential backoff retry logic
//
// Example using the fetch package directly:
//
//	svc := fetch.NewYtdlpService(fetch.YtdlpOptions{
//		AcceptedDomains: []string{"tiktok.com"},
//		Path:            "/usr/bin/yt-dlp",
//	})
//	record, err := svc.Fetch(ctx, videoURL)
//
// Dependencies
//
// topten requires yt-dlp to be installed and available in PATH or
// specified via TOPTEN_YTDLP_PATH for non-YouTube platforms, and a
// YouTube Data API key for YouTube URLs.
//
// Install yt-dlp: https://github.com/yt-dlp/yt-dlp
//
package topten
