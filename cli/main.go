package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"topten"
	"topten/archive"
	"topten/config"
	"topten/dates"
	"topten/fetch"
	"topten/ranking"
	"topten/showcase"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "fetch":
		cmdFetch(args)
	case "calc":
		cmdCalc(args)
	case "history":
		cmdHistory(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `topten - ballot ranking and video metadata toolkit

Usage:
  topten fetch [flags] <url>...           Fetch metadata for video URLs
  topten calc [flags]                     Rank ballots from votes CSVs
  topten history [flags]                  Look up anniversary archive entries
  topten help                             Show this help message

Examples:
  topten fetch https://www.youtube.com/watch?v=xxxx           # One video
  topten calc -titles shifted.csv -urls urls.csv               # Rank a month
  topten calc -titles shifted.csv -urls urls.csv -out top.csv  # Write CSV
  topten history -archive archive.csv -offsets 1,5,10          # Anniversaries

For help on specific command: topten <command> -h
`)
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()
}

func cmdFetch(args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Enable debug logging")
	timeout := fs.Duration("timeout", 10*time.Minute, "Overall timeout for the batch")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: topten fetch [flags] <url>...\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	urls := fs.Args()
	if len(urls) == 0 {
		fmt.Fprintf(os.Stderr, "Error: missing url\n")
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(*verbose)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	videos, failures, err := topten.FetchVideos(ctx, cfg, log, urls)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching videos: %v\n", err)
		os.Exit(1)
	}

	printVideos(videos, urls)
	for _, f := range failures {
		fmt.Fprintf(os.Stderr, "failed: %s: %v\n", f.URL, f.Err)
	}
	fmt.Fprintf(os.Stderr, "\nFetched: %d of %d\n", len(videos), len(urls))
}

func printVideos(videos map[string]*fetch.VideoRecord, urls []string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tUPLOADER\tUPLOADED\tDURATION\tPLATFORM")
	for _, url := range urls {
		v, ok := videos[url]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncate(v.Title, 50),
			v.Uploader,
			v.UploadDate.Format("2006-01-02"),
			showcase.FormatDuration(v.Duration),
			v.Platform,
		)
	}
	w.Flush()
}

func cmdCalc(args []string) {
	fs := flag.NewFlagSet("calc", flag.ExitOnError)
	titlesPath := fs.String("titles", "", "Shifted votes CSV with title columns (required)")
	urlsPath := fs.String("urls", "", "Shifted votes CSV with URL columns (required)")
	outPath := fs.String("out", "", "Write ranked records to this CSV file")
	descPath := fs.String("desc", "", "Write the showcase description to this file")
	seed := fs.Int64("seed", 0, "Tie-break seed (0 = time-based)")
	verbose := fs.Bool("v", false, "Enable debug logging")
	timeout := fs.Duration("timeout", 30*time.Minute, "Overall timeout for metadata fetching")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: topten calc [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if *titlesPath == "" || *urlsPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -titles and -urls are required\n")
		fs.Usage()
		os.Exit(1)
	}

	titleRaw, err := readCSV(*titlesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", *titlesPath, err)
		os.Exit(1)
	}
	urlRaw, err := readCSV(*urlsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", *urlsPath, err)
		os.Exit(1)
	}

	titleRows := ranking.ProcessShiftedRows(titleRaw)
	urlRows := ranking.ProcessShiftedRows(urlRaw)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(*verbose)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	videos, failures, err := topten.FetchVideos(ctx, cfg, log, uniqueURLs(urlRows))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching videos: %v\n", err)
		os.Exit(1)
	}
	for _, f := range failures {
		log.Warn().Str("url", f.URL).Err(f.Err).Msg("metadata unavailable")
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(*seed))

	ranked, err := topten.CalcTop10(titleRows, urlRows, videos, rnd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error calculating ranking: %v\n", err)
		os.Exit(1)
	}

	printRanked(ranked)

	if *outPath != "" {
		if err := writeRankedCSV(*outPath, ranked); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *outPath, err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Wrote ranked records to %s\n", *outPath)
	}

	if *descPath != "" {
		my, unanimous, err := votingMonthYear(titleRaw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error guessing voting month: %v\n", err)
			os.Exit(1)
		}
		if !unanimous {
			log.Warn().Stringer("month", my).Msg("ballot timestamps span several months, using the most common")
		}
		entries := showcase.Build(ranked, videos, my)
		desc := showcase.Description(entries, my)
		if err := os.WriteFile(*descPath, []byte(desc), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *descPath, err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Wrote showcase description to %s\n", *descPath)
	}
}

func printRanked(ranked []ranking.RankedRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tTITLE\tUPLOADER\tPERCENTAGE\tVOTES\tNOTES")
	for i, r := range ranked {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
			i+1, truncate(r.Title, 50), r.Uploader, r.Percentage, r.TotalVotes, r.Notes)
	}
	w.Flush()
}

func writeRankedCSV(path string, ranked []ranking.RankedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Title", "Percentage", "Total Votes", "URL"}); err != nil {
		return err
	}
	for _, r := range ranked {
		row := []string{r.Title, r.Percentage, strconv.Itoa(r.TotalVotes), r.URL}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// votingMonthYear reads the ballot timestamps out of the first column of
// the raw (unshifted) votes rows and infers the voting month.
func votingMonthYear(raw [][]string) (dates.MonthYear, bool, error) {
	var ballots []ranking.Ballot
	for i, row := range raw {
		if i == 0 || len(row) == 0 {
			continue
		}
		ts, err := dates.ParseVotesTimestamp(row[0])
		if err != nil {
			return dates.MonthYear{}, false, fmt.Errorf("row %d: %w", i+1, err)
		}
		ballots = append(ballots, ranking.Ballot{Timestamp: ts})
	}
	return ranking.GuessVotingMonthYear(ballots)
}

func uniqueURLs(urlRows [][]string) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, row := range urlRows {
		for _, url := range row {
			if url == "" || seen[url] {
				continue
			}
			seen[url] = true
			urls = append(urls, url)
		}
	}
	return urls
}

func cmdHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	archivePath := fs.String("archive", "", "Master archive CSV (required)")
	dateStr := fs.String("date", "", "Reference month as YYYY-MM (default: current month)")
	offsetsStr := fs.String("offsets", "1,5,10", "Comma-separated anniversary offsets in years")
	verbose := fs.Bool("v", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: topten history [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if *archivePath == "" {
		fmt.Fprintf(os.Stderr, "Error: -archive is required\n")
		fs.Usage()
		os.Exit(1)
	}

	from := time.Now().UTC()
	if *dateStr != "" {
		t, err := time.Parse("2006-01", *dateStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -date: %v (use YYYY-MM format)\n", err)
			os.Exit(1)
		}
		from = t
	}

	offsets, err := parseOffsets(*offsetsStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -offsets: %v\n", err)
		os.Exit(1)
	}

	records, err := readArchiveCSV(*archivePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", *archivePath, err)
		os.Exit(1)
	}

	log := newLogger(*verbose)
	history := topten.History(records, from, offsets, log)
	if len(history) == 0 {
		fmt.Println("No historical entries found.")
		return
	}

	years := make([]int, 0, len(history))
	for y := range history {
		years = append(years, y)
	}
	sort.Ints(years)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, y := range years {
		fmt.Fprintf(w, "%d year(s) ago:\n", y)
		for _, rec := range history[y] {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
				truncate(rec.Title, 50), rec.Uploader, rec.Percentage, rec.URL)
		}
	}
	w.Flush()
}

func parseOffsets(s string) ([]int, error) {
	var offsets []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid offset %q", part)
		}
		offsets = append(offsets, n)
	}
	return offsets, nil
}

// readArchiveCSV loads the master archive spreadsheet. Expected header:
// Month, Year, Title, Uploader, URL, Percentage, Total Votes, Notes.
func readArchiveCSV(path string) ([]archive.Record, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]archive.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < 8 {
			return nil, fmt.Errorf("row %d has %d columns, want 8", i+2, len(row))
		}
		month, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid month %q", i+2, row[0])
		}
		year, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid year %q", i+2, row[1])
		}
		records = append(records, archive.Record{
			Month:      month,
			Year:       year,
			Title:      row[2],
			Uploader:   row[3],
			URL:        row[4],
			Percentage: row[5],
			TotalVotes: row[6],
			Notes:      row[7],
		})
	}
	return records, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
