// Package showcase joins calculated rankings with fetched video metadata
// and renders the three post-processing outputs: archive rows, sharable
// spreadsheet rows, and the showcase description text.
package showcase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"topten/archive"
	"topten/dates"
	"topten/fetch"
	"topten/ranking"
)

// Entry is one ranked video enriched with its fetched metadata. Metadata
// fields stay zero for videos the fetch step could not resolve.
type Entry struct {
	Rank       int
	Month      time.Month
	Year       int
	Title      string
	Uploader   string
	URL        string
	Percentage string
	TotalVotes int
	Notes      string
	UploadDate time.Time
	Duration   *int
	Platform   string
}

// Sharable is one row of the public spreadsheet. Unlike the archive row
// it carries no vote counts.
type Sharable struct {
	Rank     int
	Title    string
	Uploader string
	Platform string
	Duration string
	URL      string
}

// Build joins ranked records with fetched video metadata, keyed by URL.
// Entries keep the ranking order and are numbered from 1. A ranked record
// whose video was never fetched still produces an entry; its metadata
// fields are left zero.
func Build(ranked []ranking.RankedRecord, videos map[string]*fetch.VideoRecord, votingMY dates.MonthYear) []Entry {
	entries := make([]Entry, 0, len(ranked))
	for i, rec := range ranked {
		entry := Entry{
			Rank:       i + 1,
			Month:      votingMY.Month,
			Year:       votingMY.Year,
			Title:      rec.Title,
			Uploader:   rec.Uploader,
			URL:        rec.URL,
			Percentage: rec.Percentage,
			TotalVotes: rec.TotalVotes,
			Notes:      rec.Notes,
		}
		if video, ok := videos[rec.URL]; ok && video != nil {
			entry.UploadDate = video.UploadDate
			entry.Duration = video.Duration
			entry.Platform = video.Platform
		}
		entries = append(entries, entry)
	}
	return entries
}

// ArchiveRecords converts entries into rows appendable to the master
// archive spreadsheet.
func ArchiveRecords(entries []Entry) []archive.Record {
	records := make([]archive.Record, 0, len(entries))
	for _, entry := range entries {
		records = append(records, archive.Record{
			Month:      int(entry.Month),
			Year:       entry.Year,
			Title:      entry.Title,
			Uploader:   entry.Uploader,
			URL:        entry.URL,
			Percentage: entry.Percentage,
			TotalVotes: strconv.Itoa(entry.TotalVotes),
			Notes:      entry.Notes,
		})
	}
	return records
}

// SharableRecords converts entries into rows for the public spreadsheet.
func SharableRecords(entries []Entry) []Sharable {
	records := make([]Sharable, 0, len(entries))
	for _, entry := range entries {
		records = append(records, Sharable{
			Rank:     entry.Rank,
			Title:    entry.Title,
			Uploader: entry.Uploader,
			Platform: entry.Platform,
			Duration: FormatDuration(entry.Duration),
			URL:      entry.URL,
		})
	}
	return records
}

// Description renders the showcase description text: a heading for the
// voting month followed by one block per entry listing rank, title,
// uploader, and URL.
func Description(entries []Entry, votingMY dates.MonthYear) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The Top %d Videos of %s\n", len(entries), votingMY)
	for _, entry := range entries {
		fmt.Fprintf(&b, "\n%d. %s\n", entry.Rank, entry.Title)
		fmt.Fprintf(&b, "   by %s\n", entry.Uploader)
		fmt.Fprintf(&b, "   %s\n", entry.URL)
		if entry.Notes != "" {
			fmt.Fprintf(&b, "   (%s)\n", entry.Notes)
		}
	}
	return b.String()
}

// FormatDuration renders a duration in seconds as H:MM:SS, or M:SS when
// under an hour. A nil duration renders as the empty string.
func FormatDuration(seconds *int) string {
	if seconds == nil {
		return ""
	}
	total := *seconds
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
