// Package archive answers anniversary queries over the master archive of
// past showcase records.
package archive

import (
	"time"

	"github.com/rs/zerolog"
)

// Record is the shape of one past ranked entry as stored in the master
// archive. Every field is text on disk; Month and Year are parsed by the
// loader. Read-only within a run.
type Record struct {
	Month      int
	Year       int
	Title      string
	Uploader   string
	URL        string
	Percentage string
	TotalVotes string
	Notes      string
}

type monthYear struct {
	month time.Month
	year  int
}

// History returns, for each anniversary offset, the archive records from
// the same month that many years before the reference date. For example,
// with a reference date in April 2024 and anniversaries 1, 5 and 10, the
// selected records are from April 2023, April 2019 and April 2013.
//
// The archive is indexed once, regardless of how many offsets are
// queried. An offset with no archived month is omitted from the result
// and logged; a gap never aborts the lookup for other offsets.
func History(records []Record, from time.Time, anniversaries []int, log zerolog.Logger) map[int][]Record {
	index := make(map[monthYear][]Record, len(records))
	for _, rec := range records {
		key := monthYear{month: time.Month(rec.Month), year: rec.Year}
		index[key] = append(index[key], rec)
	}

	history := make(map[int][]Record, len(anniversaries))
	for _, years := range anniversaries {
		key := monthYear{month: from.Month(), year: from.Year() - years}
		recs, ok := index[key]
		if !ok {
			log.Warn().Int("years_ago", years).
				Str("month", key.month.String()).Int("year", key.year).
				Msg("no historical entries found; the local archive copy may be out of date")
			continue
		}
		history[years] = recs
	}

	return history
}
