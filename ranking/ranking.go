// Package ranking tallies ballot-style vote submissions into a
// percentage-ranked record set, resolving ties by uniform random
// permutation.
package ranking

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"topten/dates"
	"topten/fetch"
)

// DefaultMinVotes is the minimum number of non-blank entries a ballot
// needs to be counted.
const DefaultMinVotes = 5

// TieBreakNote is attached to every record whose position was tie-broken.
const TieBreakNote = "Tie broken randomly by computer"

// UnknownUploader is used when no metadata resolves for a title. Absence
// of metadata is expected, not exceptional.
const UnknownUploader = "unknown"

// Ballot is one voter's submitted list of title selections for a voting
// round. An empty slot is an empty title.
type Ballot struct {
	Timestamp time.Time
	Titles    []string
}

// RankedRecord is one ranked position of a voting round. Built once per
// run; not mutated afterwards.
type RankedRecord struct {
	Title      string
	Uploader   string
	Percentage string // rendered to exactly 4 decimal digits, eg. "50.0000%"
	TotalVotes int
	URL        string
	Notes      string // TieBreakNote when the position was tie-broken
}

// ValidationError reports a ballot with too few votes to count but too
// many to be an abstention.
type ValidationError struct {
	// Line is the approximate 1-based line of the ballot in the source
	// file, header included, since that is what editors display.
	Line     int
	Votes    int
	MinVotes int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ranking: only %d votes included in ballot line ~%d when at least %d are required",
		e.Votes, e.Line, e.MinVotes)
}

// ProcessShiftedRows strips the artifacts of a "shifted" votes export (a
// votes table with an annotation column inserted after every original
// column): the header row is discarded, then the first column and every
// odd-indexed annotation column are dropped, leaving the ordered
// vote-title columns.
func ProcessShiftedRows(rows [][]string) [][]string {
	if len(rows) == 0 {
		return nil
	}

	data := rows[1:]
	out := make([][]string, 0, len(data))
	for _, row := range data {
		var kept []string
		for i := 2; i < len(row); i += 2 {
			kept = append(kept, row[i])
		}
		out = append(out, kept)
	}
	return out
}

// TitlesToURLs zips an (unshifted) title table and a matching URL table
// into a title-to-URL lookup, pairing row by row and cell by cell. A
// shape mismatch is a caller contract violation, not silently tolerated.
func TitlesToURLs(titleRows, urlRows [][]string) (map[string]string, error) {
	if len(titleRows) != len(urlRows) {
		return nil, fmt.Errorf("ranking: title table has %d rows but url table has %d", len(titleRows), len(urlRows))
	}

	titlesToURLs := make(map[string]string)
	for i := range titleRows {
		if len(titleRows[i]) != len(urlRows[i]) {
			return nil, fmt.Errorf("ranking: row %d has %d titles but %d urls", i, len(titleRows[i]), len(urlRows[i]))
		}
		for j, title := range titleRows[i] {
			titlesToURLs[title] = urlRows[i][j]
		}
	}
	return titlesToURLs, nil
}

// TitlesToUploaders resolves each title to its uploader through the
// fetched metadata, keyed by URL. Missing URLs or records degrade to
// UnknownUploader rather than fail.
func TitlesToUploaders(titlesToURLs map[string]string, videos map[string]*fetch.VideoRecord) map[string]string {
	uploaders := make(map[string]string, len(titlesToURLs))
	for title, url := range titlesToURLs {
		rec := videos[url]
		if rec == nil || rec.Uploader == "" {
			uploaders[title] = UnknownUploader
			continue
		}
		uploaders[title] = rec.Uploader
	}
	return uploaders
}

// Calculator tallies ballots into ranked records. Rand drives the
// tie-break shuffle; tests supply a seeded source for reproducible
// output, production uses a real generator.
type Calculator struct {
	Rand     *rand.Rand
	MinVotes int // defaults to DefaultMinVotes
}

// NewCalculator returns a Calculator using the given randomness source.
func NewCalculator(rnd *rand.Rand) *Calculator {
	return &Calculator{Rand: rnd, MinVotes: DefaultMinVotes}
}

// Calc counts the occurrences of each voted title across all ballots and
// builds records ranked by percentage of counted ballots.
//
// A ballot with zero non-blank slots is an abstention, excluded without
// error. A ballot with at least one vote but fewer than MinVotes is
// invalid and aborts the run with a ValidationError. Blank slots never
// contribute to any tally.
func (c *Calculator) Calc(titleRows [][]string, titlesToURLs, titlesToUploaders map[string]string) ([]RankedRecord, error) {
	minVotes := c.MinVotes
	if minVotes <= 0 {
		minVotes = DefaultMinVotes
	}
	rnd := c.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	counted := 0
	for i, row := range titleRows {
		votes := 0
		for _, title := range row {
			if title != "" {
				votes++
			}
		}
		switch {
		case votes >= minVotes:
			counted++
		case votes == 0:
			// Abstention.
		default:
			// +2: editors display 1-based line numbers and the header row
			// was already discarded.
			return nil, &ValidationError{Line: i + 2, Votes: votes, MinVotes: minVotes}
		}
	}
	if counted == 0 {
		return nil, errors.New("ranking: no counted ballots")
	}

	counts := make(map[string]int)
	for _, row := range titleRows {
		for _, title := range row {
			if title == "" {
				continue
			}
			counts[title]++
		}
	}

	// Titles sharing a percentage are tied; group them so each group can
	// be shuffled as a unit, highest percentage first.
	percentageGroups := make(map[float64][]string)
	for title, count := range counts {
		percentage := float64(count) / float64(counted) * 100
		percentageGroups[percentage] = append(percentageGroups[percentage], title)
	}

	percentages := make([]float64, 0, len(percentageGroups))
	for p := range percentageGroups {
		percentages = append(percentages, p)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(percentages)))

	records := make([]RankedRecord, 0, len(counts))
	for _, percentage := range percentages {
		group := percentageGroups[percentage]

		// Map iteration order would otherwise leak into the shuffle and
		// defeat seeded reproducibility.
		sort.Strings(group)
		rnd.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})

		tieBroken := len(group) > 1
		for _, title := range group {
			uploader := titlesToUploaders[title]
			if uploader == "" {
				uploader = UnknownUploader
			}
			rec := RankedRecord{
				Title:      title,
				Uploader:   uploader,
				Percentage: fmt.Sprintf("%.4f%%", percentage),
				TotalVotes: counts[title],
				URL:        titlesToURLs[title],
			}
			if tieBroken {
				rec.Notes = TieBreakNote
			}
			records = append(records, rec)
		}
	}

	return records, nil
}

// GuessVotingMonthYear infers the month and year votes were cast in by
// taking the most common month-year among ballot timestamps. Votes are
// cast in the month after the videos are uploaded, so the showcase month
// is the preceding one. The second return reports whether all ballots
// agreed.
func GuessVotingMonthYear(ballots []Ballot) (dates.MonthYear, bool, error) {
	timestamps := make([]time.Time, len(ballots))
	for i, b := range ballots {
		timestamps[i] = b.Timestamp
	}
	return dates.MostCommonMonthYear(timestamps)
}
