package ranking

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topten/dates"
	"topten/fetch"
)

func seededCalculator(seed int64) *Calculator {
	return NewCalculator(rand.New(rand.NewSource(seed)))
}

// fullBallot returns a row with the given titles padded with repeats so it
// meets the counted-ballot threshold.
func fullBallot(titles ...string) []string {
	row := append([]string{}, titles...)
	for len(row) < DefaultMinVotes {
		row = append(row, titles[len(row)%len(titles)])
	}
	return row
}

func TestProcessShiftedRows(t *testing.T) {
	rows := [][]string{
		{"Timestamp", "note", "Vote 1", "note", "Vote 2", "note", "Vote 3"},
		{"4/1/2024 9:05:03", "x", "Title A", "y", "Title B", "z", "Title C"},
		{"4/2/2024 10:00:00", "x", "Title D", "y", "", "z", "Title E"},
	}

	got := ProcessShiftedRows(rows)

	require.Len(t, got, 2, "header row is discarded")
	assert.Equal(t, []string{"Title A", "Title B", "Title C"}, got[0])
	assert.Equal(t, []string{"Title D", "", "Title E"}, got[1])
}

func TestProcessShiftedRows_Empty(t *testing.T) {
	assert.Nil(t, ProcessShiftedRows(nil))
	assert.Empty(t, ProcessShiftedRows([][]string{{"header", "only"}}))
}

func TestTitlesToURLs(t *testing.T) {
	titles := [][]string{{"A", "B"}, {"C"}}
	urls := [][]string{{"u/a", "u/b"}, {"u/c"}}

	m, err := TitlesToURLs(titles, urls)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "u/a", "B": "u/b", "C": "u/c"}, m)
}

func TestTitlesToURLs_ShapeMismatch(t *testing.T) {
	_, err := TitlesToURLs([][]string{{"A"}}, [][]string{{"u/a"}, {"u/b"}})
	assert.Error(t, err, "row count mismatch is a contract violation")

	_, err = TitlesToURLs([][]string{{"A", "B"}}, [][]string{{"u/a"}})
	assert.Error(t, err, "row width mismatch is a contract violation")
}

func TestTitlesToUploaders_DegradesToUnknown(t *testing.T) {
	titlesToURLs := map[string]string{
		"A": "https://a.example",
		"B": "https://b.example",
		"C": "https://c.example",
	}
	videos := map[string]*fetch.VideoRecord{
		"https://a.example": {Uploader: "alice"},
		"https://b.example": {}, // fetched, but the source had no uploader
	}

	uploaders := TitlesToUploaders(titlesToURLs, videos)

	assert.Equal(t, "alice", uploaders["A"])
	assert.Equal(t, UnknownUploader, uploaders["B"])
	assert.Equal(t, UnknownUploader, uploaders["C"], "missing metadata never fails")
}

func TestCalc_BallotThresholds(t *testing.T) {
	urls := map[string]string{"A": "u/a", "B": "u/b", "C": "u/c", "D": "u/d", "E": "u/e"}
	uploaders := map[string]string{}

	t.Run("five votes is counted", func(t *testing.T) {
		rows := [][]string{{"A", "B", "C", "D", "E"}}
		records, err := seededCalculator(1).Calc(rows, urls, uploaders)
		require.NoError(t, err)
		assert.Len(t, records, 5)
	})

	t.Run("four votes is a validation error", func(t *testing.T) {
		rows := [][]string{
			{"A", "B", "C", "D", "E"},
			{"A", "B", "C", "D", ""},
		}
		_, err := seededCalculator(1).Calc(rows, urls, uploaders)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, 4, vErr.Votes)
		assert.Equal(t, 3, vErr.Line, "second data row sits at line 3 of the export")
	})

	t.Run("empty ballot is silently excluded", func(t *testing.T) {
		rows := [][]string{
			{"A", "B", "C", "D", "E"},
			{"", "", "", "", ""},
		}
		records, err := seededCalculator(1).Calc(rows, urls, uploaders)
		require.NoError(t, err)
		// One counted ballot: every title has 100% of it.
		for _, rec := range records {
			assert.Equal(t, "100.0000%", rec.Percentage)
		}
	})
}

func TestCalc_NoCountedBallots(t *testing.T) {
	rows := [][]string{{"", "", "", "", ""}}
	_, err := seededCalculator(1).Calc(rows, nil, nil)
	assert.Error(t, err)
}

func TestCalc_PercentagesAndCounts(t *testing.T) {
	// 4 counted ballots. "A" appears on 3, "B" on 2, the rest fill slots.
	rows := [][]string{
		fullBallot("A", "B", "x1", "x2", "x3"),
		fullBallot("A", "B", "y1", "y2", "y3"),
		fullBallot("A", "z1", "z2", "z3", "z4"),
		fullBallot("w1", "w2", "w3", "w4", "w5"),
	}
	urls := map[string]string{"A": "u/a"}

	records, err := seededCalculator(42).Calc(rows, urls, map[string]string{"A": "alice"})
	require.NoError(t, err)

	byTitle := make(map[string]RankedRecord)
	for _, rec := range records {
		byTitle[rec.Title] = rec
	}

	a := byTitle["A"]
	assert.Equal(t, "75.0000%", a.Percentage)
	assert.Equal(t, 3, a.TotalVotes)
	assert.Equal(t, "alice", a.Uploader)
	assert.Equal(t, "u/a", a.URL)
	assert.Empty(t, a.Notes, "a unique percentage is never flagged")

	b := byTitle["B"]
	assert.Equal(t, "50.0000%", b.Percentage)
	assert.Equal(t, UnknownUploader, b.Uploader, "missing metadata degrades to unknown")

	// Ranking is by descending percentage.
	assert.Equal(t, "A", records[0].Title)
	assert.Equal(t, "B", records[1].Title)
}

func TestCalc_BlanksNeverTally(t *testing.T) {
	rows := [][]string{
		{"A", "B", "C", "D", "E", "", ""},
	}
	records, err := seededCalculator(1).Calc(rows, nil, nil)
	require.NoError(t, err)

	for _, rec := range records {
		assert.NotEmpty(t, rec.Title, "the blank title must not appear in the ranking")
	}
	assert.Len(t, records, 5)
}

func TestCalc_TieBreakFlagsAndDistribution(t *testing.T) {
	// Two titles tied at 50% across 10 counted ballots (each title on 5).
	var rows [][]string
	for i := 0; i < 5; i++ {
		rows = append(rows, fullBallot("Tied 1", "a1", "a2", "a3", "a4"))
		rows = append(rows, fullBallot("Tied 2", "b1", "b2", "b3", "b4"))
	}

	firstSeen := make(map[string]bool)
	for seed := int64(0); seed < 64; seed++ {
		records, err := seededCalculator(seed).Calc(rows, nil, nil)
		require.NoError(t, err)

		var tied []RankedRecord
		for _, rec := range records {
			if rec.Title == "Tied 1" || rec.Title == "Tied 2" {
				tied = append(tied, rec)
			}
		}
		require.Len(t, tied, 2)
		for _, rec := range tied {
			assert.Equal(t, TieBreakNote, rec.Notes, "every tied title must be flagged")
			assert.Equal(t, "50.0000%", rec.Percentage)
		}
		firstSeen[tied[0].Title] = true
	}

	// Over many seeds both relative orderings must occur.
	assert.True(t, firstSeen["Tied 1"], "Tied 1 never came first across seeds")
	assert.True(t, firstSeen["Tied 2"], "Tied 2 never came first across seeds")
}

func TestCalc_ReproducibleWithSameSeed(t *testing.T) {
	var rows [][]string
	for i := 0; i < 4; i++ {
		rows = append(rows, fullBallot("T1", "T2", "T3", "T4", "T5"))
	}

	first, err := seededCalculator(7).Calc(rows, nil, nil)
	require.NoError(t, err)
	second, err := seededCalculator(7).Calc(rows, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second, "a fixed seed must reproduce the ranking")
}

func TestGuessVotingMonthYear(t *testing.T) {
	ballots := []Ballot{
		{Timestamp: time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)},
		{Timestamp: time.Date(2024, time.April, 20, 0, 0, 0, 0, time.UTC)},
		{Timestamp: time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)},
	}

	my, unanimous, err := GuessVotingMonthYear(ballots)
	require.NoError(t, err)
	assert.Equal(t, dates.MonthYear{Month: time.April, Year: 2024}, my)
	assert.False(t, unanimous)
}
