package archive

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory(t *testing.T) {
	records := []Record{
		{Month: 4, Year: 2019, Title: "Five Year Winner", Uploader: "alice", Percentage: "61.0000%"},
		{Month: 4, Year: 2019, Title: "Five Year Runner Up", Uploader: "bob", Percentage: "44.0000%"},
		{Month: 4, Year: 2023, Title: "Last April", Uploader: "carol", Percentage: "70.0000%"},
		{Month: 3, Year: 2019, Title: "Wrong Month", Uploader: "dave", Percentage: "50.0000%"},
	}
	from := time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC)

	history := History(records, from, []int{1, 5, 10}, zerolog.Nop())

	require.Contains(t, history, 1)
	require.Contains(t, history, 5)
	assert.NotContains(t, history, 10)

	require.Len(t, history[1], 1)
	assert.Equal(t, "Last April", history[1][0].Title)

	require.Len(t, history[5], 2)
	assert.Equal(t, "Five Year Winner", history[5][0].Title)
	assert.Equal(t, "Five Year Runner Up", history[5][1].Title)
}

func TestHistory_MissingOffsetsOmitted(t *testing.T) {
	records := []Record{
		{Month: 4, Year: 2019, Title: "Only Entry"},
	}
	from := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	history := History(records, from, []int{10}, zerolog.Nop())
	assert.Empty(t, history)
}

func TestHistory_EmptyArchive(t *testing.T) {
	from := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	history := History(nil, from, []int{1, 5}, zerolog.Nop())
	assert.Empty(t, history)
}
