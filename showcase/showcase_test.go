package showcase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topten/dates"
	"topten/fetch"
	"topten/ranking"
)

func intPtr(v int) *int { return &v }

func testRanked() []ranking.RankedRecord {
	return []ranking.RankedRecord{
		{Title: "Winner", Uploader: "alice", Percentage: "80.0000%", TotalVotes: 8, URL: "https://example.com/a"},
		{Title: "Runner Up", Uploader: "unknown", Percentage: "50.0000%", TotalVotes: 5, URL: "https://example.com/b", Notes: ranking.TieBreakNote},
	}
}

func testVideos() map[string]*fetch.VideoRecord {
	return map[string]*fetch.VideoRecord{
		"https://example.com/a": {
			Title:      "Winner",
			Uploader:   "alice",
			UploadDate: time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC),
			Duration:   intPtr(213),
			Platform:   "YouTube",
		},
	}
}

func TestBuild(t *testing.T) {
	my := dates.MonthYear{Month: time.April, Year: 2024}
	entries := Build(testRanked(), testVideos(), my)
	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "Winner", entries[0].Title)
	assert.Equal(t, time.April, entries[0].Month)
	assert.Equal(t, 2024, entries[0].Year)
	assert.Equal(t, "YouTube", entries[0].Platform)
	require.NotNil(t, entries[0].Duration)
	assert.Equal(t, 213, *entries[0].Duration)

	// Unfetched video still gets an entry, metadata stays zero.
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, "Runner Up", entries[1].Title)
	assert.Nil(t, entries[1].Duration)
	assert.Empty(t, entries[1].Platform)
	assert.True(t, entries[1].UploadDate.IsZero())
}

func TestArchiveRecords(t *testing.T) {
	my := dates.MonthYear{Month: time.April, Year: 2024}
	records := ArchiveRecords(Build(testRanked(), testVideos(), my))
	require.Len(t, records, 2)

	assert.Equal(t, 4, records[0].Month)
	assert.Equal(t, 2024, records[0].Year)
	assert.Equal(t, "Winner", records[0].Title)
	assert.Equal(t, "8", records[0].TotalVotes)
	assert.Equal(t, "80.0000%", records[0].Percentage)
	assert.Equal(t, ranking.TieBreakNote, records[1].Notes)
}

func TestSharableRecords(t *testing.T) {
	my := dates.MonthYear{Month: time.April, Year: 2024}
	records := SharableRecords(Build(testRanked(), testVideos(), my))
	require.Len(t, records, 2)

	assert.Equal(t, 1, records[0].Rank)
	assert.Equal(t, "3:33", records[0].Duration)
	assert.Equal(t, "YouTube", records[0].Platform)
	assert.Empty(t, records[1].Duration)
}

func TestDescription(t *testing.T) {
	my := dates.MonthYear{Month: time.April, Year: 2024}
	desc := Description(Build(testRanked(), testVideos(), my), my)

	assert.Contains(t, desc, "The Top 2 Videos of April 2024")
	assert.Contains(t, desc, "1. Winner")
	assert.Contains(t, desc, "by alice")
	assert.Contains(t, desc, "https://example.com/b")
	assert.Contains(t, desc, ranking.TieBreakNote)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "", FormatDuration(nil))
	assert.Equal(t, "0:05", FormatDuration(intPtr(5)))
	assert.Equal(t, "3:33", FormatDuration(intPtr(213)))
	assert.Equal(t, "1:00:00", FormatDuration(intPtr(3600)))
	assert.Equal(t, "2:05:09", FormatDuration(intPtr(7509)))
}
