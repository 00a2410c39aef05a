// Package dates parses the awkward date and duration formats that appear
// in voting exports and platform metadata, and provides the month/year
// arithmetic used to bucket votes and archive records.
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MonthYear identifies one calendar month.
type MonthYear struct {
	Month time.Month
	Year  int
}

func (my MonthYear) String() string {
	return fmt.Sprintf("%s %d", my.Month, my.Year)
}

// Fixed zones for lenient month bounds. Kiribati (UTC+14) is the first
// place on Earth to enter a month, and IDLW (UTC-12) the last to leave it.
var (
	zoneUTCPlus14  = time.FixedZone("UTC+14", 14*60*60)
	zoneUTCMinus12 = time.FixedZone("UTC-12", -12*60*60)
)

var iso8601DurationRegexp = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISO8601Duration converts an ISO 8601 duration of the form used by
// video platforms ("PT1H2M3S") into total seconds. Each of the hour,
// minute and second components is optional, but their order is fixed.
func ParseISO8601Duration(duration string) (int, error) {
	m := iso8601DurationRegexp.FindStringSubmatch(duration)
	if m == nil {
		return 0, fmt.Errorf(`cannot parse ISO 8601 duration %q; expected form "PT#H#M#S"`, duration)
	}

	total := 0
	for i, multiplier := range []int{3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("cannot parse ISO 8601 duration %q: %w", duration, err)
		}
		total += n * multiplier
	}

	return total, nil
}

var votesTimestampRegexp = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{1,4}) (\d{1,2}):(\d{1,2}):(\d{1,2})$`)

// ParseVotesTimestamp parses a timestamp from the votes export into a
// time.Time. The format is M/D/Y H:MM:SS where - annoyingly - month, day
// and hour may have either 1 or 2 digits, which Go's fixed-width layout
// parsing can't handle directly. The variable-width fields are zero-padded
// first, then parsed strictly. The result carries no timezone; the source
// data is naive local time by convention.
func ParseVotesTimestamp(timestamp string) (time.Time, error) {
	trimmed := strings.TrimSpace(timestamp)
	m := votesTimestampRegexp.FindStringSubmatch(trimmed)
	if m == nil {
		return time.Time{}, fmt.Errorf("cannot parse votes timestamp %q; invalid format", timestamp)
	}

	padded := fmt.Sprintf("%s/%s/%s %s:%s:%s",
		zeroPad(m[1], 2), zeroPad(m[2], 2), zeroPad(m[3], 4),
		zeroPad(m[4], 2), zeroPad(m[5], 2), zeroPad(m[6], 2))

	t, err := time.Parse("01/02/2006 15:04:05", padded)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse votes timestamp %q: %w", timestamp, err)
	}

	return t, nil
}

// FormatVotesTimestamp renders a time in the votes export format
// (M/D/Y H:MM:SS, without leading zeros on month, day and hour).
func FormatVotesTimestamp(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d %d:%02d:%02d",
		t.Month(), t.Day(), t.Year(), t.Hour(), t.Minute(), t.Second())
}

func zeroPad(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// MonthYearBounds returns the half-open interval [lower, upper) bounding
// the given month: the first instant of that month and the first instant
// of the next, rolling the year at December. In lenient mode the lower
// bound is pinned to UTC+14 and the upper bound to UTC-12, so a timestamp
// from any real-world timezone that nominally falls inside the month is
// never excluded.
func MonthYearBounds(month time.Month, year int, lenient bool) (time.Time, time.Time, error) {
	if month < time.January || month > time.December {
		return time.Time{}, time.Time{}, fmt.Errorf("month %d out of range", int(month))
	}

	lowerZone, upperZone := time.UTC, time.UTC
	if lenient {
		lowerZone, upperZone = zoneUTCPlus14, zoneUTCMinus12
	}

	lower := time.Date(year, month, 1, 0, 0, 0, 0, lowerZone)
	var upper time.Time
	if month == time.December {
		upper = time.Date(year+1, time.January, 1, 0, 0, 0, 0, upperZone)
	} else {
		upper = time.Date(year, month+1, 1, 0, 0, 0, 0, upperZone)
	}

	return lower, upper, nil
}

// IsBetween reports whether t falls within the half-open interval
// [lower, upper).
func IsBetween(t, lower, upper time.Time) bool {
	return !t.Before(lower) && t.Before(upper)
}

// PrecedingMonth returns the first day of the month preceding t,
// preserving its location.
func PrecedingMonth(t time.Time) time.Time {
	month, year := t.Month()-1, t.Year()
	if t.Month() == time.January {
		month, year = time.December, t.Year()-1
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
}

// MostCommonMonthYear buckets the given timestamps by month and year and
// returns the most common bucket, along with whether the timestamps were
// unanimous (exactly one distinct bucket). Among equally-frequent buckets
// the first-seen one wins; a later bucket replaces the running winner only
// on a strictly greater count.
func MostCommonMonthYear(timestamps []time.Time) (MonthYear, bool, error) {
	if len(timestamps) == 0 {
		return MonthYear{}, false, errors.New("dates: no timestamps given")
	}

	counts := make(map[MonthYear]int, len(timestamps))
	var seen []MonthYear
	for _, t := range timestamps {
		my := MonthYear{Month: t.Month(), Year: t.Year()}
		if _, ok := counts[my]; !ok {
			seen = append(seen, my)
		}
		counts[my]++
	}

	best := seen[0]
	for _, my := range seen[1:] {
		if counts[my] > counts[best] {
			best = my
		}
	}

	return best, len(seen) == 1, nil
}

// RelativeYearsAgo converts a relative date of exactly the form
// "N year ago" or "N years ago" into an absolute date, subtracting N
// years from the reference date while keeping month and day. For example,
// "5 years ago" from 2024-04-01 yields 2019-04-01.
func RelativeYearsAgo(relative string, from time.Time) (time.Time, error) {
	words := strings.Split(relative, " ")
	if len(words) != 3 {
		return time.Time{}, fmt.Errorf(`cannot convert relative date %q to absolute date; date must be given in form "N year ago" or "N years ago"`, relative)
	}

	years, err := strconv.Atoi(words[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot convert relative date %q to absolute date; first word must be an integer number of years", relative)
	}

	if tail := words[1] + " " + words[2]; tail != "year ago" && tail != "years ago" {
		return time.Time{}, fmt.Errorf(`cannot convert relative date %q to absolute date; date must end in "year ago" or "years ago"`, relative)
	}

	return from.AddDate(-years, 0, 0), nil
}
