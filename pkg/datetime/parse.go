// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the output date format of period ranges.
const DayLayout = "2006-01-02"

// Layouts are the timestamp formats the backend is known to emit, tried in
// order. Naive datetimes are read as UTC.
var Layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	DayLayout,
}

// Parse parses s with the first matching layout and returns it in UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", s)
}

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// Range formats a start/end pair as "2026-01-01 .. 2026-01-31". A missing
// bound is shown as "?", and two missing bounds give an empty string.
func Range(start, end *time.Time) string {
	if start == nil && end == nil {
		return ""
	}
	day := func(t *time.Time) string {
		if t == nil {
			return "?"
		}
		return t.Format(DayLayout)
	}
	return day(start) + " .. " + day(end)
}
