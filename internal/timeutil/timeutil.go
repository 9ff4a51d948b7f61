// Package timeutil holds the calendar arithmetic used by the aggregate queries
// and the streak walk. All functions work on the wall clock of the value they
// receive; no timezone conversion happens here.
package timeutil

import "time"

// StorageLayout is the canonical text form of a session start time.
// It sorts lexicographically in chronological order.
const StorageLayout = "2006-01-02T15:04:05"

// DisplayLayout is used for human-readable start times.
const DisplayLayout = "2006-01-02 15:04"

// DateLayout identifies a calendar day.
const DateLayout = "2006-01-02"

// StartOfDay returns midnight of the day t falls on.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfNextDay returns midnight of the day after t.
func StartOfNextDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

// EndOfDay returns the last storable instant of t's day (second precision).
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// StartOfWeek returns Monday 00:00 of the ISO week t falls in.
func StartOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return StartOfDay(t.AddDate(0, 0, -(weekday - 1)))
}

// StartOfNextWeek returns the Monday 00:00 following t's week.
func StartOfNextWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 7)
}

// DateKey returns the calendar date of t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatStorage renders t in StorageLayout.
func FormatStorage(t time.Time) string {
	return t.Format(StorageLayout)
}

// minuteLayout is StorageLayout without seconds, as written by tools that
// omit ":00".
const minuteLayout = "2006-01-02T15:04"

// ParseStorage parses a start time in local time. It accepts StorageLayout
// (with optional fractional seconds) and the same layout without seconds.
func ParseStorage(value string) (time.Time, error) {
	t, err := time.ParseInLocation(StorageLayout, value, time.Local)
	if err == nil {
		return t, nil
	}
	if t, merr := time.ParseInLocation(minuteLayout, value, time.Local); merr == nil {
		return t, nil
	}
	return time.Time{}, err
}

// Truncate drops sub-second precision so in-memory values compare equal to
// what the store returns.
func Truncate(t time.Time) time.Time {
	return t.Truncate(time.Second)
}
