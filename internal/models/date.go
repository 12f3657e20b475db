package models

import "time"

// DateLayout is the canonical string form of a calendar date.
const DateLayout = "2006-01-02"

// NormalizeDate truncates t to midnight of its UTC calendar day.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a normalized date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// DateKey formats t as YYYY-MM-DD after normalizing it.
func DateKey(t time.Time) string {
	return NormalizeDate(t).Format(DateLayout)
}

// DayNumber counts whole UTC days since the Unix epoch.
func DayNumber(t time.Time) int64 {
	return NormalizeDate(t).Unix() / 86400
}

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func ISOWeekday(t time.Time) int {
	return (int(t.Weekday())+6)%7 + 1
}

// AddDays moves a normalized date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return NormalizeDate(t).AddDate(0, 0, n)
}
