package utils

import "time"

const DateLayout = "2006-01-02"

// NormalizeDate truncates a timestamp to a UTC calendar date. All core
// comparisons operate on normalized dates so that intraday components never
// influence chronological ordering.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// AddMonths steps a date forward by calendar months, keeping the day of
// month where possible (time.AddDate semantics).
func AddMonths(t time.Time, months int) time.Time {
	return NormalizeDate(t.AddDate(0, months, 0))
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
