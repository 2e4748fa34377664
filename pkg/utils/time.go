package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for episode dates and
// summary lines
const DateLayout = "2006-01-02"

// ParseRFC3339 parses a time string in RFC3339 format
func ParseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// ParseDateOrTime accepts either a calendar date or an RFC3339 timestamp.
// Calendar dates resolve to midnight UTC.
func ParseDateOrTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", s)
	}
	return t, nil
}

// ParseDaysParam reads a positive day count from a query value. An empty
// value yields def; values above max are rejected.
func ParseDaysParam(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > max {
		return 0, fmt.Errorf("days must be an integer between 1 and %d", max)
	}
	return n, nil
}

// WindowStart returns the instant `days` days before now
func WindowStart(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}
