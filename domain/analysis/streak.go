package analysis

import "time"

const dayLayout = "2006-01-02"

// CheckInStreak counts consecutive calendar days in loc that have at
// least one entry, walking back from today. If today has no entry yet
// the count starts at yesterday.
func CheckInStreak(records []MoodRecord, now time.Time, loc *time.Location) int {
	if len(records) == 0 {
		return 0
	}
	if loc == nil {
		loc = time.UTC
	}

	days := make(map[string]struct{}, len(records))
	for _, r := range records {
		days[r.CreatedAt.In(loc).Format(dayLayout)] = struct{}{}
	}

	local := now.In(loc)
	cursor := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if _, ok := days[cursor.Format(dayLayout)]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		if _, ok := days[cursor.Format(dayLayout)]; !ok {
			return streak
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
}
