// Package analysis holds the crisis-detection and clinical-analytics
// heuristics. Every function here is a pure computation over an
// in-memory slice of MoodRecord: inputs are never mutated, nothing is
// cached between calls, and insufficient data degrades to empty or zero
// results instead of errors. Callers may invoke any of them concurrently.
package analysis

import (
	"sort"
	"time"
)

// MoodRecord is one daily check-in as supplied by the storage layer.
// Optional factors are pointers so that "absent" is distinguishable
// from a recorded zero.
type MoodRecord struct {
	ID                string    `json:"id,omitempty"`
	Mood              int       `json:"mood"`
	CreatedAt         time.Time `json:"created_at"`
	Reflection        string    `json:"reflection,omitempty"`
	SleepHours        *float64  `json:"sleep_hours,omitempty"`
	SleepQuality      *int      `json:"sleep_quality,omitempty"`
	EnergyLevel       *int      `json:"energy_level,omitempty"`
	SocialInteraction *int      `json:"social_interaction,omitempty"`
	MedicationTaken   *bool     `json:"medication_taken,omitempty"`
	Triggers          []string  `json:"triggers,omitempty"`
}

// newestFirst returns a sorted copy, most recent first. Equal
// timestamps keep their input order.
func newestFirst(records []MoodRecord) []MoodRecord {
	out := make([]MoodRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// oldestFirst returns a sorted copy in chronological order
func oldestFirst(records []MoodRecord) []MoodRecord {
	out := make([]MoodRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func head(records []MoodRecord, n int) []MoodRecord {
	if n < len(records) {
		return records[:n]
	}
	return records
}

// LatestCreatedAt returns the most recent timestamp, or false when
// records is empty
func LatestCreatedAt(records []MoodRecord) (time.Time, bool) {
	if len(records) == 0 {
		return time.Time{}, false
	}
	latest := records[0].CreatedAt
	for _, r := range records[1:] {
		if r.CreatedAt.After(latest) {
			latest = r.CreatedAt
		}
	}
	return latest, true
}

func moods(records []MoodRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = float64(r.Mood)
	}
	return out
}
