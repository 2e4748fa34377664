package valueobjects

import (
	"fmt"

	pkgerrors "symptocare-backend/pkg/errors"
)

// MoodLevel is the 1-8 self-reported mood score
type MoodLevel int

const (
	MoodAngry MoodLevel = iota + 1
	MoodStressed
	MoodVerySad
	MoodSad
	MoodNeutral
	MoodHappy
	MoodVeryHappy
	MoodExcited
)

const (
	MinMoodLevel = MoodAngry
	MaxMoodLevel = MoodExcited
)

var moodLabels = map[MoodLevel]string{
	MoodAngry:     "Angry",
	MoodStressed:  "Stressed",
	MoodVerySad:   "Very Sad",
	MoodSad:       "Sad",
	MoodNeutral:   "Neutral",
	MoodHappy:     "Happy",
	MoodVeryHappy: "Very Happy",
	MoodExcited:   "Excited",
}

var moodEmojis = map[MoodLevel]string{
	MoodAngry:     "😡",
	MoodStressed:  "😫",
	MoodVerySad:   "😭",
	MoodSad:       "😢",
	MoodNeutral:   "😐",
	MoodHappy:     "😊",
	MoodVeryHappy: "😁",
	MoodExcited:   "🤩",
}

// NewMoodLevel validates a raw mood score
func NewMoodLevel(v int) (MoodLevel, error) {
	m := MoodLevel(v)
	if !m.IsValid() {
		return 0, pkgerrors.NewValidationError(
			fmt.Sprintf("mood must be between %d and %d", MinMoodLevel, MaxMoodLevel))
	}
	return m, nil
}

// ClampMoodLevel bounds a raw score to the scale. Used when reading
// caller-supplied data that has not been validated.
func ClampMoodLevel(v int) MoodLevel {
	switch {
	case v < int(MinMoodLevel):
		return MinMoodLevel
	case v > int(MaxMoodLevel):
		return MaxMoodLevel
	default:
		return MoodLevel(v)
	}
}

// IsValid reports whether the level is on the 1-8 scale
func (m MoodLevel) IsValid() bool {
	return m >= MinMoodLevel && m <= MaxMoodLevel
}

// Label returns the category label, or "Unknown" off-scale
func (m MoodLevel) Label() string {
	if l, ok := moodLabels[m]; ok {
		return l
	}
	return "Unknown"
}

// Emoji returns the emoji shown for the level
func (m MoodLevel) Emoji() string {
	return moodEmojis[m]
}

// Int returns the raw score
func (m MoodLevel) Int() int {
	return int(m)
}
