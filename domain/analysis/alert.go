package analysis

import (
	"fmt"
	"time"
)

const alertMissingRecommendation = "Consider a quick daily check-in. Regular tracking helps detect patterns early."

// AlertPolicy is the alert-banner variant of the missing-entries check.
// Its threshold is independent of the analyzer's.
type AlertPolicy struct {
	ThresholdDays int
}

// NewAlertPolicy creates a policy; non-positive thresholds fall back to 14
func NewAlertPolicy(thresholdDays int) AlertPolicy {
	if thresholdDays <= 0 {
		thresholdDays = 14
	}
	return AlertPolicy{ThresholdDays: thresholdDays}
}

// Apply replaces any analyzer missing_entries flag with the banner policy's
// own evaluation. latest is the newest entry across every entry source;
// hasEntries false means the user has never logged anything.
func (p AlertPolicy) Apply(flags []CrisisFlag, latest time.Time, hasEntries bool, now time.Time) []CrisisFlag {
	out := WithoutTypes(flags, FlagMissingEntries)

	if !hasEntries {
		return append(out, CrisisFlag{
			Type:           FlagMissingEntries,
			Severity:       SeverityHigh,
			Description:    "No mood entries yet.",
			Recommendation: alertMissingRecommendation,
		})
	}

	days := DaysSince(latest, now)
	if days < p.ThresholdDays {
		return out
	}

	severity := SeverityMedium
	if days >= 2*p.ThresholdDays {
		severity = SeverityHigh
	}

	unit := "days"
	if days == 1 {
		unit = "day"
	}

	return append(out, CrisisFlag{
		Type:           FlagMissingEntries,
		Severity:       severity,
		Description:    fmt.Sprintf("No mood entries for %d %s.", days, unit),
		Recommendation: alertMissingRecommendation,
	})
}

// LatestOf returns the newest timestamp across several record sets
func LatestOf(sets ...[]MoodRecord) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, set := range sets {
		if t, ok := LatestCreatedAt(set); ok && (!found || t.After(latest)) {
			latest = t
			found = true
		}
	}
	return latest, found
}
