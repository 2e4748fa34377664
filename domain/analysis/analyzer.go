package analysis

import (
	"fmt"
	"math"
	"time"

	"symptocare-backend/domain/config"
)

const (
	extendedLowRecommendation    = "Consider reaching out to a mental health professional or trusted person"
	rapidCyclingDescription      = "Significant mood swings detected in recent entries"
	rapidCyclingRecommendation   = "Rapid mood changes may indicate need for medical evaluation"
	concerningTextDescription    = "Entry contains concerning language"
	concerningTextRecommendation = "Immediate support recommended - please reach out to someone you trust or a crisis helpline"
	missingEntriesRecommendation = "Consider checking in - isolation can worsen mental health symptoms"
)

// PatternAnalyzer scans mood records for crisis patterns
type PatternAnalyzer struct {
	cfg *config.AnalysisConfig
	now func() time.Time
}

// NewPatternAnalyzer creates an analyzer. A nil cfg uses the defaults and
// a nil clock uses time.Now.
func NewPatternAnalyzer(cfg *config.AnalysisConfig, now func() time.Time) *PatternAnalyzer {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}
	if now == nil {
		now = time.Now
	}
	return &PatternAnalyzer{cfg: cfg, now: now}
}

// AnalyzeMoodPatterns runs the analyzer with default thresholds
func AnalyzeMoodPatterns(records []MoodRecord, now time.Time) []CrisisFlag {
	return NewPatternAnalyzer(nil, func() time.Time { return now }).Analyze(records)
}

// Analyze returns the flags for records. Order is extended_low,
// rapid_cycling, one concerning_text per matching record, then
// missing_entries.
func (a *PatternAnalyzer) Analyze(records []MoodRecord) []CrisisFlag {
	flags := []CrisisFlag{}
	if len(records) == 0 {
		return flags
	}

	sorted := newestFirst(records)

	if f, ok := a.extendedLow(sorted); ok {
		flags = append(flags, f)
	}
	if f, ok := a.rapidCycling(sorted); ok {
		flags = append(flags, f)
	}
	flags = append(flags, a.concerningText(sorted)...)
	if f, ok := a.missingEntries(sorted); ok {
		flags = append(flags, f)
	}

	return flags
}

func (a *PatternAnalyzer) extendedLow(sorted []MoodRecord) (CrisisFlag, bool) {
	window := head(sorted, a.cfg.ExtendedLowWindow)

	var low []MoodRecord
	for _, r := range window {
		if r.Mood <= a.cfg.LowMoodMax {
			low = append(low, r)
		}
	}
	if len(low) < a.cfg.ExtendedLowMinCount {
		return CrisisFlag{}, false
	}

	severity := SeverityMedium
	if len(low) >= a.cfg.ExtendedLowHighCount {
		severity = SeverityHigh
	}

	return CrisisFlag{
		Type:            FlagExtendedLow,
		Severity:        severity,
		Description:     fmt.Sprintf("%d out of last %d entries show very low mood", len(low), len(window)),
		Recommendation:  extendedLowRecommendation,
		AffectedRecords: low,
	}, true
}

func (a *PatternAnalyzer) rapidCycling(sorted []MoodRecord) (CrisisFlag, bool) {
	n := a.cfg.RapidCyclingWindow
	if len(sorted) < n {
		return CrisisFlag{}, false
	}
	window := sorted[:n]

	var total float64
	for i := 1; i < len(window); i++ {
		total += math.Abs(float64(window[i].Mood - window[i-1].Mood))
	}
	avg := total / float64(len(window)-1)

	keyword := false
	for _, r := range window {
		if containsAnyKeyword(r.Reflection, rapidCyclingKeywords) {
			keyword = true
			break
		}
	}

	if avg <= a.cfg.RapidCyclingDelta && !keyword {
		return CrisisFlag{}, false
	}

	severity := SeverityMedium
	if avg > a.cfg.RapidCyclingHighDelta {
		severity = SeverityHigh
	}

	affected := make([]MoodRecord, len(window))
	copy(affected, window)

	return CrisisFlag{
		Type:            FlagRapidCycling,
		Severity:        severity,
		Description:     rapidCyclingDescription,
		Recommendation:  rapidCyclingRecommendation,
		AffectedRecords: affected,
	}, true
}

func (a *PatternAnalyzer) concerningText(sorted []MoodRecord) []CrisisFlag {
	var flags []CrisisFlag
	for _, r := range head(sorted, a.cfg.ConcerningTextWindow) {
		matched := matchKeywords(r.Reflection, concerningKeywords)
		if len(matched) == 0 {
			continue
		}

		severity := SeverityLow
		switch {
		case isHighRisk(matched):
			severity = SeverityHigh
		case len(matched) > a.cfg.ConcerningTextMediumAbove:
			severity = SeverityMedium
		}

		flags = append(flags, CrisisFlag{
			Type:            FlagConcerningText,
			Severity:        severity,
			Description:     concerningTextDescription,
			Recommendation:  concerningTextRecommendation,
			AffectedRecords: []MoodRecord{r},
		})
	}
	return flags
}

func (a *PatternAnalyzer) missingEntries(sorted []MoodRecord) (CrisisFlag, bool) {
	return a.MissingSince(sorted[0].CreatedAt)
}

// MissingSince is the missing_entries check on its own, for callers whose
// record window no longer reaches the newest entry
func (a *PatternAnalyzer) MissingSince(latest time.Time) (CrisisFlag, bool) {
	days := DaysSince(latest, a.now())
	if days <= a.cfg.MissingEntriesDays {
		return CrisisFlag{}, false
	}

	severity := SeverityLow
	if days > a.cfg.MissingEntriesMediumDays {
		severity = SeverityMedium
	}

	return CrisisFlag{
		Type:           FlagMissingEntries,
		Severity:       severity,
		Description:    fmt.Sprintf("No mood entries for %d days", days),
		Recommendation: missingEntriesRecommendation,
	}, true
}

// DaysSince returns whole elapsed days between then and now, never negative
func DaysSince(then, now time.Time) int {
	d := now.Sub(then)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
