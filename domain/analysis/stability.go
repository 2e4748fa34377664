package analysis

import "symptocare-backend/domain/config"

// Trend compares volatility between the older and newer halves of a window
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// StabilityMetrics summarizes a window of mood records
type StabilityMetrics struct {
	VolatilityScore     float64 `json:"volatility_score"`
	StabilityTrend      Trend   `json:"stability_trend"`
	AverageMood         float64 `json:"average_mood"`
	MoodRange           int     `json:"mood_range"`
	ConsecutiveLowDays  int     `json:"consecutive_low_days"`
	ConsecutiveHighDays int     `json:"consecutive_high_days"`
}

// CalculateStability computes stability metrics. It returns nil when
// fewer than StabilityMinRecords records are supplied.
//
// For the trend, the chronological series is split at n/2: with an odd
// count the middle record belongs to the second half.
func CalculateStability(records []MoodRecord, cfg *config.AnalysisConfig) *StabilityMetrics {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}
	if len(records) < cfg.StabilityMinRecords || len(records) < 2 {
		return nil
	}

	sorted := oldestFirst(records)
	series := moods(sorted)

	minMood, maxMood := sorted[0].Mood, sorted[0].Mood
	for _, r := range sorted[1:] {
		if r.Mood < minMood {
			minMood = r.Mood
		}
		if r.Mood > maxMood {
			maxMood = r.Mood
		}
	}

	low, high := longestRuns(sorted, cfg.LowMoodMax, cfg.HighMoodMin)

	return &StabilityMetrics{
		VolatilityScore:     Volatility(series),
		StabilityTrend:      trendOf(series, cfg.TrendDelta),
		AverageMood:         mean(series),
		MoodRange:           maxMood - minMood,
		ConsecutiveLowDays:  low,
		ConsecutiveHighDays: high,
	}
}

func trendOf(series []float64, delta float64) Trend {
	mid := len(series) / 2
	first := Volatility(series[:mid])
	second := Volatility(series[mid:])

	switch {
	case first-second > delta:
		return TrendImproving
	case second-first > delta:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// longestRuns returns the longest chronological runs of low and high
// moods. A mood in neither band resets both counters.
func longestRuns(sorted []MoodRecord, lowMax, highMin int) (int, int) {
	var curLow, curHigh, maxLow, maxHigh int
	for _, r := range sorted {
		switch {
		case r.Mood <= lowMax:
			curLow++
			curHigh = 0
		case r.Mood >= highMin:
			curHigh++
			curLow = 0
		default:
			curLow, curHigh = 0, 0
		}
		if curLow > maxLow {
			maxLow = curLow
		}
		if curHigh > maxHigh {
			maxHigh = curHigh
		}
	}
	return maxLow, maxHigh
}
