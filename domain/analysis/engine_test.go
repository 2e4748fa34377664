package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symptocare-backend/domain/config"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestVolatility(t *testing.T) {
	t.Run("Should be zero for a flat series", func(t *testing.T) {
		assert.Equal(t, 0.0, Volatility([]float64{5, 5, 5, 5}))
	})

	t.Run("Should measure successive differences", func(t *testing.T) {
		assert.InDelta(t, 7.0, Volatility([]float64{1, 8, 1, 8}), 1e-9)
	})

	t.Run("Should be zero for fewer than two values", func(t *testing.T) {
		assert.Equal(t, 0.0, Volatility(nil))
		assert.Equal(t, 0.0, Volatility([]float64{3}))
	})
}

func TestCalculateStability(t *testing.T) {
	t.Run("Should return nil with fewer than two records", func(t *testing.T) {
		assert.Nil(t, CalculateStability(nil, nil))
		assert.Nil(t, CalculateStability(daily(4), nil))
	})

	t.Run("Should compute mean range and volatility chronologically", func(t *testing.T) {
		records := daily(1, 8, 1, 8)
		// shuffle input order; the engine sorts internally
		records[0], records[3] = records[3], records[0]

		m := CalculateStability(records, nil)
		require.NotNil(t, m)
		assert.InDelta(t, 4.5, m.AverageMood, 1e-9)
		assert.Equal(t, 7, m.MoodRange)
		assert.InDelta(t, 7.0, m.VolatilityScore, 1e-9)
	})

	t.Run("Should track longest low and high runs with mid values resetting", func(t *testing.T) {
		m := CalculateStability(daily(1, 2, 2, 3, 4, 5, 1, 6, 7, 8), nil)
		require.NotNil(t, m)
		assert.Equal(t, 3, m.ConsecutiveLowDays)
		assert.Equal(t, 3, m.ConsecutiveHighDays)
	})

	t.Run("Should report improving when the older half is more volatile", func(t *testing.T) {
		m := CalculateStability(daily(1, 8, 1, 8, 5, 5, 5, 5), nil)
		require.NotNil(t, m)
		assert.Equal(t, TrendImproving, m.StabilityTrend)
	})

	t.Run("Should report declining when the newer half is more volatile", func(t *testing.T) {
		m := CalculateStability(daily(5, 5, 5, 5, 1, 8, 1, 8), nil)
		require.NotNil(t, m)
		assert.Equal(t, TrendDeclining, m.StabilityTrend)
	})

	t.Run("Should report stable for similar halves", func(t *testing.T) {
		m := CalculateStability(daily(4, 5, 4, 5, 4, 5), nil)
		require.NotNil(t, m)
		assert.Equal(t, TrendStable, m.StabilityTrend)
	})

	t.Run("Should place the middle record of an odd series in the second half", func(t *testing.T) {
		// halves [5,5] and [9,1,1]: 0 vs sqrt(64/2). Splitting as
		// [5,5,9] and [1,1] would have read as improving.
		m := CalculateStability(daily(5, 5, 9, 1, 1), nil)
		require.NotNil(t, m)
		assert.Equal(t, TrendDeclining, m.StabilityTrend)

		m = CalculateStability(daily(1, 9, 5, 5, 5), nil)
		require.NotNil(t, m)
		// halves [1,9] and [5,5,5]: 8 vs 0
		assert.Equal(t, TrendImproving, m.StabilityTrend)
	})
}

func TestPearson(t *testing.T) {
	t.Run("Should be close to one for a linear relation", func(t *testing.T) {
		assert.InDelta(t, 1.0, Pearson([]float64{4, 6, 8}, []float64{2, 5, 8}), 1e-9)
	})

	t.Run("Should be exactly zero for a constant series", func(t *testing.T) {
		assert.Equal(t, 0.0, Pearson([]float64{5, 5, 5}, []float64{2, 5, 8}))
	})

	t.Run("Should be zero for fewer than two pairs", func(t *testing.T) {
		assert.Equal(t, 0.0, Pearson([]float64{1}, []float64{1}))
	})

	t.Run("Should be negative for an inverse relation", func(t *testing.T) {
		assert.InDelta(t, -1.0, Pearson([]float64{1, 2, 3}, []float64{6, 4, 2}), 1e-9)
	})
}

func TestCalculateCorrelations(t *testing.T) {
	t.Run("Should return nil with fewer than three records", func(t *testing.T) {
		assert.Nil(t, CalculateCorrelations(daily(1, 2), nil))
	})

	t.Run("Should correlate sleep with mood", func(t *testing.T) {
		records := daily(2, 5, 8)
		for i, h := range []float64{4, 6, 8} {
			records[i].SleepHours = floatPtr(h)
		}

		c := CalculateCorrelations(records, nil)
		require.NotNil(t, c)
		assert.InDelta(t, 1.0, c.SleepMoodR, 1e-9)
		assert.Equal(t, 0.0, c.EnergyMoodR)
		assert.Equal(t, 0.0, c.SocialMoodR)
	})

	t.Run("Should give zero for constant sleep", func(t *testing.T) {
		records := daily(2, 5, 8)
		for i := range records {
			records[i].SleepHours = floatPtr(5)
		}

		c := CalculateCorrelations(records, nil)
		require.NotNil(t, c)
		assert.Equal(t, 0.0, c.SleepMoodR)
	})

	t.Run("Should skip records without the factor", func(t *testing.T) {
		records := daily(2, 5, 1, 8)
		records[0].EnergyLevel = intPtr(1)
		records[1].EnergyLevel = intPtr(3)
		records[3].EnergyLevel = intPtr(5)

		c := CalculateCorrelations(records, nil)
		require.NotNil(t, c)
		assert.Greater(t, c.EnergyMoodR, 0.9)
		assert.False(t, math.IsNaN(c.EnergyMoodR))
	})

	t.Run("Should compute compliance over known answers", func(t *testing.T) {
		records := daily(5, 5, 5, 5)
		records[0].MedicationTaken = boolPtr(true)
		records[1].MedicationTaken = boolPtr(false)
		records[3].MedicationTaken = boolPtr(true)

		c := CalculateCorrelations(records, nil)
		require.NotNil(t, c)
		assert.InDelta(t, 2.0/3.0, c.MedicationComplianceRate, 1e-9)
	})

	t.Run("Should give zero compliance with no known answers", func(t *testing.T) {
		c := CalculateCorrelations(daily(5, 5, 5), nil)
		require.NotNil(t, c)
		assert.Equal(t, 0.0, c.MedicationComplianceRate)
	})
}

func TestDetectEpisodes(t *testing.T) {
	withEnergy := func(records []MoodRecord, energy ...int) []MoodRecord {
		for i, e := range energy {
			if e > 0 {
				records[i].EnergyLevel = intPtr(e)
			}
		}
		return records
	}

	t.Run("Should split depressive and manic runs around a neutral record", func(t *testing.T) {
		records := withEnergy(daily(1, 2, 1, 3, 5, 4), 1, 2, 1, 3, 5, 4)

		episodes := DetectEpisodes(records, nil)

		require.Len(t, episodes, 2)
		assert.Equal(t, EpisodeDepressive, episodes[0].Type)
		assert.Equal(t, records[0].CreatedAt, episodes[0].StartDate)
		assert.Equal(t, records[2].CreatedAt, episodes[0].EndDate)
		assert.Len(t, episodes[0].Entries, 3)
		assert.Equal(t, EpisodeModerate, episodes[0].Severity)

		assert.Equal(t, EpisodeManic, episodes[1].Type)
		assert.Equal(t, records[4].CreatedAt, episodes[1].StartDate)
		assert.Equal(t, records[5].CreatedAt, episodes[1].EndDate)
		assert.Len(t, episodes[1].Entries, 2)
		assert.Equal(t, EpisodeMild, episodes[1].Severity)
	})

	t.Run("Should close on a direct switch of leaning", func(t *testing.T) {
		records := withEnergy(daily(1, 5), 1, 5)

		episodes := DetectEpisodes(records, nil)

		require.Len(t, episodes, 2)
		assert.Equal(t, EpisodeDepressive, episodes[0].Type)
		assert.Equal(t, EpisodeManic, episodes[1].Type)
	})

	t.Run("Should count missing energy as low", func(t *testing.T) {
		// Arrange
		records := withEnergy(daily(1, 1, 1), 1, 0, 1)

		// Act
		episodes := DetectEpisodes(records, nil)

		// Assert
		require.Len(t, episodes, 1)
		assert.Equal(t, EpisodeDepressive, episodes[0].Type)
		assert.Len(t, episodes[0].Entries, 3)
	})

	t.Run("Should never infer mania without an energy reading", func(t *testing.T) {
		records := daily(5, 5, 5)

		episodes := DetectEpisodes(records, nil)

		assert.Empty(t, episodes)
	})

	t.Run("Should grade long runs as severe", func(t *testing.T) {
		records := withEnergy(daily(1, 1, 1, 1, 1, 1, 1), 1, 1, 1, 1, 1, 1, 1)

		episodes := DetectEpisodes(records, nil)

		require.Len(t, episodes, 1)
		assert.Equal(t, EpisodeSevere, episodes[0].Severity)
	})

	t.Run("Should honor the eight point scale", func(t *testing.T) {
		cfg := config.DefaultAnalysisConfig()
		cfg.ApplyEpisodeScale(config.EpisodeScaleEightPoint)
		records := withEnergy(daily(3, 5, 6), 2, 5, 5)

		episodes := DetectEpisodes(records, cfg)

		require.Len(t, episodes, 2)
		assert.Equal(t, EpisodeDepressive, episodes[0].Type)
		assert.Equal(t, EpisodeManic, episodes[1].Type)
		assert.Len(t, episodes[1].Entries, 1)
	})

	t.Run("Should return an empty list for no records", func(t *testing.T) {
		episodes := DetectEpisodes(nil, nil)
		require.NotNil(t, episodes)
		assert.Empty(t, episodes)
	})
}

func TestTopTriggers(t *testing.T) {
	t.Run("Should tally and rank triggers", func(t *testing.T) {
		records := []MoodRecord{
			{Triggers: []string{"Work stress"}},
			{Triggers: []string{"Work stress", "Sleep disruption"}},
		}

		assert.Equal(t, []TriggerCount{
			{Trigger: "Work stress", Count: 2},
			{Trigger: "Sleep disruption", Count: 1},
		}, TopTriggers(records, 5))
	})

	t.Run("Should keep first-encounter order on ties and cap the result", func(t *testing.T) {
		records := []MoodRecord{
			{Triggers: []string{"a", "b", "c", "d", "e", "f"}},
			{Triggers: []string{"f"}},
		}

		top := TopTriggers(records, 5)
		require.Len(t, top, 5)
		assert.Equal(t, "f", top[0].Trigger)
		assert.Equal(t, []string{"a", "b", "c", "d"}, []string{top[1].Trigger, top[2].Trigger, top[3].Trigger, top[4].Trigger})
	})

	t.Run("Should be case sensitive", func(t *testing.T) {
		top := TopTriggers([]MoodRecord{{Triggers: []string{"Travel", "travel"}}}, 5)
		assert.Len(t, top, 2)
	})
}

func TestCheckInStreak(t *testing.T) {
	at := func(daysAgo int) MoodRecord {
		return MoodRecord{Mood: 5, CreatedAt: testNow.AddDate(0, 0, -daysAgo)}
	}

	t.Run("Should count consecutive days ending today", func(t *testing.T) {
		records := []MoodRecord{at(0), at(0), at(1), at(2), at(4)}
		assert.Equal(t, 3, CheckInStreak(records, testNow, time.UTC))
	})

	t.Run("Should start from yesterday when today is empty", func(t *testing.T) {
		records := []MoodRecord{at(1), at(2)}
		assert.Equal(t, 2, CheckInStreak(records, testNow, time.UTC))
	})

	t.Run("Should be zero when neither today nor yesterday has an entry", func(t *testing.T) {
		assert.Equal(t, 0, CheckInStreak([]MoodRecord{at(2), at(3)}, testNow, time.UTC))
		assert.Equal(t, 0, CheckInStreak(nil, testNow, time.UTC))
	})

	t.Run("Should bucket days in the given location", func(t *testing.T) {
		loc := time.FixedZone("UTC-10", -10*3600)
		// 12:00 UTC is 02:00 local on the same date; 08:00 UTC is the previous local day
		records := []MoodRecord{
			{CreatedAt: testNow},
			{CreatedAt: time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)},
		}
		assert.Equal(t, 2, CheckInStreak(records, testNow, loc))
		assert.Equal(t, 1, CheckInStreak(records, testNow, time.UTC))
	})
}

func TestAlertPolicy_Apply(t *testing.T) {
	policy := NewAlertPolicy(14)
	analyzerFlag := CrisisFlag{Type: FlagMissingEntries, Severity: SeverityLow}
	other := CrisisFlag{Type: FlagExtendedLow, Severity: SeverityMedium}

	t.Run("Should replace the analyzer flag and report high with no entries", func(t *testing.T) {
		out := policy.Apply([]CrisisFlag{analyzerFlag, other}, time.Time{}, false, testNow)

		require.Len(t, out, 2)
		assert.Equal(t, other, out[0])
		assert.Equal(t, SeverityHigh, out[1].Severity)
		assert.Equal(t, "No mood entries yet.", out[1].Description)
	})

	t.Run("Should drop the flag below the threshold", func(t *testing.T) {
		out := policy.Apply([]CrisisFlag{analyzerFlag}, testNow.AddDate(0, 0, -13), true, testNow)
		assert.Empty(t, out)
	})

	t.Run("Should report medium at the threshold", func(t *testing.T) {
		out := policy.Apply(nil, testNow.AddDate(0, 0, -14), true, testNow)
		require.Len(t, out, 1)
		assert.Equal(t, SeverityMedium, out[0].Severity)
		assert.Equal(t, "No mood entries for 14 days.", out[0].Description)
	})

	t.Run("Should report high at twice the threshold", func(t *testing.T) {
		out := policy.Apply(nil, testNow.AddDate(0, 0, -28), true, testNow)
		require.Len(t, out, 1)
		assert.Equal(t, SeverityHigh, out[0].Severity)
	})

	t.Run("Should use the singular for one day", func(t *testing.T) {
		out := NewAlertPolicy(1).Apply(nil, testNow.AddDate(0, 0, -1), true, testNow)
		require.Len(t, out, 1)
		assert.Equal(t, "No mood entries for 1 day.", out[0].Description)
	})
}

func TestWithoutTypes(t *testing.T) {
	flags := []CrisisFlag{{Type: FlagExtendedLow}, {Type: FlagConcerningText}, {Type: FlagConcerningText}}

	out := WithoutTypes(flags, FlagConcerningText)

	require.Len(t, out, 1)
	assert.Equal(t, FlagExtendedLow, out[0].Type)
	assert.Len(t, flags, 3)
}

func TestLatestOf(t *testing.T) {
	_, ok := LatestOf(nil, nil)
	assert.False(t, ok)

	latest, ok := LatestOf(daily(1, 2), []MoodRecord{{CreatedAt: testNow.Add(time.Hour)}})
	require.True(t, ok)
	assert.Equal(t, testNow.Add(time.Hour), latest)
}

func TestClinicalAlerts(t *testing.T) {
	t.Run("Should raise low period volatility and compliance alerts", func(t *testing.T) {
		stability := &StabilityMetrics{ConsecutiveLowDays: 6, VolatilityScore: 3}
		correlations := &CorrelationAnalysis{MedicationComplianceRate: 0.5}

		alerts := ClinicalAlerts(stability, correlations, true, nil)

		require.Len(t, alerts, 3)
		assert.Equal(t, AlertExtendedLowPeriod, alerts[0].Kind)
		assert.Equal(t, "Extended low mood period: 6 consecutive days", alerts[0].Title)
		assert.Equal(t, AlertHighVolatility, alerts[1].Kind)
		assert.Equal(t, "Low medication compliance: 50%", alerts[2].Title)
	})

	t.Run("Should skip compliance without medication data", func(t *testing.T) {
		alerts := ClinicalAlerts(nil, &CorrelationAnalysis{}, false, nil)
		assert.Empty(t, alerts)
	})

	t.Run("Should praise a stable pattern", func(t *testing.T) {
		alerts := ClinicalAlerts(&StabilityMetrics{ConsecutiveLowDays: 1, VolatilityScore: 0.5}, nil, false, nil)

		require.Len(t, alerts, 1)
		assert.Equal(t, AlertStablePattern, alerts[0].Kind)
		assert.True(t, alerts[0].Positive)
	})
}

func TestBuildDashboard(t *testing.T) {
	records := daily(5, 5, 6)
	records[0].Triggers = []string{"Travel"}

	d := BuildDashboard(records, 7, nil)

	assert.Equal(t, 7, d.Days)
	assert.Equal(t, 3, d.EntryCount)
	require.NotNil(t, d.Stability)
	require.NotNil(t, d.Correlations)
	assert.Empty(t, d.InferredEpisodes)
	assert.Equal(t, []TriggerCount{{Trigger: "Travel", Count: 1}}, d.TopTriggers)
	require.Len(t, d.ClinicalAlerts, 1)
	assert.Equal(t, AlertStablePattern, d.ClinicalAlerts[0].Kind)
}
