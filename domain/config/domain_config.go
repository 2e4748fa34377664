package config

import (
	"fmt"
	"time"
)

// EpisodeScale selects how the episode-inference thresholds are read.
// The stock thresholds (<=2 / >=4) look calibrated for a five-point
// mood scale while entries are recorded on the eight-point scale.
type EpisodeScale string

const (
	EpisodeScaleFivePoint  EpisodeScale = "five_point"
	EpisodeScaleEightPoint EpisodeScale = "eight_point"
)

// AnalysisConfig holds every tunable threshold of the analytics core
type AnalysisConfig struct {
	// Extended low mood
	ExtendedLowWindow    int `yaml:"extended_low_window"`
	LowMoodMax           int `yaml:"low_mood_max"`
	ExtendedLowMinCount  int `yaml:"extended_low_min_count"`
	ExtendedLowHighCount int `yaml:"extended_low_high_count"`

	// Rapid cycling
	RapidCyclingWindow    int     `yaml:"rapid_cycling_window"`
	RapidCyclingDelta     float64 `yaml:"rapid_cycling_delta"`
	RapidCyclingHighDelta float64 `yaml:"rapid_cycling_high_delta"`

	// Concerning text
	ConcerningTextWindow      int `yaml:"concerning_text_window"`
	ConcerningTextMediumAbove int `yaml:"concerning_text_medium_above"`

	// Missing entries, analyzer variant
	MissingEntriesDays       int `yaml:"missing_entries_days"`
	MissingEntriesMediumDays int `yaml:"missing_entries_medium_days"`

	// Missing entries, alert-banner variant
	AlertMissingDaysThreshold int `yaml:"alert_missing_days_threshold"`

	// Stability
	StabilityMinRecords int     `yaml:"stability_min_records"`
	HighMoodMin         int     `yaml:"high_mood_min"`
	TrendDelta          float64 `yaml:"trend_delta"`

	// Correlation
	CorrelationMinRecords int `yaml:"correlation_min_records"`

	// Episode inference
	EpisodeScale           EpisodeScale `yaml:"episode_scale"`
	DepressiveMoodMax      int          `yaml:"depressive_mood_max"`
	DepressiveEnergyMax    int          `yaml:"depressive_energy_max"`
	ManicMoodMin           int          `yaml:"manic_mood_min"`
	ManicEnergyMin         int          `yaml:"manic_energy_min"`
	EpisodeModerateEntries int          `yaml:"episode_moderate_entries"`
	EpisodeSevereEntries   int          `yaml:"episode_severe_entries"`

	// Triggers
	TopTriggersLimit int `yaml:"top_triggers_limit"`

	// Clinical alerts
	ClinicalLowDays       int     `yaml:"clinical_low_days"`
	ClinicalVolatility    float64 `yaml:"clinical_volatility"`
	ClinicalComplianceMin float64 `yaml:"clinical_compliance_min"`
	StableLowDaysBelow    int     `yaml:"stable_low_days_below"`
	StableVolatilityBelow float64 `yaml:"stable_volatility_below"`

	// Query windows
	FlagWindowDays    int   `yaml:"flag_window_days"`
	DefaultRangeDays  int   `yaml:"default_range_days"`
	AllowedRangeDays  []int `yaml:"allowed_range_days"`
	SummaryWindowDays int   `yaml:"summary_window_days"`
	MaxListDays       int   `yaml:"max_list_days"`

	// Entry limits
	MaxReflectionLength int `yaml:"max_reflection_length"`
	MaxTriggers         int `yaml:"max_triggers"`
	MaxTriggerLength    int `yaml:"max_trigger_length"`

	// Calendar used for streak day boundaries
	TimeZone string `yaml:"time_zone"`
}

// DefaultAnalysisConfig returns the stock thresholds
func DefaultAnalysisConfig() *AnalysisConfig {
	cfg := &AnalysisConfig{
		ExtendedLowWindow:    7,
		LowMoodMax:           2,
		ExtendedLowMinCount:  5,
		ExtendedLowHighCount: 6,

		RapidCyclingWindow:    5,
		RapidCyclingDelta:     3,
		RapidCyclingHighDelta: 4,

		ConcerningTextWindow:      10,
		ConcerningTextMediumAbove: 2,

		MissingEntriesDays:       5,
		MissingEntriesMediumDays: 10,

		AlertMissingDaysThreshold: 14,

		StabilityMinRecords: 2,
		HighMoodMin:         4,
		TrendDelta:          0.3,

		CorrelationMinRecords: 3,

		EpisodeModerateEntries: 3,
		EpisodeSevereEntries:   7,

		TopTriggersLimit: 5,

		ClinicalLowDays:       5,
		ClinicalVolatility:    2.5,
		ClinicalComplianceMin: 0.8,
		StableLowDaysBelow:    3,
		StableVolatilityBelow: 1.5,

		FlagWindowDays:    90,
		DefaultRangeDays:  30,
		AllowedRangeDays:  []int{7, 30, 90, 180},
		SummaryWindowDays: 7,
		MaxListDays:       365,

		MaxReflectionLength: 5000,
		MaxTriggers:         20,
		MaxTriggerLength:    50,

		TimeZone: "UTC",
	}
	cfg.ApplyEpisodeScale(EpisodeScaleFivePoint)
	return cfg
}

// ApplyEpisodeScale sets the episode mood/energy thresholds for a scale.
// Energy is always recorded on 1-5, so only the mood cut-offs move.
func (c *AnalysisConfig) ApplyEpisodeScale(scale EpisodeScale) {
	c.EpisodeScale = scale
	c.DepressiveEnergyMax = 2
	c.ManicEnergyMin = 4
	switch scale {
	case EpisodeScaleEightPoint:
		c.DepressiveMoodMax = 3
		c.ManicMoodMin = 6
	default:
		c.EpisodeScale = EpisodeScaleFivePoint
		c.DepressiveMoodMax = 2
		c.ManicMoodMin = 4
	}
}

// Clone returns a deep copy
func (c *AnalysisConfig) Clone() *AnalysisConfig {
	out := *c
	out.AllowedRangeDays = append([]int(nil), c.AllowedRangeDays...)
	return &out
}

// Location resolves TimeZone, falling back to UTC
func (c *AnalysisConfig) Location() *time.Location {
	if c.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsAllowedRange reports whether days is one of the dashboard ranges
func (c *AnalysisConfig) IsAllowedRange(days int) bool {
	for _, d := range c.AllowedRangeDays {
		if d == days {
			return true
		}
	}
	return false
}

// Validate checks if the configuration is valid
func (c *AnalysisConfig) Validate() error {
	positive := map[string]int{
		"extended_low_window":          c.ExtendedLowWindow,
		"rapid_cycling_window":         c.RapidCyclingWindow,
		"concerning_text_window":       c.ConcerningTextWindow,
		"alert_missing_days_threshold": c.AlertMissingDaysThreshold,
		"stability_min_records":        c.StabilityMinRecords,
		"correlation_min_records":      c.CorrelationMinRecords,
		"top_triggers_limit":           c.TopTriggersLimit,
		"flag_window_days":             c.FlagWindowDays,
		"summary_window_days":          c.SummaryWindowDays,
	}
	for name, v := range positive {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}
	if c.RapidCyclingWindow < 2 {
		return fmt.Errorf("rapid_cycling_window must be at least 2, got %d", c.RapidCyclingWindow)
	}
	if c.StabilityMinRecords < 2 {
		return fmt.Errorf("stability_min_records must be at least 2, got %d", c.StabilityMinRecords)
	}
	if c.ExtendedLowHighCount < c.ExtendedLowMinCount {
		return fmt.Errorf("extended_low_high_count (%d) below extended_low_min_count (%d)",
			c.ExtendedLowHighCount, c.ExtendedLowMinCount)
	}
	if c.MissingEntriesMediumDays < c.MissingEntriesDays {
		return fmt.Errorf("missing_entries_medium_days (%d) below missing_entries_days (%d)",
			c.MissingEntriesMediumDays, c.MissingEntriesDays)
	}
	if c.EpisodeSevereEntries < c.EpisodeModerateEntries {
		return fmt.Errorf("episode_severe_entries (%d) below episode_moderate_entries (%d)",
			c.EpisodeSevereEntries, c.EpisodeModerateEntries)
	}
	if c.DefaultRangeDays > 0 && len(c.AllowedRangeDays) > 0 && !c.IsAllowedRange(c.DefaultRangeDays) {
		return fmt.Errorf("default_range_days %d is not an allowed range", c.DefaultRangeDays)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid time_zone %q: %w", c.TimeZone, err)
	}
	return nil
}
