package analysis

import (
	"fmt"
	"math"

	"symptocare-backend/domain/config"
)

// ClinicalAlertKind names a dashboard alert
type ClinicalAlertKind string

const (
	AlertExtendedLowPeriod       ClinicalAlertKind = "extended_low_period"
	AlertHighVolatility          ClinicalAlertKind = "high_volatility"
	AlertLowMedicationCompliance ClinicalAlertKind = "low_medication_compliance"
	AlertStablePattern           ClinicalAlertKind = "stable_pattern"
)

// ClinicalAlert is a dashboard notice derived from metrics. Positive
// marks encouraging notices.
type ClinicalAlert struct {
	Kind           ClinicalAlertKind `json:"kind"`
	Title          string            `json:"title"`
	Recommendation string            `json:"recommendation"`
	Positive       bool              `json:"positive"`
}

// ClinicalAlerts derives dashboard alerts. Either input may be nil;
// hasMedication says whether any record carried a medication answer.
func ClinicalAlerts(stability *StabilityMetrics, correlations *CorrelationAnalysis, hasMedication bool, cfg *config.AnalysisConfig) []ClinicalAlert {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}

	alerts := []ClinicalAlert{}

	if stability != nil {
		if stability.ConsecutiveLowDays >= cfg.ClinicalLowDays {
			alerts = append(alerts, ClinicalAlert{
				Kind:           AlertExtendedLowPeriod,
				Title:          fmt.Sprintf("Extended low mood period: %d consecutive days", stability.ConsecutiveLowDays),
				Recommendation: "Consider reaching out to your healthcare provider",
			})
		}
		if stability.VolatilityScore > cfg.ClinicalVolatility {
			alerts = append(alerts, ClinicalAlert{
				Kind:           AlertHighVolatility,
				Title:          "High mood volatility detected",
				Recommendation: "Rapid mood changes may benefit from professional evaluation",
			})
		}
	}

	if correlations != nil && hasMedication && correlations.MedicationComplianceRate < cfg.ClinicalComplianceMin {
		alerts = append(alerts, ClinicalAlert{
			Kind:           AlertLowMedicationCompliance,
			Title:          fmt.Sprintf("Low medication compliance: %d%%", int(math.Round(correlations.MedicationComplianceRate*100))),
			Recommendation: "Consistent medication adherence is important for mood stability",
		})
	}

	if stability != nil && stability.ConsecutiveLowDays < cfg.StableLowDaysBelow && stability.VolatilityScore < cfg.StableVolatilityBelow {
		alerts = append(alerts, ClinicalAlert{
			Kind:           AlertStablePattern,
			Title:          "Stable mood pattern",
			Recommendation: "Keep up your current wellness routine",
			Positive:       true,
		})
	}

	return alerts
}

// Dashboard bundles every clinical metric for one window
type Dashboard struct {
	Days             int                  `json:"days"`
	EntryCount       int                  `json:"entry_count"`
	Stability        *StabilityMetrics    `json:"stability"`
	Correlations     *CorrelationAnalysis `json:"correlations"`
	InferredEpisodes []InferredEpisode    `json:"inferred_episodes"`
	TopTriggers      []TriggerCount       `json:"top_triggers"`
	ClinicalAlerts   []ClinicalAlert      `json:"clinical_alerts"`
}

// BuildDashboard runs the stability, correlation, episode and trigger
// computations over one set of records
func BuildDashboard(records []MoodRecord, days int, cfg *config.AnalysisConfig) Dashboard {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}

	stability := CalculateStability(records, cfg)
	correlations := CalculateCorrelations(records, cfg)

	return Dashboard{
		Days:             days,
		EntryCount:       len(records),
		Stability:        stability,
		Correlations:     correlations,
		InferredEpisodes: DetectEpisodes(records, cfg),
		TopTriggers:      TopTriggers(records, cfg.TopTriggersLimit),
		ClinicalAlerts:   ClinicalAlerts(stability, correlations, HasMedicationData(records), cfg),
	}
}
