package analysis

import "symptocare-backend/domain/config"

// CorrelationAnalysis pairs each optional factor with mood
type CorrelationAnalysis struct {
	SleepMoodR               float64 `json:"sleep_mood_r"`
	EnergyMoodR              float64 `json:"energy_mood_r"`
	SocialMoodR              float64 `json:"social_mood_r"`
	MedicationComplianceRate float64 `json:"medication_compliance_rate"`
}

// CalculateCorrelations returns nil with fewer than CorrelationMinRecords
// records. Records lacking a factor are left out of that factor's pairs.
func CalculateCorrelations(records []MoodRecord, cfg *config.AnalysisConfig) *CorrelationAnalysis {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}
	if len(records) < cfg.CorrelationMinRecords {
		return nil
	}

	sorted := oldestFirst(records)

	return &CorrelationAnalysis{
		SleepMoodR: pairedPearson(sorted, func(r MoodRecord) (float64, bool) {
			if r.SleepHours == nil {
				return 0, false
			}
			return *r.SleepHours, true
		}),
		EnergyMoodR:              pairedPearson(sorted, intFactor(func(r MoodRecord) *int { return r.EnergyLevel })),
		SocialMoodR:              pairedPearson(sorted, intFactor(func(r MoodRecord) *int { return r.SocialInteraction })),
		MedicationComplianceRate: ComplianceRate(sorted),
	}
}

// ComplianceRate is the share of known medication answers that are true.
// With no known answers it is 0.
func ComplianceRate(records []MoodRecord) float64 {
	var known, taken int
	for _, r := range records {
		if r.MedicationTaken == nil {
			continue
		}
		known++
		if *r.MedicationTaken {
			taken++
		}
	}
	if known == 0 {
		return 0
	}
	return float64(taken) / float64(known)
}

// HasMedicationData reports whether any record carries a medication answer
func HasMedicationData(records []MoodRecord) bool {
	for _, r := range records {
		if r.MedicationTaken != nil {
			return true
		}
	}
	return false
}

type factorFunc func(MoodRecord) (float64, bool)

func intFactor(get func(MoodRecord) *int) factorFunc {
	return func(r MoodRecord) (float64, bool) {
		v := get(r)
		if v == nil {
			return 0, false
		}
		return float64(*v), true
	}
}

func pairedPearson(records []MoodRecord, factor factorFunc) float64 {
	xs := make([]float64, 0, len(records))
	ys := make([]float64, 0, len(records))
	for _, r := range records {
		if x, ok := factor(r); ok {
			xs = append(xs, x)
			ys = append(ys, float64(r.Mood))
		}
	}
	return Pearson(xs, ys)
}
