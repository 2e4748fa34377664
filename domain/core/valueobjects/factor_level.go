package valueobjects

import (
	"fmt"

	pkgerrors "symptocare-backend/pkg/errors"
)

// FactorLevel is a 1-5 score used for sleep quality, energy and
// social interaction
type FactorLevel int

const (
	MinFactorLevel FactorLevel = 1
	MaxFactorLevel FactorLevel = 5
)

// Factor names the wellness factor a FactorLevel measures
type Factor string

const (
	FactorSleepQuality Factor = "sleep_quality"
	FactorEnergy       Factor = "energy_level"
	FactorSocial       Factor = "social_interaction"
)

var factorLabels = map[Factor][5]string{
	FactorSleepQuality: {"Terrible", "Poor", "Fair", "Good", "Excellent"},
	FactorEnergy:       {"Exhausted", "Low", "Moderate", "High", "Very High"},
	FactorSocial:       {"Complete isolation", "Minimal contact", "Some interaction", "Good social contact", "Very social/active"},
}

// NewFactorLevel validates a raw factor score
func NewFactorLevel(factor Factor, v int) (FactorLevel, error) {
	l := FactorLevel(v)
	if l < MinFactorLevel || l > MaxFactorLevel {
		return 0, pkgerrors.NewValidationError(
			fmt.Sprintf("%s must be between %d and %d", factor, MinFactorLevel, MaxFactorLevel))
	}
	return l, nil
}

// Label returns the human label of a level for the given factor
func (l FactorLevel) Label(factor Factor) string {
	labels, ok := factorLabels[factor]
	if !ok || l < MinFactorLevel || l > MaxFactorLevel {
		return "Unknown"
	}
	return labels[l-1]
}
