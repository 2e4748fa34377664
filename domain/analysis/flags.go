package analysis

import "fmt"

// FlagType categorizes a CrisisFlag
type FlagType string

const (
	FlagExtendedLow    FlagType = "extended_low"
	FlagRapidCycling   FlagType = "rapid_cycling"
	FlagConcerningText FlagType = "concerning_text"
	FlagMissingEntries FlagType = "missing_entries"
)

// ParseFlagType converts a wire value into a FlagType
func ParseFlagType(s string) (FlagType, error) {
	switch t := FlagType(s); t {
	case FlagExtendedLow, FlagRapidCycling, FlagConcerningText, FlagMissingEntries:
		return t, nil
	default:
		return "", fmt.Errorf("unknown flag type %q", s)
	}
}

// Severity ranks a flag or an episode
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities for callers that sort or filter; unknown is 0
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

// CrisisFlag is a categorized warning produced by the analyzer
type CrisisFlag struct {
	Type            FlagType     `json:"type"`
	Severity        Severity     `json:"severity"`
	Description     string       `json:"description"`
	Recommendation  string       `json:"recommendation"`
	AffectedRecords []MoodRecord `json:"entries_affected,omitempty"`
}

// HasHighSeverity reports whether any flag is high severity. Presentation
// uses this to decide whether to show emergency resources.
func HasHighSeverity(flags []CrisisFlag) bool {
	for _, f := range flags {
		if f.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// WithoutTypes drops flags whose type is in dismissed. The input is
// not modified.
func WithoutTypes(flags []CrisisFlag, dismissed ...FlagType) []CrisisFlag {
	if len(dismissed) == 0 {
		out := make([]CrisisFlag, len(flags))
		copy(out, flags)
		return out
	}
	skip := make(map[FlagType]struct{}, len(dismissed))
	for _, t := range dismissed {
		skip[t] = struct{}{}
	}
	out := make([]CrisisFlag, 0, len(flags))
	for _, f := range flags {
		if _, ok := skip[f.Type]; !ok {
			out = append(out, f)
		}
	}
	return out
}
