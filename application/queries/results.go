package queries

import (
	"symptocare-backend/domain/analysis"
	"symptocare-backend/domain/core/entities"
)

// CrisisFlagsResult is the analyzer output for the flag window
type CrisisFlagsResult struct {
	Flags           []analysis.CrisisFlag
	HasHighSeverity bool
}

// StreakResult is the current consecutive-day check-in count
type StreakResult struct {
	Days int
}

// EpisodePage is one page of logged episodes
type EpisodePage struct {
	Items    []*entities.Episode
	Total    int
	Page     int
	PageSize int
}
