package queries

import (
	"symptocare-backend/domain/analysis"
	pkgerrors "symptocare-backend/pkg/errors"
	"symptocare-backend/pkg/utils"
)

// ListMoodEntriesQuery lists a user's enhanced entries for a window
type ListMoodEntriesQuery struct {
	UserID string `validate:"required"`
	Days   int    `validate:"min=1,max=365"`
}

func (q ListMoodEntriesQuery) Validate() error { return utils.ValidateStruct(q) }

// GetCrisisFlagsQuery runs the pattern analyzer over the flag window
type GetCrisisFlagsQuery struct {
	UserID string `validate:"required"`
}

func (q GetCrisisFlagsQuery) Validate() error { return utils.ValidateStruct(q) }

// GetWellnessAlertsQuery returns the alert-banner flags minus dismissed types
type GetWellnessAlertsQuery struct {
	UserID    string `validate:"required"`
	Dismissed []analysis.FlagType
}

func (q GetWellnessAlertsQuery) Validate() error {
	if err := utils.ValidateStruct(q); err != nil {
		return err
	}
	for _, t := range q.Dismissed {
		if _, err := analysis.ParseFlagType(string(t)); err != nil {
			return pkgerrors.ErrUnknownFlagType.Clone().WithDetail("type", string(t))
		}
	}
	return nil
}

// GetStabilityQuery computes stability metrics for a window
type GetStabilityQuery struct {
	UserID string `validate:"required"`
	Days   int    `validate:"min=1,max=365"`
}

func (q GetStabilityQuery) Validate() error { return utils.ValidateStruct(q) }

// GetCorrelationsQuery computes factor correlations for a window
type GetCorrelationsQuery struct {
	UserID string `validate:"required"`
	Days   int    `validate:"min=1,max=365"`
}

func (q GetCorrelationsQuery) Validate() error { return utils.ValidateStruct(q) }

// GetInferredEpisodesQuery infers episodes for a window
type GetInferredEpisodesQuery struct {
	UserID string `validate:"required"`
	Days   int    `validate:"min=1,max=365"`
}

func (q GetInferredEpisodesQuery) Validate() error { return utils.ValidateStruct(q) }

// GetTopTriggersQuery tallies triggers for a window
type GetTopTriggersQuery struct {
	UserID string `validate:"required"`
	Days   int    `validate:"min=1,max=365"`
}

func (q GetTopTriggersQuery) Validate() error { return utils.ValidateStruct(q) }

// GetStreakQuery counts consecutive check-in days
type GetStreakQuery struct {
	UserID string `validate:"required"`
}

func (q GetStreakQuery) Validate() error { return utils.ValidateStruct(q) }

// GetDashboardQuery bundles the clinical metrics for one of the allowed
// ranges. The range is checked against the live config by the handler.
type GetDashboardQuery struct {
	UserID string `validate:"required"`
	Days   int    `validate:"min=1"`
}

func (q GetDashboardQuery) Validate() error { return utils.ValidateStruct(q) }

// ListEpisodesQuery pages through a user's logged episodes
type ListEpisodesQuery struct {
	UserID   string `validate:"required"`
	Page     int    `validate:"min=1"`
	PageSize int    `validate:"min=1,max=100"`
}

func (q ListEpisodesQuery) Validate() error { return utils.ValidateStruct(q) }

// GetEpisodeQuery loads one logged episode
type GetEpisodeQuery struct {
	UserID    string `validate:"required"`
	EpisodeID string `validate:"required"`
}

func (q GetEpisodeQuery) Validate() error { return utils.ValidateStruct(q) }

// GetSafetyPlanQuery loads the user's safety plan, or an empty one
type GetSafetyPlanQuery struct {
	UserID string `validate:"required"`
}

func (q GetSafetyPlanQuery) Validate() error { return utils.ValidateStruct(q) }
