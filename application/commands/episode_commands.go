package commands

import (
	"symptocare-backend/domain/core/entities"
	"symptocare-backend/pkg/utils"
)

// CreateEpisodeCommand logs a new episode. Field rules live on the entity.
type CreateEpisodeCommand struct {
	UserID  string `validate:"required"`
	Episode entities.EpisodeInput
}

// Validate implements bus.Command
func (c CreateEpisodeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// UpdateEpisodeCommand replaces the editable fields of an episode
type UpdateEpisodeCommand struct {
	UserID    string `validate:"required"`
	EpisodeID string `validate:"required"`
	Episode   entities.EpisodeInput
}

// Validate implements bus.Command
func (c UpdateEpisodeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DeleteEpisodeCommand removes an episode
type DeleteEpisodeCommand struct {
	UserID    string `validate:"required"`
	EpisodeID string `validate:"required"`
}

// Validate implements bus.Command
func (c DeleteEpisodeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// SaveSafetyPlanCommand creates or replaces the user's safety plan
type SaveSafetyPlanCommand struct {
	UserID string `validate:"required"`
	Plan   entities.SafetyPlanContent
}

// Validate implements bus.Command
func (c SaveSafetyPlanCommand) Validate() error {
	return utils.ValidateStruct(c)
}
