package commands

import (
	"symptocare-backend/domain/core/entities"
	"symptocare-backend/pkg/utils"
)

// RecordMoodEntryCommand records one enhanced check-in
type RecordMoodEntryCommand struct {
	UserID            string   `json:"-" validate:"required"`
	Mood              int      `json:"mood" validate:"min=1,max=8"`
	MoodEmoji         string   `json:"mood_emoji" validate:"max=16"`
	Reflection        string   `json:"reflection"`
	SleepHours        *float64 `json:"sleep_hours"`
	SleepQuality      *int     `json:"sleep_quality" validate:"omitempty,min=1,max=5"`
	EnergyLevel       *int     `json:"energy_level" validate:"omitempty,min=1,max=5"`
	SocialInteraction *int     `json:"social_interaction" validate:"omitempty,min=1,max=5"`
	MedicationTaken   *bool    `json:"medication_taken"`
	Triggers          []string `json:"triggers"`
}

// Validate checks the shape of the command. Reflection length and trigger
// limits depend on the analysis config and are checked by the entity.
func (c RecordMoodEntryCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// Input converts the command into entity input
func (c RecordMoodEntryCommand) Input() entities.MoodEntryInput {
	return entities.MoodEntryInput{
		Mood:              c.Mood,
		Emoji:             c.MoodEmoji,
		Reflection:        c.Reflection,
		SleepHours:        c.SleepHours,
		SleepQuality:      c.SleepQuality,
		EnergyLevel:       c.EnergyLevel,
		SocialInteraction: c.SocialInteraction,
		MedicationTaken:   c.MedicationTaken,
		Triggers:          c.Triggers,
	}
}
