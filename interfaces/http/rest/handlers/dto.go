package handlers

import (
	"strings"
	"time"

	"symptocare-backend/domain/analysis"
	"symptocare-backend/domain/core/entities"
	pkgerrors "symptocare-backend/pkg/errors"
	"symptocare-backend/pkg/utils"
)

// MoodEntryResponse is the wire form of a stored check-in
type MoodEntryResponse struct {
	ID                string    `json:"id"`
	Mood              int       `json:"mood"`
	MoodLabel         string    `json:"mood_label"`
	MoodEmoji         string    `json:"mood_emoji"`
	Reflection        string    `json:"reflection"`
	SleepHours        *float64  `json:"sleep_hours"`
	SleepQuality      *int      `json:"sleep_quality"`
	EnergyLevel       *int      `json:"energy_level"`
	SocialInteraction *int      `json:"social_interaction"`
	MedicationTaken   *bool     `json:"medication_taken"`
	Triggers          []string  `json:"triggers"`
	Source            string    `json:"source"`
	CreatedAt         time.Time `json:"created_at"`
}

func newMoodEntryResponse(e *entities.MoodEntry) MoodEntryResponse {
	triggers := e.Triggers()
	if triggers == nil {
		triggers = []string{}
	}
	return MoodEntryResponse{
		ID:                e.ID().String(),
		Mood:              e.Mood().Int(),
		MoodLabel:         e.Mood().Label(),
		MoodEmoji:         e.Emoji(),
		Reflection:        e.Reflection().String(),
		SleepHours:        e.SleepHours(),
		SleepQuality:      e.SleepQuality(),
		EnergyLevel:       e.EnergyLevel(),
		SocialInteraction: e.SocialInteraction(),
		MedicationTaken:   e.MedicationTaken(),
		Triggers:          triggers,
		Source:            string(e.Source()),
		CreatedAt:         e.CreatedAt(),
	}
}

func newMoodEntryList(entries []*entities.MoodEntry) []MoodEntryResponse {
	out := make([]MoodEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, newMoodEntryResponse(e))
	}
	return out
}

// EpisodeRequest is the body of POST and PUT /episodes. Dates accept
// YYYY-MM-DD or RFC3339.
type EpisodeRequest struct {
	EpisodeType       string   `json:"episode_type" validate:"required,oneof=manic hypomanic depressive mixed"`
	Severity          string   `json:"severity" validate:"required,oneof=mild moderate severe"`
	StartDate         string   `json:"start_date" validate:"required"`
	EndDate           *string  `json:"end_date"`
	Symptoms          []string `json:"symptoms" validate:"omitempty,max=50,dive,max=200"`
	Triggers          []string `json:"triggers" validate:"omitempty,max=50,dive,max=200"`
	Notes             string   `json:"notes" validate:"max=5000"`
	Hospitalization   bool     `json:"hospitalization"`
	MedicationChanges string   `json:"medication_changes" validate:"max=2000"`
}

// toInput validates the request and converts it to entity input
func (req EpisodeRequest) toInput() (entities.EpisodeInput, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return entities.EpisodeInput{}, err
	}

	start, err := utils.ParseDateOrTime(req.StartDate)
	if err != nil {
		return entities.EpisodeInput{}, fieldError("start_date", err.Error())
	}

	var end *time.Time
	if req.EndDate != nil && strings.TrimSpace(*req.EndDate) != "" {
		t, err := utils.ParseDateOrTime(*req.EndDate)
		if err != nil {
			return entities.EpisodeInput{}, fieldError("end_date", err.Error())
		}
		end = &t
	}

	return entities.EpisodeInput{
		Type:              analysis.EpisodeType(req.EpisodeType),
		Severity:          analysis.EpisodeSeverity(req.Severity),
		StartDate:         start,
		EndDate:           end,
		Symptoms:          req.Symptoms,
		Triggers:          req.Triggers,
		Notes:             req.Notes,
		Hospitalization:   req.Hospitalization,
		MedicationChanges: req.MedicationChanges,
	}, nil
}

// EpisodeResponse is the wire form of a logged episode
type EpisodeResponse struct {
	ID                string    `json:"id"`
	EpisodeType       string    `json:"episode_type"`
	Severity          string    `json:"severity"`
	StartDate         string    `json:"start_date"`
	EndDate           *string   `json:"end_date"`
	Ongoing           bool      `json:"ongoing"`
	Symptoms          []string  `json:"symptoms"`
	Triggers          []string  `json:"triggers"`
	Notes             string    `json:"notes"`
	Hospitalization   bool      `json:"hospitalization"`
	MedicationChanges string    `json:"medication_changes"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func newEpisodeResponse(e *entities.Episode) EpisodeResponse {
	d := e.Details()
	resp := EpisodeResponse{
		ID:                e.ID().String(),
		EpisodeType:       string(d.Type),
		Severity:          string(d.Severity),
		StartDate:         d.StartDate.Format(utils.DateLayout),
		Ongoing:           e.IsOngoing(),
		Symptoms:          orEmpty(d.Symptoms),
		Triggers:          orEmpty(d.Triggers),
		Notes:             d.Notes,
		Hospitalization:   d.Hospitalization,
		MedicationChanges: d.MedicationChanges,
		CreatedAt:         e.CreatedAt(),
		UpdatedAt:         e.UpdatedAt(),
	}
	if d.EndDate != nil {
		end := d.EndDate.Format(utils.DateLayout)
		resp.EndDate = &end
	}
	return resp
}

// SafetyPlanResponse is the wire form of a safety plan. Saved is false for
// the empty plan returned before the user has written one.
type SafetyPlanResponse struct {
	ID        string     `json:"id,omitempty"`
	Saved     bool       `json:"saved"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	entities.SafetyPlanContent
}

func newSafetyPlanResponse(p *entities.SafetyPlan) SafetyPlanResponse {
	content := p.Content()
	content.WarningSigns = orEmpty(content.WarningSigns)
	content.CopingStrategies = orEmpty(content.CopingStrategies)
	content.SafeEnvironmentSteps = orEmpty(content.SafeEnvironmentSteps)
	content.ReasonsToLive = orEmpty(content.ReasonsToLive)
	if content.SupportContacts == nil {
		content.SupportContacts = []entities.SupportContact{}
	}
	if content.ProfessionalContacts == nil {
		content.ProfessionalContacts = []entities.ProfessionalContact{}
	}

	resp := SafetyPlanResponse{Saved: p.IsSaved(), SafetyPlanContent: content}
	if p.IsSaved() {
		resp.ID = p.ID().String()
		updated := p.UpdatedAt()
		resp.UpdatedAt = &updated
	}
	return resp
}

// CrisisFlagsResponse is the body of GET /analytics/flags and /alerts
type CrisisFlagsResponse struct {
	Flags           []analysis.CrisisFlag     `json:"flags"`
	HasHighSeverity bool                      `json:"has_high_severity"`
	CrisisResources []entities.CrisisResource `json:"crisis_resources,omitempty"`
}

func newCrisisFlagsResponse(flags []analysis.CrisisFlag) CrisisFlagsResponse {
	if flags == nil {
		flags = []analysis.CrisisFlag{}
	}
	resp := CrisisFlagsResponse{Flags: flags, HasHighSeverity: analysis.HasHighSeverity(flags)}
	if resp.HasHighSeverity {
		resp.CrisisResources = entities.CrisisResources()
	}
	return resp
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func fieldError(field, message string) error {
	errs := pkgerrors.NewValidationErrors()
	errs.Add(field, message)
	return errs
}
