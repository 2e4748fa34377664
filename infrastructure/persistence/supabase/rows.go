package supabase

import (
	"encoding/json"
	"fmt"
	"time"

	"symptocare-backend/domain/analysis"
	"symptocare-backend/domain/core/entities"
	"symptocare-backend/pkg/utils"
)

// timestamp accepts both timestamptz and plain date/timestamp columns
type timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05.999999",
	"2006-01-02",
}

func newTimestamp(t time.Time) timestamp { return timestamp{Time: t.UTC()} }

func (t *timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", raw)
}

func (t timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// storageID reads uuid and integer keys alike
type storageID string

func (id *storageID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = storageID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = storageID(n.String())
	return nil
}

// moodRow is a row of enhanced_mood_entries
type moodRow struct {
	ID                storageID `json:"id"`
	UserID            string    `json:"user_id"`
	Mood              int       `json:"mood"`
	MoodEmoji         string    `json:"mood_emoji"`
	Reflection        *string   `json:"reflection"`
	SleepHours        *float64  `json:"sleep_hours"`
	SleepQuality      *int      `json:"sleep_quality"`
	EnergyLevel       *int      `json:"energy_level"`
	SocialInteraction *int      `json:"social_interaction"`
	MedicationTaken   *bool     `json:"medication_taken"`
	Triggers          []string  `json:"triggers"`
	CreatedAt         timestamp `json:"created_at"`
}

func moodRowFrom(e *entities.MoodEntry) moodRow {
	row := moodRow{
		ID:                storageID(e.ID().String()),
		UserID:            e.UserID(),
		Mood:              e.Mood().Int(),
		MoodEmoji:         e.Emoji(),
		SleepHours:        e.SleepHours(),
		SleepQuality:      e.SleepQuality(),
		EnergyLevel:       e.EnergyLevel(),
		SocialInteraction: e.SocialInteraction(),
		MedicationTaken:   e.MedicationTaken(),
		Triggers:          e.Triggers(),
		CreatedAt:         newTimestamp(e.CreatedAt()),
	}
	if !e.Reflection().IsEmpty() {
		reflection := e.Reflection().String()
		row.Reflection = &reflection
	}
	if row.Triggers == nil {
		row.Triggers = []string{}
	}
	return row
}

func (r moodRow) toEntity() (*entities.MoodEntry, error) {
	return entities.ReconstructMoodEntry(string(r.ID), r.UserID, entities.SourceEnhanced, r.MoodEmoji, analysis.MoodRecord{
		ID:                string(r.ID),
		Mood:              r.Mood,
		CreatedAt:         r.CreatedAt.Time,
		Reflection:        utils.Deref(r.Reflection),
		SleepHours:        r.SleepHours,
		SleepQuality:      r.SleepQuality,
		EnergyLevel:       r.EnergyLevel,
		SocialInteraction: r.SocialInteraction,
		MedicationTaken:   r.MedicationTaken,
		Triggers:          r.Triggers,
	})
}

// legacyMoodRow is a row of the older mood_entries table
type legacyMoodRow struct {
	ID         storageID `json:"id"`
	UserID     string    `json:"user_id"`
	Mood       int       `json:"mood"`
	Emoji      string    `json:"emoji"`
	Reflection *string   `json:"reflection"`
	CreatedAt  timestamp `json:"created_at"`
}

func (r legacyMoodRow) toEntity() (*entities.MoodEntry, error) {
	return entities.ReconstructMoodEntry(string(r.ID), r.UserID, entities.SourceLegacy, r.Emoji, analysis.MoodRecord{
		ID:         string(r.ID),
		Mood:       r.Mood,
		CreatedAt:  r.CreatedAt.Time,
		Reflection: utils.Deref(r.Reflection),
	})
}

// episodeRow is a row of episodes. The kind column is named "type".
type episodeRow struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	Type              string     `json:"type"`
	Severity          string     `json:"severity"`
	StartDate         timestamp  `json:"start_date"`
	EndDate           *timestamp `json:"end_date"`
	Symptoms          []string   `json:"symptoms"`
	Triggers          []string   `json:"triggers"`
	Notes             *string    `json:"notes"`
	Hospitalization   bool       `json:"hospitalization"`
	MedicationChanges *string    `json:"medication_changes"`
	CreatedAt         timestamp  `json:"created_at"`
	UpdatedAt         timestamp  `json:"updated_at"`
}

func episodeRowFrom(ep *entities.Episode) episodeRow {
	d := ep.Details()
	row := episodeRow{
		ID:                ep.ID().String(),
		UserID:            ep.UserID(),
		Type:              string(d.Type),
		Severity:          string(d.Severity),
		StartDate:         newTimestamp(d.StartDate),
		Symptoms:          nonNil(d.Symptoms),
		Triggers:          nonNil(d.Triggers),
		Notes:             utils.NilIfEmpty(d.Notes),
		Hospitalization:   d.Hospitalization,
		MedicationChanges: utils.NilIfEmpty(d.MedicationChanges),
		CreatedAt:         newTimestamp(ep.CreatedAt()),
		UpdatedAt:         newTimestamp(ep.UpdatedAt()),
	}
	if d.EndDate != nil {
		end := newTimestamp(*d.EndDate)
		row.EndDate = &end
	}
	return row
}

func (r episodeRow) toEntity() (*entities.Episode, error) {
	in := entities.EpisodeInput{
		Type:              analysis.EpisodeType(r.Type),
		Severity:          analysis.EpisodeSeverity(r.Severity),
		StartDate:         r.StartDate.Time,
		Symptoms:          r.Symptoms,
		Triggers:          r.Triggers,
		Notes:             utils.Deref(r.Notes),
		Hospitalization:   r.Hospitalization,
		MedicationChanges: utils.Deref(r.MedicationChanges),
	}
	if r.EndDate != nil {
		end := r.EndDate.Time
		in.EndDate = &end
	}
	return entities.ReconstructEpisode(r.ID, r.UserID, in, r.CreatedAt.Time, r.UpdatedAt.Time)
}

// safetyPlanRow is a row of safety_plans. Contacts are JSON columns.
type safetyPlanRow struct {
	ID                   string                         `json:"id"`
	UserID               string                         `json:"user_id"`
	WarningSigns         []string                       `json:"warning_signs"`
	CopingStrategies     []string                       `json:"coping_strategies"`
	SupportContacts      []entities.SupportContact      `json:"support_contacts"`
	SafeEnvironmentSteps []string                       `json:"safe_environment_steps"`
	ReasonsToLive        []string                       `json:"reasons_to_live"`
	ProfessionalContacts []entities.ProfessionalContact `json:"professional_contacts"`
	CreatedAt            timestamp                      `json:"created_at"`
	UpdatedAt            timestamp                      `json:"updated_at"`
}

func safetyPlanRowFrom(p *entities.SafetyPlan) safetyPlanRow {
	c := p.Content()
	row := safetyPlanRow{
		ID:                   p.ID().String(),
		UserID:               p.UserID(),
		WarningSigns:         nonNil(c.WarningSigns),
		CopingStrategies:     nonNil(c.CopingStrategies),
		SupportContacts:      c.SupportContacts,
		SafeEnvironmentSteps: nonNil(c.SafeEnvironmentSteps),
		ReasonsToLive:        nonNil(c.ReasonsToLive),
		ProfessionalContacts: c.ProfessionalContacts,
		CreatedAt:            newTimestamp(p.CreatedAt()),
		UpdatedAt:            newTimestamp(p.UpdatedAt()),
	}
	if row.SupportContacts == nil {
		row.SupportContacts = []entities.SupportContact{}
	}
	if row.ProfessionalContacts == nil {
		row.ProfessionalContacts = []entities.ProfessionalContact{}
	}
	return row
}

func (r safetyPlanRow) toEntity() (*entities.SafetyPlan, error) {
	return entities.ReconstructSafetyPlan(r.ID, r.UserID, entities.SafetyPlanContent{
		WarningSigns:         r.WarningSigns,
		CopingStrategies:     r.CopingStrategies,
		SupportContacts:      r.SupportContacts,
		SafeEnvironmentSteps: r.SafeEnvironmentSteps,
		ReasonsToLive:        r.ReasonsToLive,
		ProfessionalContacts: r.ProfessionalContacts,
	}, r.CreatedAt.Time, r.UpdatedAt.Time)
}

type insightRow struct {
	UserID      string    `json:"user_id"`
	InsightType string    `json:"insight_type"`
	Content     string    `json:"content"`
	PeriodStart timestamp `json:"period_start"`
	PeriodEnd   timestamp `json:"period_end"`
	CreatedAt   timestamp `json:"created_at"`
}

type chatMessageRow struct {
	UserID    string    `json:"user_id"`
	ThreadID  string    `json:"thread_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt timestamp `json:"created_at"`
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
