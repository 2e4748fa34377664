package entities

import (
	"fmt"
	"strings"
	"time"

	"symptocare-backend/domain/analysis"
	"symptocare-backend/domain/config"
	"symptocare-backend/domain/core/valueobjects"
	"symptocare-backend/domain/events"
	pkgerrors "symptocare-backend/pkg/errors"
)

// EntrySource tells which table an entry came from
type EntrySource string

const (
	SourceEnhanced EntrySource = "enhanced"
	SourceLegacy   EntrySource = "legacy"
)

// MoodEntryInput carries the user-supplied fields of a check-in
type MoodEntryInput struct {
	Mood              int
	Emoji             string
	Reflection        string
	SleepHours        *float64
	SleepQuality      *int
	EnergyLevel       *int
	SocialInteraction *int
	MedicationTaken   *bool
	Triggers          []string
}

// MoodEntry is one persisted daily check-in
type MoodEntry struct {
	id                valueobjects.RecordID
	userID            string
	mood              valueobjects.MoodLevel
	emoji             string
	reflection        valueobjects.Reflection
	sleepHours        *float64
	sleepQuality      *int
	energyLevel       *int
	socialInteraction *int
	medicationTaken   *bool
	triggers          []string
	source            EntrySource
	createdAt         time.Time

	events []events.DomainEvent
}

// NewMoodEntry validates a check-in and raises MoodEntryRecorded
func NewMoodEntry(userID string, in MoodEntryInput, cfg *config.AnalysisConfig, now time.Time) (*MoodEntry, error) {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}

	mood, err := valueobjects.NewMoodLevel(in.Mood)
	if err != nil {
		return nil, err
	}

	reflection, err := valueobjects.NewReflectionWithConfig(in.Reflection, cfg)
	if err != nil {
		return nil, err
	}

	factors := []struct {
		factor valueobjects.Factor
		value  *int
	}{
		{valueobjects.FactorSleepQuality, in.SleepQuality},
		{valueobjects.FactorEnergy, in.EnergyLevel},
		{valueobjects.FactorSocial, in.SocialInteraction},
	}
	for _, f := range factors {
		if f.value == nil {
			continue
		}
		if _, err := valueobjects.NewFactorLevel(f.factor, *f.value); err != nil {
			return nil, err
		}
	}

	triggers, err := NormalizeTriggers(in.Triggers, cfg)
	if err != nil {
		return nil, err
	}

	emoji := strings.TrimSpace(in.Emoji)
	if emoji == "" {
		emoji = mood.Emoji()
	}

	entry := &MoodEntry{
		id:                valueobjects.NewRecordID(),
		userID:            userID,
		mood:              mood,
		emoji:             emoji,
		reflection:        reflection,
		sleepHours:        clampSleep(in.SleepHours),
		sleepQuality:      copyInt(in.SleepQuality),
		energyLevel:       copyInt(in.EnergyLevel),
		socialInteraction: copyInt(in.SocialInteraction),
		medicationTaken:   copyBool(in.MedicationTaken),
		triggers:          triggers,
		source:            SourceEnhanced,
		createdAt:         now.UTC(),
		events:            []events.DomainEvent{},
	}

	entry.addEvent(events.NewMoodEntryRecorded(entry.id.String(), userID, mood.Int(), entry.createdAt))

	return entry, nil
}

// ReconstructMoodEntry rebuilds an entry from storage. Stored values are
// trusted as-is; range problems are a data-quality concern upstream.
func ReconstructMoodEntry(id, userID string, source EntrySource, emoji string, record analysis.MoodRecord) (*MoodEntry, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}

	recordID, err := valueobjects.RecordIDFromStorage(id)
	if err != nil {
		return nil, err
	}

	return &MoodEntry{
		id:                recordID,
		userID:            userID,
		mood:              valueobjects.MoodLevel(record.Mood),
		emoji:             emoji,
		reflection:        valueobjects.ReflectionFromStorage(record.Reflection),
		sleepHours:        record.SleepHours,
		sleepQuality:      record.SleepQuality,
		energyLevel:       record.EnergyLevel,
		socialInteraction: record.SocialInteraction,
		medicationTaken:   record.MedicationTaken,
		triggers:          record.Triggers,
		source:            source,
		createdAt:         record.CreatedAt,
		events:            []events.DomainEvent{},
	}, nil
}

// NormalizeTriggers trims, drops blanks and duplicates, and enforces the
// tag limits
func NormalizeTriggers(triggers []string, cfg *config.AnalysisConfig) ([]string, error) {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}

	seen := make(map[string]struct{}, len(triggers))
	out := make([]string, 0, len(triggers))
	for _, t := range triggers {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		if cfg.MaxTriggerLength > 0 && len([]rune(t)) > cfg.MaxTriggerLength {
			return nil, pkgerrors.NewValidationError(
				fmt.Sprintf("trigger exceeds maximum length of %d characters", cfg.MaxTriggerLength))
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	if cfg.MaxTriggers > 0 && len(out) > cfg.MaxTriggers {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("too many triggers: maximum is %d", cfg.MaxTriggers))
	}
	return out, nil
}

// ID returns the entry's identifier
func (e *MoodEntry) ID() valueobjects.RecordID { return e.id }

// UserID returns the owner's ID
func (e *MoodEntry) UserID() string { return e.userID }

// Mood returns the mood level
func (e *MoodEntry) Mood() valueobjects.MoodLevel { return e.mood }

// Emoji returns the stored emoji
func (e *MoodEntry) Emoji() string { return e.emoji }

// Reflection returns the free-text note
func (e *MoodEntry) Reflection() valueobjects.Reflection { return e.reflection }

func (e *MoodEntry) SleepHours() *float64 { return e.sleepHours }
func (e *MoodEntry) SleepQuality() *int { return e.sleepQuality }
func (e *MoodEntry) EnergyLevel() *int { return e.energyLevel }
func (e *MoodEntry) SocialInteraction() *int { return e.socialInteraction }
func (e *MoodEntry) MedicationTaken() *bool { return e.medicationTaken }
func (e *MoodEntry) Source() EntrySource { return e.source }
func (e *MoodEntry) CreatedAt() time.Time { return e.createdAt }
func (e *MoodEntry) Triggers() []string { return append([]string(nil), e.triggers...) }

// ToRecord converts the entry into the analytics core's input type
func (e *MoodEntry) ToRecord() analysis.MoodRecord {
	return analysis.MoodRecord{
		ID:                e.id.String(),
		Mood:              e.mood.Int(),
		CreatedAt:         e.createdAt,
		Reflection:        e.reflection.String(),
		SleepHours:        e.sleepHours,
		SleepQuality:      e.sleepQuality,
		EnergyLevel:       e.energyLevel,
		SocialInteraction: e.socialInteraction,
		MedicationTaken:   e.medicationTaken,
		Triggers:          e.Triggers(),
	}
}

// ToRecords converts a slice of entries
func ToRecords(entries []*MoodEntry) []analysis.MoodRecord {
	out := make([]analysis.MoodRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ToRecord())
	}
	return out
}

// GetUncommittedEvents returns events raised since the last commit
func (e *MoodEntry) GetUncommittedEvents() []events.DomainEvent {
	return e.events
}

// MarkEventsAsCommitted clears the pending events
func (e *MoodEntry) MarkEventsAsCommitted() {
	e.events = []events.DomainEvent{}
}

func (e *MoodEntry) addEvent(event events.DomainEvent) {
	e.events = append(e.events, event)
}

func clampSleep(h *float64) *float64 {
	if h == nil {
		return nil
	}
	v := *h
	if v < 0 {
		v = 0
	}
	if v > 24 {
		v = 24
	}
	return &v
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
