package entities

import (
	"strings"
	"time"

	"symptocare-backend/domain/analysis"
	"symptocare-backend/domain/core/valueobjects"
	"symptocare-backend/domain/events"
	pkgerrors "symptocare-backend/pkg/errors"
)

// EpisodeInput carries the editable fields of a logged episode
type EpisodeInput struct {
	Type              analysis.EpisodeType
	Severity          analysis.EpisodeSeverity
	StartDate         time.Time
	EndDate           *time.Time
	Symptoms          []string
	Triggers          []string
	Notes             string
	Hospitalization   bool
	MedicationChanges string
}

// Episode is a user-logged episode. It is never merged with the
// episodes the analytics core infers.
type Episode struct {
	id        valueobjects.RecordID
	userID    string
	details   EpisodeInput
	createdAt time.Time
	updatedAt time.Time
	version   int

	events []events.DomainEvent
}

// NewEpisode validates and creates a logged episode
func NewEpisode(userID string, in EpisodeInput, now time.Time) (*Episode, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}

	details, err := validateEpisode(in)
	if err != nil {
		return nil, err
	}

	ep := &Episode{
		id:        valueobjects.NewRecordID(),
		userID:    userID,
		details:   details,
		createdAt: now.UTC(),
		updatedAt: now.UTC(),
		version:   1,
		events:    []events.DomainEvent{},
	}

	ep.addEvent(events.NewEpisodeLogged(ep.id.String(), userID, string(details.Type), string(details.Severity), ep.createdAt))

	return ep, nil
}

// ReconstructEpisode rebuilds an episode from storage
func ReconstructEpisode(id, userID string, in EpisodeInput, createdAt, updatedAt time.Time) (*Episode, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	recordID, err := valueobjects.RecordIDFromStorage(id)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	return &Episode{
		id:        recordID,
		userID:    userID,
		details:   in,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   1,
		events:    []events.DomainEvent{},
	}, nil
}

// Update replaces the editable fields
func (e *Episode) Update(in EpisodeInput, now time.Time) error {
	details, err := validateEpisode(in)
	if err != nil {
		return err
	}

	e.details = details
	e.updatedAt = now.UTC()
	e.version++

	e.addEvent(events.NewEpisodeUpdated(e.id.String(), e.userID, e.version, e.updatedAt))

	return nil
}

// MarkDeleted raises the deletion event; the repository removes the row
func (e *Episode) MarkDeleted(now time.Time) {
	e.addEvent(events.NewEpisodeDeleted(e.id.String(), e.userID, now.UTC()))
}

func validateEpisode(in EpisodeInput) (EpisodeInput, error) {
	if !in.Type.IsValid() {
		return EpisodeInput{}, pkgerrors.NewValidationError("episode_type must be one of manic, hypomanic, depressive, mixed")
	}
	if !in.Severity.IsValid() {
		return EpisodeInput{}, pkgerrors.NewValidationError("severity must be one of mild, moderate, severe")
	}
	if in.StartDate.IsZero() {
		return EpisodeInput{}, pkgerrors.NewValidationError("start_date is required")
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return EpisodeInput{}, pkgerrors.ErrEpisodeDateOrder.Clone()
	}

	out := in
	out.Symptoms = cleanList(in.Symptoms)
	out.Triggers = cleanList(in.Triggers)
	out.Notes = strings.TrimSpace(in.Notes)
	out.MedicationChanges = strings.TrimSpace(in.MedicationChanges)
	if in.EndDate != nil {
		end := *in.EndDate
		out.EndDate = &end
	}
	return out, nil
}

// ID returns the episode's identifier
func (e *Episode) ID() valueobjects.RecordID { return e.id }

// UserID returns the owner's ID
func (e *Episode) UserID() string { return e.userID }

// Details returns a copy of the editable fields
func (e *Episode) Details() EpisodeInput {
	out := e.details
	out.Symptoms = append([]string(nil), e.details.Symptoms...)
	out.Triggers = append([]string(nil), e.details.Triggers...)
	return out
}

// IsOngoing reports whether the episode has no end date
func (e *Episode) IsOngoing() bool { return e.details.EndDate == nil }

func (e *Episode) CreatedAt() time.Time { return e.createdAt }
func (e *Episode) UpdatedAt() time.Time { return e.updatedAt }
func (e *Episode) Version() int { return e.version }

// GetUncommittedEvents returns events raised since the last commit
func (e *Episode) GetUncommittedEvents() []events.DomainEvent {
	return e.events
}

// MarkEventsAsCommitted clears the pending events
func (e *Episode) MarkEventsAsCommitted() {
	e.events = []events.DomainEvent{}
}

func (e *Episode) addEvent(event events.DomainEvent) {
	e.events = append(e.events, event)
}

// cleanList trims entries and drops empty strings
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
