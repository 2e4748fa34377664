package events

import (
	"time"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string { return e.AggregateID }
func (e BaseEvent) GetEventType() string { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int { return e.Version }

const (
	TypeMoodEntryRecorded = "mood_entry.recorded"
	TypeEpisodeLogged     = "episode.logged"
	TypeEpisodeUpdated    = "episode.updated"
	TypeEpisodeDeleted    = "episode.deleted"
	TypeSafetyPlanSaved   = "safety_plan.saved"
)

// Mood Entry Events

// MoodEntryRecorded is raised when a user records a check-in. It carries
// no reflection text.
type MoodEntryRecorded struct {
	BaseEvent
	EntryID string `json:"entry_id"`
	UserID  string `json:"user_id"`
	Mood    int    `json:"mood"`
}

// NewMoodEntryRecorded creates a MoodEntryRecorded event
func NewMoodEntryRecorded(entryID, userID string, mood int, timestamp time.Time) MoodEntryRecorded {
	return MoodEntryRecorded{
		BaseEvent: BaseEvent{
			AggregateID: entryID,
			EventType:   TypeMoodEntryRecorded,
			Timestamp:   timestamp,
			Version:     1,
		},
		EntryID: entryID,
		UserID:  userID,
		Mood:    mood,
	}
}

// Episode Events

// EpisodeLogged is raised when a user logs an episode by hand
type EpisodeLogged struct {
	BaseEvent
	EpisodeID   string `json:"episode_id"`
	UserID      string `json:"user_id"`
	EpisodeType string `json:"episode_type"`
	Severity    string `json:"severity"`
}

// NewEpisodeLogged creates an EpisodeLogged event
func NewEpisodeLogged(episodeID, userID, episodeType, severity string, timestamp time.Time) EpisodeLogged {
	return EpisodeLogged{
		BaseEvent: BaseEvent{
			AggregateID: episodeID,
			EventType:   TypeEpisodeLogged,
			Timestamp:   timestamp,
			Version:     1,
		},
		EpisodeID:   episodeID,
		UserID:      userID,
		EpisodeType: episodeType,
		Severity:    severity,
	}
}

// EpisodeChanged covers updates and deletions of a logged episode
type EpisodeChanged struct {
	BaseEvent
	EpisodeID string `json:"episode_id"`
	UserID    string `json:"user_id"`
}

// NewEpisodeUpdated creates an update event
func NewEpisodeUpdated(episodeID, userID string, version int, timestamp time.Time) EpisodeChanged {
	return EpisodeChanged{
		BaseEvent: BaseEvent{
			AggregateID: episodeID,
			EventType:   TypeEpisodeUpdated,
			Timestamp:   timestamp,
			Version:     version,
		},
		EpisodeID: episodeID,
		UserID:    userID,
	}
}

// NewEpisodeDeleted creates a deletion event
func NewEpisodeDeleted(episodeID, userID string, timestamp time.Time) EpisodeChanged {
	return EpisodeChanged{
		BaseEvent: BaseEvent{
			AggregateID: episodeID,
			EventType:   TypeEpisodeDeleted,
			Timestamp:   timestamp,
			Version:     1,
		},
		EpisodeID: episodeID,
		UserID:    userID,
	}
}

// Safety Plan Events

// SafetyPlanSaved is raised when a user's safety plan is created or replaced
type SafetyPlanSaved struct {
	BaseEvent
	UserID          string `json:"user_id"`
	ContactCount    int    `json:"contact_count"`
	StrategiesCount int    `json:"strategies_count"`
}

// NewSafetyPlanSaved creates a SafetyPlanSaved event
func NewSafetyPlanSaved(planID, userID string, contacts, strategies int, timestamp time.Time) SafetyPlanSaved {
	return SafetyPlanSaved{
		BaseEvent: BaseEvent{
			AggregateID: planID,
			EventType:   TypeSafetyPlanSaved,
			Timestamp:   timestamp,
			Version:     1,
		},
		UserID:          userID,
		ContactCount:    contacts,
		StrategiesCount: strategies,
	}
}
