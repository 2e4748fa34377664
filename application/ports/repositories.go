package ports

import (
	"context"
	"time"

	"symptocare-backend/domain/core/entities"
)

// MoodEntryRepository defines the interface for mood entry persistence.
// Every method is scoped to one user; implementations must never return
// another user's rows.
type MoodEntryRepository interface {
	// Save persists a new enhanced entry
	Save(ctx context.Context, entry *entities.MoodEntry) error

	// ListSince returns the user's enhanced entries created at or after
	// since, oldest first
	ListSince(ctx context.Context, userID string, since time.Time) ([]*entities.MoodEntry, error)

	// ListLegacySince returns rows of the legacy mood_entries table, oldest first
	ListLegacySince(ctx context.Context, userID string, since time.Time) ([]*entities.MoodEntry, error)

	// Recent returns up to limit enhanced entries, newest first
	Recent(ctx context.Context, userID string, limit int) ([]*entities.MoodEntry, error)

	// RecentLegacy returns up to limit legacy entries, newest first
	RecentLegacy(ctx context.Context, userID string, limit int) ([]*entities.MoodEntry, error)
}

// EpisodeRepository defines the interface for user-logged episodes
type EpisodeRepository interface {
	// Save creates or replaces an episode
	Save(ctx context.Context, episode *entities.Episode) error

	// GetByID returns errors.ErrEpisodeNotFound when the episode is missing
	// or belongs to someone else
	GetByID(ctx context.Context, userID, id string) (*entities.Episode, error)

	// ListByUser returns the user's episodes, most recent start first
	ListByUser(ctx context.Context, userID string) ([]*entities.Episode, error)

	// Delete removes an episode
	Delete(ctx context.Context, userID, id string) error
}

// SafetyPlanRepository persists the one safety plan a user may have
type SafetyPlanRepository interface {
	// GetByUser returns nil and no error when the user has no plan
	GetByUser(ctx context.Context, userID string) (*entities.SafetyPlan, error)

	// Save upserts on user_id
	Save(ctx context.Context, plan *entities.SafetyPlan) error
}

// InsightTypeWeeklySummary marks generated weekly summaries in ai_insights
const InsightTypeWeeklySummary = "weekly_summary"

// Insight is a generated text stored for later display
type Insight struct {
	UserID      string
	InsightType string
	Content     string
	PeriodStart time.Time
	PeriodEnd   time.Time
	CreatedAt   time.Time
}

// InsightRepository stores generated insights
type InsightRepository interface {
	SaveInsight(ctx context.Context, insight Insight) error
}

// Chat roles as stored in chat_messages
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// DefaultThreadID is used when the client sends no thread
const DefaultThreadID = "default"

// ChatMessage is one logged turn of a companion conversation
type ChatMessage struct {
	UserID    string
	ThreadID  string
	Role      string
	Content   string
	CreatedAt time.Time
}

// ChatRepository appends conversation turns
type ChatRepository interface {
	AppendMessages(ctx context.Context, messages ...ChatMessage) error
}
