package supabase

import (
	"context"
	"time"

	"github.com/supabase-community/postgrest-go"

	"symptocare-backend/application/ports"
	"symptocare-backend/domain/core/entities"
	pkgerrors "symptocare-backend/pkg/errors"
)

var (
	_ ports.MoodEntryRepository  = (*MoodEntryRepository)(nil)
	_ ports.EpisodeRepository    = (*EpisodeRepository)(nil)
	_ ports.SafetyPlanRepository = (*SafetyPlanRepository)(nil)
	_ ports.InsightRepository    = (*InsightRepository)(nil)
	_ ports.ChatRepository       = (*ChatRepository)(nil)
)

var (
	oldestFirst = &postgrest.OrderOpts{Ascending: true}
	newestFirst = &postgrest.OrderOpts{Ascending: false}
)

// MoodEntryRepository reads both check-in tables
type MoodEntryRepository struct {
	store *Store
}

// NewMoodEntryRepository creates a mood entry repository
func NewMoodEntryRepository(store *Store) *MoodEntryRepository {
	return &MoodEntryRepository{store: store}
}

// Save implements ports.MoodEntryRepository
func (r *MoodEntryRepository) Save(ctx context.Context, entry *entities.MoodEntry) error {
	row := moodRowFrom(entry)
	return r.store.exec(ctx, "insert", TableEnhancedMoodEntries, func() error {
		_, _, err := r.store.from(TableEnhancedMoodEntries).
			Insert(row, false, "", "minimal", "").
			Execute()
		return err
	})
}

// ListSince implements ports.MoodEntryRepository
func (r *MoodEntryRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]*entities.MoodEntry, error) {
	var rows []moodRow
	err := r.store.exec(ctx, "select", TableEnhancedMoodEntries, func() error {
		_, err := r.store.from(TableEnhancedMoodEntries).
			Select("*", "", false).
			Eq("user_id", userID).
			Gte("created_at", formatTime(since)).
			Order("created_at", oldestFirst).
			ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return moodEntities(rows)
}

// ListLegacySince implements ports.MoodEntryRepository
func (r *MoodEntryRepository) ListLegacySince(ctx context.Context, userID string, since time.Time) ([]*entities.MoodEntry, error) {
	var rows []legacyMoodRow
	err := r.store.exec(ctx, "select", TableMoodEntries, func() error {
		_, err := r.store.from(TableMoodEntries).
			Select("*", "", false).
			Eq("user_id", userID).
			Gte("created_at", formatTime(since)).
			Order("created_at", oldestFirst).
			ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return legacyEntities(rows)
}

// Recent implements ports.MoodEntryRepository
func (r *MoodEntryRepository) Recent(ctx context.Context, userID string, limit int) ([]*entities.MoodEntry, error) {
	var rows []moodRow
	err := r.store.exec(ctx, "select", TableEnhancedMoodEntries, func() error {
		_, err := r.store.from(TableEnhancedMoodEntries).
			Select("*", "", false).
			Eq("user_id", userID).
			Order("created_at", newestFirst).
			Limit(limit, "").
			ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return moodEntities(rows)
}

// RecentLegacy implements ports.MoodEntryRepository
func (r *MoodEntryRepository) RecentLegacy(ctx context.Context, userID string, limit int) ([]*entities.MoodEntry, error) {
	var rows []legacyMoodRow
	err := r.store.exec(ctx, "select", TableMoodEntries, func() error {
		_, err := r.store.from(TableMoodEntries).
			Select("*", "", false).
			Eq("user_id", userID).
			Order("created_at", newestFirst).
			Limit(limit, "").
			ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return legacyEntities(rows)
}

func moodEntities(rows []moodRow) ([]*entities.MoodEntry, error) {
	out := make([]*entities.MoodEntry, 0, len(rows))
	for _, row := range rows {
		e, err := row.toEntity()
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("decode mood entry", err)
		}
		out = append(out, e)
	}
	return out, nil
}

func legacyEntities(rows []legacyMoodRow) ([]*entities.MoodEntry, error) {
	out := make([]*entities.MoodEntry, 0, len(rows))
	for _, row := range rows {
		e, err := row.toEntity()
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("decode legacy mood entry", err)
		}
		out = append(out, e)
	}
	return out, nil
}

// EpisodeRepository stores user-logged episodes
type EpisodeRepository struct {
	store *Store
}

// NewEpisodeRepository creates an episode repository
func NewEpisodeRepository(store *Store) *EpisodeRepository {
	return &EpisodeRepository{store: store}
}

// Save implements ports.EpisodeRepository
func (r *EpisodeRepository) Save(ctx context.Context, episode *entities.Episode) error {
	row := episodeRowFrom(episode)
	return r.store.exec(ctx, "upsert", TableEpisodes, func() error {
		_, _, err := r.store.from(TableEpisodes).
			Upsert(row, "id", "minimal", "").
			Execute()
		return err
	})
}

// GetByID implements ports.EpisodeRepository
func (r *EpisodeRepository) GetByID(ctx context.Context, userID, id string) (*entities.Episode, error) {
	var rows []episodeRow
	err := r.store.exec(ctx, "select", TableEpisodes, func() error {
		_, err := r.store.from(TableEpisodes).
			Select("*", "", false).
			Eq("id", id).
			Eq("user_id", userID).
			Limit(1, "").
			ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.ErrEpisodeNotFound.Clone().WithDetail("episodeID", id)
	}
	ep, err := rows[0].toEntity()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("decode episode", err)
	}
	return ep, nil
}

// ListByUser implements ports.EpisodeRepository
func (r *EpisodeRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Episode, error) {
	var rows []episodeRow
	err := r.store.exec(ctx, "select", TableEpisodes, func() error {
		_, err := r.store.from(TableEpisodes).
			Select("*", "", false).
			Eq("user_id", userID).
			Order("start_date", newestFirst).
			ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]*entities.Episode, 0, len(rows))
	for _, row := range rows {
		ep, err := row.toEntity()
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("decode episode", err)
		}
		out = append(out, ep)
	}
	return out, nil
}

// Delete implements ports.EpisodeRepository
func (r *EpisodeRepository) Delete(ctx context.Context, userID, id string) error {
	return r.store.exec(ctx, "delete", TableEpisodes, func() error {
		_, _, err := r.store.from(TableEpisodes).
			Delete("minimal", "").
			Eq("id", id).
			Eq("user_id", userID).
			Execute()
		return err
	})
}

// SafetyPlanRepository stores one plan per user
type SafetyPlanRepository struct {
	store *Store
}

// NewSafetyPlanRepository creates a safety plan repository
func NewSafetyPlanRepository(store *Store) *SafetyPlanRepository {
	return &SafetyPlanRepository{store: store}
}

// GetByUser implements ports.SafetyPlanRepository
func (r *SafetyPlanRepository) GetByUser(ctx context.Context, userID string) (*entities.SafetyPlan, error) {
	var rows []safetyPlanRow
	err := r.store.exec(ctx, "select", TableSafetyPlans, func() error {
		_, err := r.store.from(TableSafetyPlans).
			Select("*", "", false).
			Eq("user_id", userID).
			Limit(1, "").
			ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	plan, err := rows[0].toEntity()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("decode safety plan", err)
	}
	return plan, nil
}

// Save implements ports.SafetyPlanRepository
func (r *SafetyPlanRepository) Save(ctx context.Context, plan *entities.SafetyPlan) error {
	row := safetyPlanRowFrom(plan)
	return r.store.exec(ctx, "upsert", TableSafetyPlans, func() error {
		_, _, err := r.store.from(TableSafetyPlans).
			Upsert(row, "user_id", "minimal", "").
			Execute()
		return err
	})
}

// InsightRepository writes generated summaries to ai_insights
type InsightRepository struct {
	store *Store
}

// NewInsightRepository creates an insight repository
func NewInsightRepository(store *Store) *InsightRepository {
	return &InsightRepository{store: store}
}

// SaveInsight implements ports.InsightRepository
func (r *InsightRepository) SaveInsight(ctx context.Context, insight ports.Insight) error {
	row := insightRow{
		UserID:      insight.UserID,
		InsightType: insight.InsightType,
		Content:     insight.Content,
		PeriodStart: newTimestamp(insight.PeriodStart),
		PeriodEnd:   newTimestamp(insight.PeriodEnd),
		CreatedAt:   newTimestamp(insight.CreatedAt),
	}
	return r.store.exec(ctx, "insert", TableAIInsights, func() error {
		_, _, err := r.store.from(TableAIInsights).
			Insert(row, false, "", "minimal", "").
			Execute()
		return err
	})
}

// ChatRepository logs companion conversations to chat_messages
type ChatRepository struct {
	store *Store
}

// NewChatRepository creates a chat repository
func NewChatRepository(store *Store) *ChatRepository {
	return &ChatRepository{store: store}
}

// AppendMessages implements ports.ChatRepository
func (r *ChatRepository) AppendMessages(ctx context.Context, messages ...ports.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	rows := make([]chatMessageRow, 0, len(messages))
	for _, m := range messages {
		thread := m.ThreadID
		if thread == "" {
			thread = ports.DefaultThreadID
		}
		rows = append(rows, chatMessageRow{
			UserID:    m.UserID,
			ThreadID:  thread,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: newTimestamp(m.CreatedAt),
		})
	}
	return r.store.exec(ctx, "insert", TableChatMessages, func() error {
		_, _, err := r.store.from(TableChatMessages).
			Insert(rows, false, "", "minimal", "").
			Execute()
		return err
	})
}
