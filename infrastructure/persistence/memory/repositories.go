package memory

import (
	"context"
	"sort"
	"sync"

	"symptocare-backend/application/ports"
	"symptocare-backend/domain/core/entities"
	pkgerrors "symptocare-backend/pkg/errors"
)

var (
	_ ports.EpisodeRepository    = (*EpisodeRepository)(nil)
	_ ports.SafetyPlanRepository = (*SafetyPlanRepository)(nil)
	_ ports.InsightRepository    = (*InsightRepository)(nil)
	_ ports.ChatRepository       = (*ChatRepository)(nil)
)

// EpisodeRepository keeps logged episodes keyed by id
type EpisodeRepository struct {
	mu       sync.RWMutex
	episodes map[string]*entities.Episode
}

// NewEpisodeRepository creates an empty repository
func NewEpisodeRepository() *EpisodeRepository {
	return &EpisodeRepository{episodes: make(map[string]*entities.Episode)}
}

// Save implements ports.EpisodeRepository
func (r *EpisodeRepository) Save(ctx context.Context, episode *entities.Episode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.episodes[episode.ID().String()] = episode
	return nil
}

// GetByID implements ports.EpisodeRepository
func (r *EpisodeRepository) GetByID(ctx context.Context, userID, id string) (*entities.Episode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	ep, ok := r.episodes[id]
	if !ok || ep.UserID() != userID {
		return nil, pkgerrors.ErrEpisodeNotFound.Clone().WithDetail("episodeID", id)
	}
	return ep, nil
}

// ListByUser implements ports.EpisodeRepository
func (r *EpisodeRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Episode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Episode, 0)
	for _, ep := range r.episodes {
		if ep.UserID() == userID {
			out = append(out, ep)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].Details().StartDate, out[j].Details().StartDate
		if si.Equal(sj) {
			return out[i].ID().String() < out[j].ID().String()
		}
		return si.After(sj)
	})
	return out, nil
}

// Delete implements ports.EpisodeRepository
func (r *EpisodeRepository) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	ep, ok := r.episodes[id]
	if !ok || ep.UserID() != userID {
		return pkgerrors.ErrEpisodeNotFound.Clone().WithDetail("episodeID", id)
	}
	delete(r.episodes, id)
	return nil
}

// SafetyPlanRepository keeps one plan per user
type SafetyPlanRepository struct {
	mu    sync.RWMutex
	plans map[string]*entities.SafetyPlan
}

// NewSafetyPlanRepository creates an empty repository
func NewSafetyPlanRepository() *SafetyPlanRepository {
	return &SafetyPlanRepository{plans: make(map[string]*entities.SafetyPlan)}
}

// GetByUser implements ports.SafetyPlanRepository
func (r *SafetyPlanRepository) GetByUser(ctx context.Context, userID string) (*entities.SafetyPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.plans[userID], nil
}

// Save implements ports.SafetyPlanRepository
func (r *SafetyPlanRepository) Save(ctx context.Context, plan *entities.SafetyPlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.plans[plan.UserID()] = plan
	return nil
}

// InsightRepository records generated insights in order
type InsightRepository struct {
	mu       sync.RWMutex
	insights []ports.Insight
}

// NewInsightRepository creates an empty repository
func NewInsightRepository() *InsightRepository {
	return &InsightRepository{}
}

// SaveInsight implements ports.InsightRepository
func (r *InsightRepository) SaveInsight(ctx context.Context, insight ports.Insight) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.insights = append(r.insights, insight)
	return nil
}

// ForUser returns the stored insights of one user, oldest first
func (r *InsightRepository) ForUser(userID string) []ports.Insight {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ports.Insight
	for _, in := range r.insights {
		if in.UserID == userID {
			out = append(out, in)
		}
	}
	return out
}

// ChatRepository records conversation turns in order
type ChatRepository struct {
	mu       sync.RWMutex
	messages []ports.ChatMessage
}

// NewChatRepository creates an empty repository
func NewChatRepository() *ChatRepository {
	return &ChatRepository{}
}

// AppendMessages implements ports.ChatRepository
func (r *ChatRepository) AppendMessages(ctx context.Context, messages ...ports.ChatMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, messages...)
	return nil
}

// Thread returns the messages of one user's thread, oldest first
func (r *ChatRepository) Thread(userID, threadID string) []ports.ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ports.ChatMessage
	for _, m := range r.messages {
		if m.UserID == userID && m.ThreadID == threadID {
			out = append(out, m)
		}
	}
	return out
}
