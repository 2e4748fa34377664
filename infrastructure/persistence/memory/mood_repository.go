// Package memory provides in-process repositories. They back the API
// when no Supabase project is configured and stand in for storage in
// tests. Data lives only as long as the process.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"symptocare-backend/application/ports"
	"symptocare-backend/domain/core/entities"
)

var _ ports.MoodEntryRepository = (*MoodEntryRepository)(nil)

// MoodEntryRepository keeps enhanced and legacy entries per user
type MoodEntryRepository struct {
	mu       sync.RWMutex
	enhanced map[string][]*entities.MoodEntry
	legacy   map[string][]*entities.MoodEntry
}

// NewMoodEntryRepository creates an empty repository
func NewMoodEntryRepository() *MoodEntryRepository {
	return &MoodEntryRepository{
		enhanced: make(map[string][]*entities.MoodEntry),
		legacy:   make(map[string][]*entities.MoodEntry),
	}
}

// Save stores a new enhanced entry
func (r *MoodEntryRepository) Save(ctx context.Context, entry *entities.MoodEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.enhanced[entry.UserID()] = append(r.enhanced[entry.UserID()], entry)
	return nil
}

// SeedLegacy adds rows to the legacy table. The API never writes there.
func (r *MoodEntryRepository) SeedLegacy(entries ...*entities.MoodEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entries {
		r.legacy[e.UserID()] = append(r.legacy[e.UserID()], e)
	}
}

// ListSince implements ports.MoodEntryRepository
func (r *MoodEntryRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]*entities.MoodEntry, error) {
	return r.since(ctx, r.enhanced, userID, since)
}

// ListLegacySince implements ports.MoodEntryRepository
func (r *MoodEntryRepository) ListLegacySince(ctx context.Context, userID string, since time.Time) ([]*entities.MoodEntry, error) {
	return r.since(ctx, r.legacy, userID, since)
}

// Recent implements ports.MoodEntryRepository
func (r *MoodEntryRepository) Recent(ctx context.Context, userID string, limit int) ([]*entities.MoodEntry, error) {
	return r.recent(ctx, r.enhanced, userID, limit)
}

// RecentLegacy implements ports.MoodEntryRepository
func (r *MoodEntryRepository) RecentLegacy(ctx context.Context, userID string, limit int) ([]*entities.MoodEntry, error) {
	return r.recent(ctx, r.legacy, userID, limit)
}

func (r *MoodEntryRepository) since(ctx context.Context, table map[string][]*entities.MoodEntry, userID string, since time.Time) ([]*entities.MoodEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.MoodEntry, 0)
	for _, e := range table[userID] {
		if !e.CreatedAt().Before(since) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out, nil
}

func (r *MoodEntryRepository) recent(ctx context.Context, table map[string][]*entities.MoodEntry, userID string, limit int) ([]*entities.MoodEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]*entities.MoodEntry(nil), table[userID]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt().After(out[j].CreatedAt())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
