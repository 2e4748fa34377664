package extensions

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"symptocare-backend/domain/events"
)

// HookPoint represents a point in the application where hooks can be registered
type HookPoint string

// Hook points follow the domain event types so committed events can be
// dispatched without a lookup table.
const (
	HookMoodEntryRecorded HookPoint = events.TypeMoodEntryRecorded
	HookEpisodeLogged     HookPoint = events.TypeEpisodeLogged
	HookEpisodeUpdated    HookPoint = events.TypeEpisodeUpdated
	HookEpisodeDeleted    HookPoint = events.TypeEpisodeDeleted
	HookSafetyPlanSaved   HookPoint = events.TypeSafetyPlanSaved
)

// Hook represents a function that can be executed at a hook point
type Hook func(ctx context.Context, data interface{}) error

// HookManager manages hooks for extension points
type HookManager struct {
	hooks    map[HookPoint][]Hook
	mu       sync.RWMutex
	inflight sync.WaitGroup
	logger   *zap.Logger
}

// NewHookManager creates a new hook manager
func NewHookManager(logger *zap.Logger) *HookManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HookManager{
		hooks:  make(map[HookPoint][]Hook),
		logger: logger,
	}
}

// Register registers a hook for a specific hook point
func (m *HookManager) Register(point HookPoint, hook Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hooks[point] = append(m.hooks[point], hook)
}

// ExecuteAsync runs each hook in its own goroutine. Failures and panics
// are logged, never returned.
func (m *HookManager) ExecuteAsync(ctx context.Context, point HookPoint, data interface{}) {
	for _, hook := range m.snapshot(point) {
		m.inflight.Add(1)
		go func(h Hook) {
			defer m.inflight.Done()
			defer func() {
				if rec := recover(); rec != nil {
					m.logger.Error("Hook panicked",
						zap.String("hook_point", string(point)),
						zap.Any("panic", rec),
					)
				}
			}()
			if err := h(ctx, data); err != nil {
				m.logger.Warn("Async hook failed",
					zap.String("hook_point", string(point)),
					zap.Error(err),
				)
			}
		}(hook)
	}
}

// Publish dispatches committed domain events to their hook points
func (m *HookManager) Publish(ctx context.Context, evts ...events.DomainEvent) {
	for _, evt := range evts {
		m.ExecuteAsync(ctx, HookPoint(evt.GetEventType()), evt)
	}
}

// Wait blocks until in-flight async hooks finish or ctx is done
func (m *HookManager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *HookManager) snapshot(point HookPoint) []Hook {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Hook(nil), m.hooks[point]...)
}
