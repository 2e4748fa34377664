package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"symptocare-backend/application/ports"
	"symptocare-backend/domain/analysis"
	"symptocare-backend/domain/core/entities"
	"symptocare-backend/domain/events"
)

// CrisisMonitor re-runs the pattern analyzer whenever a check-in is
// recorded and counts what it finds. It keeps no state of its own.
type CrisisMonitor struct {
	moodRepo ports.MoodEntryRepository
	config   ports.AnalysisConfigSource
	clock    ports.Clock
	metrics  ports.Metrics
	logger   *zap.Logger
}

// NewCrisisMonitor creates a new monitor
func NewCrisisMonitor(
	moodRepo ports.MoodEntryRepository,
	config ports.AnalysisConfigSource,
	clock ports.Clock,
	metrics ports.Metrics,
	logger *zap.Logger,
) *CrisisMonitor {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CrisisMonitor{
		moodRepo: moodRepo,
		config:   config,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
	}
}

// OnMoodEntryRecorded has the hook signature so it can be registered for
// the mood-entry-recorded hook point directly
func (m *CrisisMonitor) OnMoodEntryRecorded(ctx context.Context, data interface{}) error {
	var userID string
	switch evt := data.(type) {
	case events.MoodEntryRecorded:
		userID = evt.UserID
	case *events.MoodEntryRecorded:
		userID = evt.UserID
	default:
		return fmt.Errorf("crisis monitor: unexpected payload %T", data)
	}

	flags, err := m.Scan(ctx, userID)
	if err != nil {
		return err
	}

	for _, f := range flags {
		m.metrics.RecordCrisisFlag(string(f.Type), string(f.Severity))
	}
	if analysis.HasHighSeverity(flags) {
		m.logger.Warn("High severity pattern detected",
			zap.String("userID", userID),
			zap.Int("flags", len(flags)),
		)
	}
	return nil
}

// Scan runs the analyzer over the user's flag window
func (m *CrisisMonitor) Scan(ctx context.Context, userID string) ([]analysis.CrisisFlag, error) {
	cfg := m.config.Current()
	now := m.clock.Now()

	entries, err := m.moodRepo.ListSince(ctx, userID, now.AddDate(0, 0, -cfg.FlagWindowDays))
	if err != nil {
		return nil, err
	}

	analyzer := analysis.NewPatternAnalyzer(cfg, func() time.Time { return now })
	return analyzer.Analyze(entities.ToRecords(entries)), nil
}
