package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"symptocare-backend/application/commands"
	"symptocare-backend/application/commands/bus"
	"symptocare-backend/application/ports"
	"symptocare-backend/domain/core/entities"
	"symptocare-backend/pkg/common"
)

// RecordMoodEntryHandler stores a check-in and notifies subscribers
type RecordMoodEntryHandler struct {
	moodRepo  ports.MoodEntryRepository
	publisher ports.EventPublisher
	config    ports.AnalysisConfigSource
	clock     ports.Clock
	metrics   ports.Metrics
	logger    *zap.Logger
}

// NewRecordMoodEntryHandler creates a new handler instance
func NewRecordMoodEntryHandler(
	moodRepo ports.MoodEntryRepository,
	publisher ports.EventPublisher,
	config ports.AnalysisConfigSource,
	clock ports.Clock,
	metrics ports.Metrics,
	logger *zap.Logger,
) *RecordMoodEntryHandler {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &RecordMoodEntryHandler{
		moodRepo:  moodRepo,
		publisher: publisher,
		config:    config,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handle executes RecordMoodEntryCommand and returns the stored entry
func (h *RecordMoodEntryHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.RecordMoodEntryCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command %T", c)
	}

	entry, err := entities.NewMoodEntry(cmd.UserID, cmd.Input(), h.config.Current(), h.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := h.moodRepo.Save(ctx, entry); err != nil {
		h.logger.Error("Failed to save mood entry",
			zap.String("userID", cmd.UserID),
			zap.String("entryID", entry.ID().String()),
			zap.Error(err),
		)
		return nil, err
	}
	h.metrics.RecordMoodEntry()

	// Subscribers run after the response is written.
	h.publisher.Publish(common.Detach(ctx), entry.GetUncommittedEvents()...)
	entry.MarkEventsAsCommitted()

	h.logger.Info("Mood entry recorded",
		zap.String("userID", cmd.UserID),
		zap.String("entryID", entry.ID().String()),
		zap.Int("mood", entry.Mood().Int()),
	)

	return entry, nil
}
