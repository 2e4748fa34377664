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

// SaveSafetyPlanHandler upserts the user's safety plan
type SaveSafetyPlanHandler struct {
	planRepo  ports.SafetyPlanRepository
	publisher ports.EventPublisher
	clock     ports.Clock
	logger    *zap.Logger
}

// NewSaveSafetyPlanHandler creates a new handler instance
func NewSaveSafetyPlanHandler(
	planRepo ports.SafetyPlanRepository,
	publisher ports.EventPublisher,
	clock ports.Clock,
	logger *zap.Logger,
) *SaveSafetyPlanHandler {
	return &SaveSafetyPlanHandler{
		planRepo:  planRepo,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// Handle executes SaveSafetyPlanCommand and returns the saved plan
func (h *SaveSafetyPlanHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd, ok := c.(commands.SaveSafetyPlanCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command %T", c)
	}

	now := h.clock.Now()

	plan, err := h.planRepo.GetByUser(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if plan == nil {
		plan, err = entities.NewSafetyPlan(cmd.UserID, cmd.Plan, now)
		if err != nil {
			return nil, err
		}
	} else {
		plan.Replace(cmd.Plan, now)
	}

	if err := h.planRepo.Save(ctx, plan); err != nil {
		h.logger.Error("Failed to save safety plan",
			zap.String("userID", cmd.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	h.publisher.Publish(common.Detach(ctx), plan.GetUncommittedEvents()...)
	plan.MarkEventsAsCommitted()

	return plan, nil
}
