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

// EpisodeCommandHandler handles create, update and delete of logged episodes
type EpisodeCommandHandler struct {
	episodeRepo ports.EpisodeRepository
	publisher   ports.EventPublisher
	clock       ports.Clock
	logger      *zap.Logger
}

// NewEpisodeCommandHandler creates a new handler instance
func NewEpisodeCommandHandler(
	episodeRepo ports.EpisodeRepository,
	publisher ports.EventPublisher,
	clock ports.Clock,
	logger *zap.Logger,
) *EpisodeCommandHandler {
	return &EpisodeCommandHandler{
		episodeRepo: episodeRepo,
		publisher:   publisher,
		clock:       clock,
		logger:      logger,
	}
}

// Handle dispatches on the episode command type
func (h *EpisodeCommandHandler) Handle(ctx context.Context, c bus.Command) (interface{}, error) {
	switch cmd := c.(type) {
	case commands.CreateEpisodeCommand:
		return h.create(ctx, cmd)
	case commands.UpdateEpisodeCommand:
		return h.update(ctx, cmd)
	case commands.DeleteEpisodeCommand:
		return nil, h.delete(ctx, cmd)
	default:
		return nil, fmt.Errorf("unexpected command %T", c)
	}
}

func (h *EpisodeCommandHandler) create(ctx context.Context, cmd commands.CreateEpisodeCommand) (*entities.Episode, error) {
	episode, err := entities.NewEpisode(cmd.UserID, cmd.Episode, h.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := h.episodeRepo.Save(ctx, episode); err != nil {
		h.logger.Error("Failed to save episode",
			zap.String("userID", cmd.UserID),
			zap.String("episodeID", episode.ID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	h.commit(ctx, episode)
	return episode, nil
}

func (h *EpisodeCommandHandler) update(ctx context.Context, cmd commands.UpdateEpisodeCommand) (*entities.Episode, error) {
	episode, err := h.episodeRepo.GetByID(ctx, cmd.UserID, cmd.EpisodeID)
	if err != nil {
		return nil, err
	}

	if err := episode.Update(cmd.Episode, h.clock.Now()); err != nil {
		return nil, err
	}

	if err := h.episodeRepo.Save(ctx, episode); err != nil {
		h.logger.Error("Failed to update episode",
			zap.String("userID", cmd.UserID),
			zap.String("episodeID", cmd.EpisodeID),
			zap.Error(err),
		)
		return nil, err
	}

	h.commit(ctx, episode)
	return episode, nil
}

func (h *EpisodeCommandHandler) delete(ctx context.Context, cmd commands.DeleteEpisodeCommand) error {
	episode, err := h.episodeRepo.GetByID(ctx, cmd.UserID, cmd.EpisodeID)
	if err != nil {
		return err
	}

	if err := h.episodeRepo.Delete(ctx, cmd.UserID, cmd.EpisodeID); err != nil {
		h.logger.Error("Failed to delete episode",
			zap.String("userID", cmd.UserID),
			zap.String("episodeID", cmd.EpisodeID),
			zap.Error(err),
		)
		return err
	}

	episode.MarkDeleted(h.clock.Now())
	h.commit(ctx, episode)
	return nil
}

func (h *EpisodeCommandHandler) commit(ctx context.Context, episode *entities.Episode) {
	h.publisher.Publish(common.Detach(ctx), episode.GetUncommittedEvents()...)
	episode.MarkEventsAsCommitted()
}
