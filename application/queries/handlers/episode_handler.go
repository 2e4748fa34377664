package handlers

import (
	"context"
	"fmt"

	"symptocare-backend/application/ports"
	"symptocare-backend/application/queries"
	"symptocare-backend/application/queries/bus"
	"symptocare-backend/domain/core/entities"
	"symptocare-backend/pkg/common"
)

// EpisodeQueryHandler reads logged episodes and the safety plan
type EpisodeQueryHandler struct {
	episodeRepo ports.EpisodeRepository
	planRepo    ports.SafetyPlanRepository
}

// NewEpisodeQueryHandler creates a new handler instance
func NewEpisodeQueryHandler(episodeRepo ports.EpisodeRepository, planRepo ports.SafetyPlanRepository) *EpisodeQueryHandler {
	return &EpisodeQueryHandler{episodeRepo: episodeRepo, planRepo: planRepo}
}

// Queries lists the query types this handler serves
func (h *EpisodeQueryHandler) Queries() []bus.Query {
	return []bus.Query{
		queries.ListEpisodesQuery{},
		queries.GetEpisodeQuery{},
		queries.GetSafetyPlanQuery{},
	}
}

// Handle implements bus.QueryHandler
func (h *EpisodeQueryHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	switch q := query.(type) {
	case queries.ListEpisodesQuery:
		all, err := h.episodeRepo.ListByUser(ctx, q.UserID)
		if err != nil {
			return nil, err
		}
		params := common.PaginationParams{Page: q.Page, PageSize: q.PageSize}
		start, end := params.Bounds(len(all))
		return &queries.EpisodePage{
			Items:    all[start:end],
			Total:    len(all),
			Page:     q.Page,
			PageSize: q.PageSize,
		}, nil

	case queries.GetEpisodeQuery:
		return h.episodeRepo.GetByID(ctx, q.UserID, q.EpisodeID)

	case queries.GetSafetyPlanQuery:
		plan, err := h.planRepo.GetByUser(ctx, q.UserID)
		if err != nil {
			return nil, err
		}
		if plan == nil {
			return entities.EmptySafetyPlan(q.UserID), nil
		}
		return plan, nil

	default:
		return nil, fmt.Errorf("unexpected query %T", query)
	}
}
