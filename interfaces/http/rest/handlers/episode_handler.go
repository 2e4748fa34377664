package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"symptocare-backend/application/commands"
	"symptocare-backend/application/commands/bus"
	"symptocare-backend/application/queries"
	querybus "symptocare-backend/application/queries/bus"
	"symptocare-backend/domain/core/entities"
	"symptocare-backend/pkg/common"
	pkgerrors "symptocare-backend/pkg/errors"
)

// EpisodeHandler handles user-logged episodes and the safety plan
type EpisodeHandler struct {
	responder
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
}

// NewEpisodeHandler creates a new episode handler
func NewEpisodeHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *EpisodeHandler {
	return &EpisodeHandler{
		responder:  newResponder(errs, logger),
		commandBus: commandBus,
		queryBus:   queryBus,
	}
}

// CreateEpisode handles POST /episodes
// @Summary Log an episode
// @Tags episodes
// @Accept json
// @Produce json
// @Param request body EpisodeRequest true "Request body"
// @Success 201 {object} EpisodeResponse
// @Failure 400 {object} pkgerrors.ErrorResponse "Invalid request"
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Failure 422 {object} pkgerrors.ErrorResponse "Business rule violated"
// @Security BearerAuth
// @Router /episodes [post]
func (h *EpisodeHandler) CreateEpisode(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req EpisodeRequest
	if !h.decode(w, r, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.CreateEpisodeCommand{UserID: userID, Episode: input})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondEpisode(w, r, http.StatusCreated, result)
}

// ListEpisodes handles GET /episodes?page=&page_size=
// @Summary List logged episodes newest first
// @Tags episodes
// @Produce json
// @Param page query int false "Page, from 1"
// @Param page_size query int false "Page size"
// @Success 200 {object} common.PaginatedResult
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /episodes [get]
func (h *EpisodeHandler) ListEpisodes(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	params := common.ExtractPaginationParams(r)
	result, err := h.queryBus.Ask(r.Context(), queries.ListEpisodesQuery{
		UserID:   userID,
		Page:     params.Page,
		PageSize: params.PageSize,
	})
	if err != nil {
		h.logger.Error("Failed to list episodes", zap.String("userID", userID), zap.Error(err))
		h.respondError(w, r, err)
		return
	}

	page, _ := result.(*queries.EpisodePage)
	if page == nil {
		page = &queries.EpisodePage{Page: params.Page, PageSize: params.PageSize}
	}
	items := make([]EpisodeResponse, 0, len(page.Items))
	for _, ep := range page.Items {
		items = append(items, newEpisodeResponse(ep))
	}
	h.respondJSON(w, http.StatusOK, common.NewPaginatedResult(items, page.Page, page.PageSize, page.Total))
}

// GetEpisode handles GET /episodes/{episodeID}
// @Summary Get an episode
// @Tags episodes
// @Produce json
// @Param episodeID path string true "Episode ID"
// @Success 200 {object} EpisodeResponse
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Failure 404 {object} pkgerrors.ErrorResponse "Not found"
// @Security BearerAuth
// @Router /episodes/{episodeID} [get]
func (h *EpisodeHandler) GetEpisode(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetEpisodeQuery{
		UserID:    userID,
		EpisodeID: chi.URLParam(r, "episodeID"),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondEpisode(w, r, http.StatusOK, result)
}

// UpdateEpisode handles PUT /episodes/{episodeID}
// @Summary Update an episode
// @Tags episodes
// @Accept json
// @Produce json
// @Param episodeID path string true "Episode ID"
// @Param request body EpisodeRequest true "Request body"
// @Success 200 {object} EpisodeResponse
// @Failure 400 {object} pkgerrors.ErrorResponse "Invalid request"
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Failure 404 {object} pkgerrors.ErrorResponse "Not found"
// @Failure 422 {object} pkgerrors.ErrorResponse "Business rule violated"
// @Security BearerAuth
// @Router /episodes/{episodeID} [put]
func (h *EpisodeHandler) UpdateEpisode(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req EpisodeRequest
	if !h.decode(w, r, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.UpdateEpisodeCommand{
		UserID:    userID,
		EpisodeID: chi.URLParam(r, "episodeID"),
		Episode:   input,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondEpisode(w, r, http.StatusOK, result)
}

// DeleteEpisode handles DELETE /episodes/{episodeID}
// @Summary Delete an episode
// @Tags episodes
// @Produce json
// @Param episodeID path string true "Episode ID"
// @Success 204
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Failure 404 {object} pkgerrors.ErrorResponse "Not found"
// @Security BearerAuth
// @Router /episodes/{episodeID} [delete]
func (h *EpisodeHandler) DeleteEpisode(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	episodeID := chi.URLParam(r, "episodeID")
	if _, err := h.commandBus.Send(r.Context(), commands.DeleteEpisodeCommand{UserID: userID, EpisodeID: episodeID}); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSafetyPlan handles GET /safety-plan. A user without a plan gets an
// empty one.
// @Summary Get the safety plan
// @Tags safety-plan
// @Produce json
// @Success 200 {object} SafetyPlanResponse
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /safety-plan [get]
func (h *EpisodeHandler) GetSafetyPlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetSafetyPlanQuery{UserID: userID})
	if err != nil {
		h.logger.Error("Failed to load safety plan", zap.String("userID", userID), zap.Error(err))
		h.respondError(w, r, err)
		return
	}
	h.respondPlan(w, r, result)
}

// SaveSafetyPlan handles PUT /safety-plan
// @Summary Save the safety plan
// @Tags safety-plan
// @Accept json
// @Produce json
// @Param request body entities.SafetyPlanContent true "Request body"
// @Success 200 {object} SafetyPlanResponse
// @Failure 400 {object} pkgerrors.ErrorResponse "Invalid request"
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /safety-plan [put]
func (h *EpisodeHandler) SaveSafetyPlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var content entities.SafetyPlanContent
	if !h.decode(w, r, &content) {
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.SaveSafetyPlanCommand{UserID: userID, Plan: content})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondPlan(w, r, result)
}

// ListCrisisResources handles GET /crisis-resources. It needs no user.
// @Summary Crisis hotlines
// @Tags crisis
// @Produce json
// @Success 200 {array} entities.CrisisResource
// @Router /crisis-resources [get]
func (h *EpisodeHandler) ListCrisisResources(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, entities.CrisisResources())
}

func (h *EpisodeHandler) respondEpisode(w http.ResponseWriter, r *http.Request, status int, result interface{}) {
	episode, ok := result.(*entities.Episode)
	if !ok || episode == nil {
		h.respondError(w, r, pkgerrors.NewInternalError("unexpected episode result"))
		return
	}
	h.respondJSON(w, status, newEpisodeResponse(episode))
}

func (h *EpisodeHandler) respondPlan(w http.ResponseWriter, r *http.Request, result interface{}) {
	plan, ok := result.(*entities.SafetyPlan)
	if !ok || plan == nil {
		h.respondError(w, r, pkgerrors.NewInternalError("unexpected safety plan result"))
		return
	}
	h.respondJSON(w, http.StatusOK, newSafetyPlanResponse(plan))
}
