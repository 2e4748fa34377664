package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"symptocare-backend/application/commands"
	"symptocare-backend/application/commands/bus"
	"symptocare-backend/application/queries"
	querybus "symptocare-backend/application/queries/bus"
	"symptocare-backend/domain/core/entities"
	"symptocare-backend/pkg/common"
	pkgerrors "symptocare-backend/pkg/errors"
)

// MoodHandler handles mood check-in requests
type MoodHandler struct {
	responder
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
}

// NewMoodHandler creates a new mood handler
func NewMoodHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *MoodHandler {
	return &MoodHandler{
		responder:  newResponder(errs, logger),
		commandBus: commandBus,
		queryBus:   queryBus,
	}
}

// RecordMood handles POST /moods
// @Summary Record a mood check-in
// @Tags moods
// @Accept json
// @Produce json
// @Param request body commands.RecordMoodEntryCommand true "Request body"
// @Success 201 {object} MoodEntryResponse
// @Failure 400 {object} pkgerrors.ErrorResponse "Invalid request"
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Failure 429 {object} pkgerrors.ErrorResponse "Rate limited"
// @Security BearerAuth
// @Router /moods [post]
func (h *MoodHandler) RecordMood(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var cmd commands.RecordMoodEntryCommand
	if !h.decode(w, r, &cmd) {
		return
	}
	cmd.UserID = userID

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	entry, ok := result.(*entities.MoodEntry)
	if !ok {
		h.logger.Error("Unexpected record result", zap.String("userID", userID))
		h.respondError(w, r, pkgerrors.NewInternalError("unexpected result type"))
		return
	}

	h.respondJSON(w, http.StatusCreated, newMoodEntryResponse(entry))
}

// ListMoods handles GET /moods?days=N
// @Summary List mood entries in a window
// @Tags moods
// @Produce json
// @Param days query int false "Window in days, at most 365"
// @Success 200 {array} MoodEntryResponse
// @Failure 400 {object} pkgerrors.ErrorResponse "Invalid request"
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /moods [get]
func (h *MoodHandler) ListMoods(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	days, ok := h.days(w, r)
	if !ok {
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListMoodEntriesQuery{UserID: userID, Days: days})
	if err != nil {
		h.logger.Error("Failed to list mood entries", zap.String("userID", userID), zap.Error(err))
		h.respondError(w, r, err)
		return
	}

	entries, _ := result.([]*entities.MoodEntry)
	items := newMoodEntryList(entries)
	h.respondJSON(w, http.StatusOK, common.NewListResponse(items, len(items)))
}
