package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"symptocare-backend/application/queries"
	querybus "symptocare-backend/application/queries/bus"
	"symptocare-backend/domain/analysis"
	pkgerrors "symptocare-backend/pkg/errors"
)

// AnalyticsHandler exposes the analytics core over HTTP. Every endpoint
// returns the core's output unchanged.
type AnalyticsHandler struct {
	responder
	queryBus *querybus.QueryBus
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(queryBus *querybus.QueryBus, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		responder: newResponder(errs, logger),
		queryBus:  queryBus,
	}
}

// StreakResponse is the body of GET /analytics/streak
type StreakResponse struct {
	Streak int `json:"streak"`
}

// GetFlags handles GET /analytics/flags
// @Summary Crisis flags for recent entries
// @Tags analytics
// @Produce json
// @Success 200 {object} CrisisFlagsResponse
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /analytics/flags [get]
func (h *AnalyticsHandler) GetFlags(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	result, ok := h.ask(w, r, userID, queries.GetCrisisFlagsQuery{UserID: userID})
	if !ok {
		return
	}
	var flags []analysis.CrisisFlag
	if res, isFlags := result.(*queries.CrisisFlagsResult); isFlags && res != nil {
		flags = res.Flags
	}
	h.respondJSON(w, http.StatusOK, newCrisisFlagsResponse(flags))
}

// GetAlerts handles GET /analytics/alerts?dismissed=type,type
// @Summary Wellness alert banner
// @Tags analytics
// @Produce json
// @Param dismissed query string false "Comma separated flag types to hide"
// @Success 200 {array} analysis.CrisisFlag
// @Failure 400 {object} pkgerrors.ErrorResponse "Invalid request"
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /analytics/alerts [get]
func (h *AnalyticsHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	query := queries.GetWellnessAlertsQuery{
		UserID:    userID,
		Dismissed: parseDismissed(r.URL.Query().Get("dismissed")),
	}
	result, ok := h.ask(w, r, userID, query)
	if !ok {
		return
	}
	flags, _ := result.([]analysis.CrisisFlag)
	h.respondJSON(w, http.StatusOK, newCrisisFlagsResponse(flags))
}

// GetStability handles GET /analytics/stability?days=N. The body is null
// when the window holds too few entries.
// @Summary Stability metrics
// @Tags analytics
// @Produce json
// @Param days query int false "Window in days"
// @Success 200 {object} analysis.StabilityMetrics
// @Failure 400 {object} pkgerrors.ErrorResponse "Invalid request"
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /analytics/stability [get]
func (h *AnalyticsHandler) GetStability(w http.ResponseWriter, r *http.Request) {
	h.windowed(w, r, func(userID string, days int) querybus.Query {
		return queries.GetStabilityQuery{UserID: userID, Days: days}
	})
}

// GetCorrelations handles GET /analytics/correlations?days=N
// @Summary Lifestyle correlations
// @Tags analytics
// @Produce json
// @Param days query int false "Window in days"
// @Success 200 {object} analysis.CorrelationAnalysis
// @Failure 400 {object} pkgerrors.ErrorResponse "Invalid request"
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /analytics/correlations [get]
func (h *AnalyticsHandler) GetCorrelations(w http.ResponseWriter, r *http.Request) {
	h.windowed(w, r, func(userID string, days int) querybus.Query {
		return queries.GetCorrelationsQuery{UserID: userID, Days: days}
	})
}

// GetInferredEpisodes handles GET /analytics/episodes/inferred?days=N
// @Summary Episodes inferred from mood and energy
// @Tags analytics
// @Produce json
// @Param days query int false "Window in days"
// @Success 200 {array} analysis.InferredEpisode
// @Failure 400 {object} pkgerrors.ErrorResponse "Invalid request"
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /analytics/episodes/inferred [get]
func (h *AnalyticsHandler) GetInferredEpisodes(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	days, ok := h.days(w, r)
	if !ok {
		return
	}

	result, ok := h.ask(w, r, userID, queries.GetInferredEpisodesQuery{UserID: userID, Days: days})
	if !ok {
		return
	}
	episodes, _ := result.([]analysis.InferredEpisode)
	if episodes == nil {
		episodes = []analysis.InferredEpisode{}
	}
	h.respondJSON(w, http.StatusOK, episodes)
}

// GetTopTriggers handles GET /analytics/triggers?days=N
// @Summary Most frequent triggers
// @Tags analytics
// @Produce json
// @Param days query int false "Window in days"
// @Success 200 {array} analysis.TriggerCount
// @Failure 400 {object} pkgerrors.ErrorResponse "Invalid request"
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /analytics/triggers [get]
func (h *AnalyticsHandler) GetTopTriggers(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	days, ok := h.days(w, r)
	if !ok {
		return
	}

	result, ok := h.ask(w, r, userID, queries.GetTopTriggersQuery{UserID: userID, Days: days})
	if !ok {
		return
	}
	triggers, _ := result.([]analysis.TriggerCount)
	if triggers == nil {
		triggers = []analysis.TriggerCount{}
	}
	h.respondJSON(w, http.StatusOK, triggers)
}

// GetStreak handles GET /analytics/streak
// @Summary Consecutive check-in days
// @Tags analytics
// @Produce json
// @Success 200 {object} StreakResponse
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /analytics/streak [get]
func (h *AnalyticsHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	result, ok := h.ask(w, r, userID, queries.GetStreakQuery{UserID: userID})
	if !ok {
		return
	}
	resp := StreakResponse{}
	if streak, isStreak := result.(*queries.StreakResult); isStreak && streak != nil {
		resp.Streak = streak.Days
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// GetDashboard handles GET /analytics/dashboard?days=N. Only the range
// selector's values are accepted.
// @Summary Clinical dashboard for a range
// @Tags analytics
// @Produce json
// @Param days query int false "One of 7, 30, 90 or 180"
// @Success 200 {object} analysis.Dashboard
// @Failure 400 {object} pkgerrors.ErrorResponse "Invalid request"
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /analytics/dashboard [get]
func (h *AnalyticsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	h.windowed(w, r, func(userID string, days int) querybus.Query {
		return queries.GetDashboardQuery{UserID: userID, Days: days}
	})
}

func (h *AnalyticsHandler) windowed(w http.ResponseWriter, r *http.Request, build func(userID string, days int) querybus.Query) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	days, ok := h.days(w, r)
	if !ok {
		return
	}

	result, ok := h.ask(w, r, userID, build(userID, days))
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

func (h *AnalyticsHandler) ask(w http.ResponseWriter, r *http.Request, userID string, query querybus.Query) (interface{}, bool) {
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		if pkgerrors.HTTPStatusOf(err) >= http.StatusInternalServerError {
			h.logger.Error("Analytics query failed",
				zap.String("userID", userID),
				zap.String("query", fmt.Sprintf("%T", query)),
				zap.Error(err),
			)
		}
		h.respondError(w, r, err)
		return nil, false
	}
	return result, true
}

func parseDismissed(raw string) []analysis.FlagType {
	var out []analysis.FlagType
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, analysis.FlagType(part))
		}
	}
	return out
}
