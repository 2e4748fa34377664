package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"symptocare-backend/application/services"
	"symptocare-backend/pkg/common"
	pkgerrors "symptocare-backend/pkg/errors"
	"symptocare-backend/pkg/utils"
)

// AIHandler serves the LLM-backed endpoints. LLM failures never reach the
// client; the services answer with fixed text instead.
type AIHandler struct {
	responder
	summaries *services.SummaryService
	chat      *services.ChatService
}

// NewAIHandler creates a new AI handler
func NewAIHandler(
	summaries *services.SummaryService,
	chat *services.ChatService,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *AIHandler {
	return &AIHandler{
		responder: newResponder(errs, logger),
		summaries: summaries,
		chat:      chat,
	}
}

// SummaryResponse is the body of both summary endpoints
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// ClientMood is a check-in as the web client sends it. Clients post rows
// straight from either mood table, so both emoji keys are accepted and
// extra columns are ignored.
type ClientMood struct {
	Mood              int      `json:"mood" validate:"min=1,max=8"`
	MoodEmoji         string   `json:"mood_emoji"`
	Emoji             string   `json:"emoji"`
	Reflection        string   `json:"reflection"`
	SleepHours        *float64 `json:"sleep_hours"`
	EnergyLevel       *int     `json:"energy_level"`
	SocialInteraction *int     `json:"social_interaction"`
	MedicationTaken   *bool    `json:"medication_taken"`
	CreatedAt         string   `json:"created_at"`
}

func (m ClientMood) emoji() string {
	if m.MoodEmoji != "" {
		return m.MoodEmoji
	}
	return m.Emoji
}

func (m ClientMood) createdAt() (time.Time, bool) {
	if strings.TrimSpace(m.CreatedAt) == "" {
		return time.Time{}, false
	}
	t, err := utils.ParseDateOrTime(m.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// WeeklySummaryRequest is the body of POST /weekly-summary
type WeeklySummaryRequest struct {
	Entries []ClientMood `json:"entries" validate:"max=200,dive"`
}

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Question string       `json:"question" validate:"required,max=4000"`
	ThreadID string       `json:"thread_id" validate:"max=100"`
	Context  *ChatContext `json:"context"`
}

// ChatContext carries the check-ins the client already has on screen
type ChatContext struct {
	RecentMoods []ClientMood `json:"recent_moods" validate:"max=50,dive"`
}

// ChatResponse is the body returned by POST /chat
type ChatResponse struct {
	Reply string `json:"reply"`
}

// GetWeeklySummary handles GET /insights/summary
// @Summary Stored or fresh weekly summary
// @Tags ai
// @Produce json
// @Success 200 {object} SummaryResponse
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Failure 503 {object} pkgerrors.ErrorResponse "Service unavailable"
// @Security BearerAuth
// @Router /insights/summary [get]
func (h *AIHandler) GetWeeklySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	summary, err := h.summaries.WeeklySummary(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to generate weekly summary", zap.String("userID", userID), zap.Error(err))
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, SummaryResponse{Summary: summary})
}

// SummarizeEntries handles POST /weekly-summary. Nothing is persisted.
// @Summary Summarize client supplied entries
// @Tags ai
// @Accept json
// @Produce json
// @Param request body WeeklySummaryRequest true "Request body"
// @Success 200 {object} SummaryResponse
// @Failure 400 {object} pkgerrors.ErrorResponse "Invalid request"
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Failure 503 {object} pkgerrors.ErrorResponse "Service unavailable"
// @Security BearerAuth
// @Router /weekly-summary [post]
func (h *AIHandler) SummarizeEntries(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w, r); !ok {
		return
	}

	var req WeeklySummaryRequest
	if !h.decodeClientBody(w, r, &req) {
		return
	}

	entries := make([]services.SummaryEntry, 0, len(req.Entries))
	for _, m := range req.Entries {
		entry := services.SummaryEntry{Mood: m.Mood, Emoji: m.emoji(), Reflection: m.Reflection}
		if t, ok := m.createdAt(); ok {
			entry.CreatedAt = t
		}
		entries = append(entries, entry)
	}

	h.respondJSON(w, http.StatusOK, SummaryResponse{Summary: h.summaries.GenerateSummary(r.Context(), entries)})
}

// Chat handles POST /chat
// @Summary Companion chat reply
// @Tags ai
// @Accept json
// @Produce json
// @Param request body ChatRequest true "Request body"
// @Success 200 {object} ChatResponse
// @Failure 400 {object} pkgerrors.ErrorResponse "Invalid request"
// @Failure 401 {object} pkgerrors.ErrorResponse "Unauthorized"
// @Failure 503 {object} pkgerrors.ErrorResponse "Service unavailable"
// @Security BearerAuth
// @Router /chat [post]
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req ChatRequest
	if !h.decodeClientBody(w, r, &req) {
		return
	}

	chatReq := services.ChatRequest{
		UserID:   userID,
		Question: strings.TrimSpace(req.Question),
		ThreadID: req.ThreadID,
	}
	if req.Context != nil {
		chatReq.RecentMoods = toChatMoods(req.Context.RecentMoods)
	}

	reply, err := h.chat.Reply(r.Context(), chatReq)
	if err != nil {
		h.logger.Error("Failed to answer chat", zap.String("userID", userID), zap.Error(err))
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

// decodeClientBody is decode without the unknown-field check, followed by
// struct validation
func (h *AIHandler) decodeClientBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, common.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.respondError(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return false
	}
	if err := utils.ValidateStruct(v); err != nil {
		h.respondError(w, r, err)
		return false
	}
	return true
}

// toChatMoods keeps an explicit empty context distinct from none at all
func toChatMoods(moods []ClientMood) []services.ChatMood {
	out := make([]services.ChatMood, 0, len(moods))
	for _, m := range moods {
		mood := services.ChatMood{
			Mood:              m.Mood,
			Emoji:             m.emoji(),
			SleepHours:        m.SleepHours,
			EnergyLevel:       m.EnergyLevel,
			SocialInteraction: m.SocialInteraction,
			MedicationTaken:   m.MedicationTaken,
			Reflection:        m.Reflection,
		}
		if t, ok := m.createdAt(); ok {
			mood.CreatedAt = &t
		}
		out = append(out, mood)
	}
	return out
}
