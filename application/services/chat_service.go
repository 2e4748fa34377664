package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"symptocare-backend/application/ports"
	"symptocare-backend/domain/core/entities"
	"symptocare-backend/pkg/common"
)

const (
	OperationChat = "chat"

	chatTemperature     = 0.7
	chatMaxTokens       = 500
	chatContextMoods    = 5
	chatReflectionRunes = 120

	chatSystemPrompt = "You are SymptoCare, an empathetic wellness companion and a careful, evidence-informed AI assistant. " +
		"Be warm, validating, and practical. Offer supportive reflections and simple, actionable suggestions. " +
		"If potential risk is mentioned (e.g., self-harm), encourage contacting crisis resources and seeking professional help. " +
		"Do not diagnose; you can discuss patterns and general guidance. Keep answers concise unless the user asks for more. " +
		"Talk to the user like a friend to fill the loneliness. Ask questions, make jokes, ask questions related to past information."

	// OfflineReply is used when no text generator is configured
	OfflineReply = "Thanks for sharing. Based on your recent check-ins, I'll keep an eye on sleep, energy, " +
		"and any stressors you've mentioned. How are you feeling right now, and is there one small " +
		"thing we could try today to help you feel a bit better?"

	// ErrorReply is used when the generator fails
	ErrorReply = "I'm here with you. I had trouble generating a response just now, but I'm listening. " +
		"Could you tell me a bit more about what's on your mind?"
)

// ChatMood is one recent check-in as shown to the companion. Every field
// but Mood is optional.
type ChatMood struct {
	Mood              int
	Emoji             string
	SleepHours        *float64
	EnergyLevel       *int
	SocialInteraction *int
	MedicationTaken   *bool
	Reflection        string
	CreatedAt         *time.Time
}

// ChatMoodsFrom converts stored entries for the chat context
func ChatMoodsFrom(entries []*entities.MoodEntry) []ChatMood {
	out := make([]ChatMood, 0, len(entries))
	for _, e := range entries {
		created := e.CreatedAt()
		out = append(out, ChatMood{
			Mood:              e.Mood().Int(),
			Emoji:             e.Emoji(),
			SleepHours:        e.SleepHours(),
			EnergyLevel:       e.EnergyLevel(),
			SocialInteraction: e.SocialInteraction(),
			MedicationTaken:   e.MedicationTaken(),
			Reflection:        e.Reflection().String(),
			CreatedAt:         &created,
		})
	}
	return out
}

// ChatRequest is one companion turn. A nil RecentMoods means the caller
// sent no context and the service loads it; an empty non-nil slice means
// "no context".
type ChatRequest struct {
	UserID      string
	Question    string
	ThreadID    string
	RecentMoods []ChatMood
}

// ChatService answers companion questions with the user's recent check-ins
// as context
type ChatService struct {
	moodRepo  ports.MoodEntryRepository
	chatRepo  ports.ChatRepository
	generator ports.TextGenerator
	clock     ports.Clock
	metrics   ports.Metrics
	model     string
	logger    *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	moodRepo ports.MoodEntryRepository,
	chatRepo ports.ChatRepository,
	generator ports.TextGenerator,
	clock ports.Clock,
	metrics ports.Metrics,
	model string,
	logger *zap.Logger,
) *ChatService {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		moodRepo:  moodRepo,
		chatRepo:  chatRepo,
		generator: generator,
		clock:     clock,
		metrics:   metrics,
		model:     model,
		logger:    logger,
	}
}

// Reply generates the companion's answer and logs both turns. Only a
// failure to load the user's context is returned as an error.
func (s *ChatService) Reply(ctx context.Context, req ChatRequest) (string, error) {
	moods := req.RecentMoods
	if moods == nil {
		loaded, err := s.recentMoods(ctx, req.UserID)
		if err != nil {
			return "", err
		}
		moods = loaded
	}

	messages := []ports.PromptMessage{{Role: ports.PromptRoleSystem, Content: chatSystemPrompt}}
	if summary, ok := SummarizeMoodContext(moods); ok {
		messages = append(messages, ports.PromptMessage{Role: ports.PromptRoleSystem, Content: summary})
	}
	messages = append(messages, ports.PromptMessage{Role: ports.PromptRoleUser, Content: req.Question})

	reply := s.complete(ctx, messages)
	s.logTurns(ctx, req, reply)
	return reply, nil
}

func (s *ChatService) complete(ctx context.Context, messages []ports.PromptMessage) string {
	if s.generator == nil || !s.generator.Available() {
		s.metrics.RecordLLMRequest(OperationChat, ports.LLMOutcomeFallback)
		return OfflineReply
	}

	reply, err := s.generator.Complete(ctx, ports.CompletionRequest{
		Operation:   OperationChat,
		Model:       s.model,
		Messages:    messages,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		s.logger.Warn("Chat completion failed", zap.Error(err))
		s.metrics.RecordLLMRequest(OperationChat, ports.LLMOutcomeError)
		return ErrorReply
	}

	s.metrics.RecordLLMRequest(OperationChat, ports.LLMOutcomeSuccess)
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return ErrorReply
	}
	return reply
}

func (s *ChatService) recentMoods(ctx context.Context, userID string) ([]ChatMood, error) {
	entries, err := s.moodRepo.Recent(ctx, userID, chatContextMoods)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		entries, err = s.moodRepo.RecentLegacy(ctx, userID, chatContextMoods)
		if err != nil {
			return nil, err
		}
	}
	return ChatMoodsFrom(entries), nil
}

func (s *ChatService) logTurns(ctx context.Context, req ChatRequest, reply string) {
	if s.chatRepo == nil {
		return
	}

	threadID := strings.TrimSpace(req.ThreadID)
	if threadID == "" {
		threadID = ports.DefaultThreadID
	}
	now := s.clock.Now()

	err := s.chatRepo.AppendMessages(common.Detach(ctx),
		ports.ChatMessage{UserID: req.UserID, ThreadID: threadID, Role: ports.ChatRoleUser, Content: req.Question, CreatedAt: now},
		ports.ChatMessage{UserID: req.UserID, ThreadID: threadID, Role: ports.ChatRoleAssistant, Content: reply, CreatedAt: now},
	)
	if err != nil {
		s.logger.Warn("Failed to log chat turn",
			zap.String("userID", req.UserID),
			zap.String("threadID", threadID),
			zap.Error(err),
		)
	}
}

// SummarizeMoodContext renders up to five moods as the companion's context
// message. It reports false when there is nothing to render.
func SummarizeMoodContext(moods []ChatMood) (string, bool) {
	if len(moods) == 0 {
		return "", false
	}
	if len(moods) > chatContextMoods {
		moods = moods[:chatContextMoods]
	}

	lines := make([]string, 0, len(moods))
	for _, m := range moods {
		when := "recent"
		if m.CreatedAt != nil && !m.CreatedAt.IsZero() {
			when = m.CreatedAt.UTC().Format("Jan 02, 15:04")
		}

		head := fmt.Sprintf("%s: mood %d", when, m.Mood)
		if m.Emoji != "" {
			head += " " + m.Emoji
		}
		parts := []string{head}
		if m.SleepHours != nil {
			parts = append(parts, "sleep "+strconv.FormatFloat(*m.SleepHours, 'f', -1, 64)+"h")
		}
		if m.EnergyLevel != nil {
			parts = append(parts, fmt.Sprintf("energy %d/5", *m.EnergyLevel))
		}
		if m.SocialInteraction != nil {
			parts = append(parts, fmt.Sprintf("social %d/5", *m.SocialInteraction))
		}
		if m.MedicationTaken != nil {
			mark := "❌"
			if *m.MedicationTaken {
				mark = "✅"
			}
			parts = append(parts, "meds "+mark)
		}
		if refl := clipReflection(m.Reflection); refl != "" {
			parts = append(parts, "“"+refl+"…”")
		}
		lines = append(lines, strings.Join(parts, " · "))
	}

	return "Recent check-ins:\n" + strings.Join(lines, "\n"), true
}

func clipReflection(text string) string {
	r := []rune(text)
	if len(r) > chatReflectionRunes {
		r = r[:chatReflectionRunes]
	}
	return strings.TrimSpace(strings.ReplaceAll(string(r), "\n", " "))
}
