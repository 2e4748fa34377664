package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"symptocare-backend/application/ports"
	"symptocare-backend/domain/core/entities"
	"symptocare-backend/domain/core/valueobjects"
	"symptocare-backend/pkg/common"
)

const (
	OperationWeeklySummary = "weekly_summary"

	summaryTemperature = 0.7
	summaryMaxTokens   = 350

	summarySystemPrompt = "You are a compassionate mental wellness assistant who provides supportive, " +
		"evidence-based guidance. You focus on emotional wellbeing, self-compassion, and practical " +
		"wellness strategies. Avoid diagnostic language."

	// NoEntriesMessage is returned by GenerateSummary for an empty input
	NoEntriesMessage = "No mood entries available for analysis."

	// NoWeeklyEntriesMessage is returned by WeeklySummary when the user
	// has not checked in during the window
	NoWeeklyEntriesMessage = "No mood entries found for the past week. " +
		"Start tracking your mood daily to get personalized insights!"

	emptyReplyMessage = "Unable to generate summary at this time."

	summaryFallbackFormat = "I'm having trouble analyzing your mood data right now. Your entries show an " +
		"average wellness level of %.1f/8 over %d days. Keep tracking your moods. " +
		"This data helps build valuable insights over time."
)

// SummaryEntry is the minimal view of a check-in the summary prompt needs.
// A zero CreatedAt renders as "Unknown date".
type SummaryEntry struct {
	Mood       int
	Emoji      string
	Reflection string
	CreatedAt  time.Time
}

// SummaryEntriesFrom converts stored entries for summarization
func SummaryEntriesFrom(entries []*entities.MoodEntry) []SummaryEntry {
	out := make([]SummaryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, SummaryEntry{
			Mood:       e.Mood().Int(),
			Emoji:      e.Emoji(),
			Reflection: e.Reflection().String(),
			CreatedAt:  e.CreatedAt(),
		})
	}
	return out
}

// SummaryService produces narrative weekly summaries through a TextGenerator
type SummaryService struct {
	moodRepo    ports.MoodEntryRepository
	insightRepo ports.InsightRepository
	generator   ports.TextGenerator
	config      ports.AnalysisConfigSource
	clock       ports.Clock
	metrics     ports.Metrics
	model       string
	logger      *zap.Logger
}

// NewSummaryService creates a new summary service
func NewSummaryService(
	moodRepo ports.MoodEntryRepository,
	insightRepo ports.InsightRepository,
	generator ports.TextGenerator,
	config ports.AnalysisConfigSource,
	clock ports.Clock,
	metrics ports.Metrics,
	model string,
	logger *zap.Logger,
) *SummaryService {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{
		moodRepo:    moodRepo,
		insightRepo: insightRepo,
		generator:   generator,
		config:      config,
		clock:       clock,
		metrics:     metrics,
		model:       model,
		logger:      logger,
	}
}

// WeeklySummary summarizes the user's recent window and stores the result.
// Enhanced entries are preferred; the legacy table is only read when the
// enhanced one has nothing for the window.
func (s *SummaryService) WeeklySummary(ctx context.Context, userID string) (string, error) {
	now := s.clock.Now()
	since := now.AddDate(0, 0, -s.config.Current().SummaryWindowDays)

	entries, err := s.moodRepo.ListSince(ctx, userID, since)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		entries, err = s.moodRepo.ListLegacySince(ctx, userID, since)
		if err != nil {
			return "", err
		}
	}
	if len(entries) == 0 {
		return NoWeeklyEntriesMessage, nil
	}

	summary := s.GenerateSummary(ctx, SummaryEntriesFrom(entries))

	insight := ports.Insight{
		UserID:      userID,
		InsightType: ports.InsightTypeWeeklySummary,
		Content:     summary,
		PeriodStart: since,
		PeriodEnd:   now,
		CreatedAt:   now,
	}
	if err := s.insightRepo.SaveInsight(common.Detach(ctx), insight); err != nil {
		s.logger.Warn("Failed to persist weekly summary",
			zap.String("userID", userID),
			zap.Error(err),
		)
	}

	return summary, nil
}

// GenerateSummary never fails: generator errors and empty replies turn
// into fixed fallback text.
func (s *SummaryService) GenerateSummary(ctx context.Context, entries []SummaryEntry) string {
	if len(entries) == 0 {
		return NoEntriesMessage
	}

	stats := wellnessStatsOf(entries)

	if s.generator == nil || !s.generator.Available() {
		s.metrics.RecordLLMRequest(OperationWeeklySummary, ports.LLMOutcomeFallback)
		return fmt.Sprintf(summaryFallbackFormat, stats.avg, len(entries))
	}

	reply, err := s.generator.Complete(ctx, ports.CompletionRequest{
		Operation: OperationWeeklySummary,
		Model:     s.model,
		Messages: []ports.PromptMessage{
			{Role: ports.PromptRoleSystem, Content: summarySystemPrompt},
			{Role: ports.PromptRoleUser, Content: BuildSummaryPrompt(entries)},
		},
		Temperature: summaryTemperature,
		MaxTokens:   summaryMaxTokens,
	})
	if err != nil {
		s.logger.Warn("Summary generation failed", zap.Int("entries", len(entries)), zap.Error(err))
		s.metrics.RecordLLMRequest(OperationWeeklySummary, ports.LLMOutcomeError)
		return fmt.Sprintf(summaryFallbackFormat, stats.avg, len(entries))
	}

	s.metrics.RecordLLMRequest(OperationWeeklySummary, ports.LLMOutcomeSuccess)
	if strings.TrimSpace(reply) == "" {
		return emptyReplyMessage
	}
	return reply
}

type wellnessStats struct {
	avg      float64
	min, max int
}

func wellnessStatsOf(entries []SummaryEntry) wellnessStats {
	st := wellnessStats{min: int(valueobjects.MaxMoodLevel), max: int(valueobjects.MinMoodLevel)}
	sum := 0
	for _, e := range entries {
		w := valueobjects.ClampMoodLevel(e.Mood).Int()
		sum += w
		if w < st.min {
			st.min = w
		}
		if w > st.max {
			st.max = w
		}
	}
	st.avg = float64(sum) / float64(len(entries))
	return st
}

// BuildSummaryPrompt renders the user prompt for a non-empty entry list
func BuildSummaryPrompt(entries []SummaryEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		level := valueobjects.ClampMoodLevel(e.Mood)
		date := "Unknown date"
		if !e.CreatedAt.IsZero() {
			date = e.CreatedAt.UTC().Format("2006-01-02")
		}
		lines = append(lines, fmt.Sprintf("%s %s %s (Wellness: %d/8): %s",
			date, e.Emoji, level.Label(), level.Int(), e.Reflection))
	}

	st := wellnessStatsOf(entries)

	var b strings.Builder
	b.WriteString("As a compassionate mental wellness assistant, analyze these mood entries and provide supportive insights:\n\n")
	fmt.Fprintf(&b, "Recent Entries (%d days):\n", len(entries))
	b.WriteString(strings.Join(lines, "\n\n"))
	b.WriteString("\n\nWellness Statistics:\n")
	fmt.Fprintf(&b, "- Average: %.1f/8\n", st.avg)
	fmt.Fprintf(&b, "- Range: %d to %d\n\n", st.min, st.max)
	b.WriteString("Please provide:\n")
	b.WriteString("1. A brief, warm summary of their emotional patterns\n")
	b.WriteString("2. Positive observations and strengths you notice\n")
	b.WriteString("3. 2-3 gentle, actionable wellness suggestions\n")
	b.WriteString("4. Encouraging words for their mental health journey\n\n")
	b.WriteString("Keep the response supportive, non-judgmental, and focused on growth. Limit to 250 words.")
	return b.String()
}
