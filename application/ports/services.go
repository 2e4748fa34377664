package ports

import (
	"context"
	"time"

	"symptocare-backend/domain/config"
	"symptocare-backend/domain/events"
)

// Prompt roles understood by the text generator
const (
	PromptRoleSystem    = "system"
	PromptRoleUser      = "user"
	PromptRoleAssistant = "assistant"
)

// PromptMessage is one message of a chat-completion prompt
type PromptMessage struct {
	Role    string
	Content string
}

// CompletionRequest describes one text generation call
type CompletionRequest struct {
	// Operation labels the call in logs and metrics, e.g. "weekly_summary"
	Operation   string
	Model       string
	Messages    []PromptMessage
	Temperature float32
	MaxTokens   int
}

// TextGenerator is the summarization collaborator
type TextGenerator interface {
	// Complete returns the generated text. An empty string with a nil
	// error means the model produced nothing.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Available reports whether the generator is configured with credentials
	Available() bool
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now implements Clock
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant
type FixedClock struct {
	At time.Time
}

// Now implements Clock
func (c FixedClock) Now() time.Time { return c.At }

// AnalysisConfigSource returns the thresholds in effect right now. The
// file watcher may swap them between calls.
type AnalysisConfigSource interface {
	Current() *config.AnalysisConfig
}

// StaticConfig is an AnalysisConfigSource that never changes
type StaticConfig struct {
	Config *config.AnalysisConfig
}

// Current implements AnalysisConfigSource
func (s StaticConfig) Current() *config.AnalysisConfig {
	if s.Config == nil {
		return config.DefaultAnalysisConfig()
	}
	return s.Config
}

// EventPublisher hands committed domain events to subscribers
type EventPublisher interface {
	Publish(ctx context.Context, evts ...events.DomainEvent)
}

// Metrics is the subset of the metrics collector the application records to
type Metrics interface {
	RecordMoodEntry()
	RecordCrisisFlag(flagType, severity string)
	RecordLLMRequest(operation, outcome string)
}

// Outcomes recorded for text generation calls
const (
	LLMOutcomeSuccess  = "success"
	LLMOutcomeError    = "error"
	LLMOutcomeFallback = "fallback"
)

// NoopMetrics discards everything
type NoopMetrics struct{}

func (NoopMetrics) RecordMoodEntry() {}
func (NoopMetrics) RecordCrisisFlag(string, string) {}
func (NoopMetrics) RecordLLMRequest(string, string) {}
