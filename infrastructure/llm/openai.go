// Package llm adapts the OpenAI chat completion API to the text generator
// port used for weekly summaries and the companion chat.
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"symptocare-backend/application/ports"
	pkgerrors "symptocare-backend/pkg/errors"
	"symptocare-backend/pkg/observability"
)

var _ ports.TextGenerator = (*OpenAIGenerator)(nil)

// OpenAIGenerator calls the chat completion endpoint
type OpenAIGenerator struct {
	client  *openai.Client
	enabled bool
	timeout time.Duration
	tracer  trace.Tracer
	logger  *zap.Logger
}

// NewOpenAIGenerator creates a generator. Without an API key it reports
// itself unavailable and callers use their offline text.
func NewOpenAIGenerator(apiKey, baseURL string, timeout time.Duration, logger *zap.Logger) *OpenAIGenerator {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIGenerator{
		client:  openai.NewClientWithConfig(config),
		enabled: strings.TrimSpace(apiKey) != "",
		timeout: timeout,
		tracer:  observability.Tracer(),
		logger:  logger,
	}
}

// Available implements ports.TextGenerator
func (g *OpenAIGenerator) Available() bool {
	return g.enabled
}

// Complete implements ports.TextGenerator
func (g *OpenAIGenerator) Complete(ctx context.Context, req ports.CompletionRequest) (text string, err error) {
	if !g.enabled {
		return "", pkgerrors.NewUnavailableError("openai")
	}

	ctx, span := g.tracer.Start(ctx, "openai.chat_completion",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.operation", req.Operation),
			attribute.String("llm.model", req.Model),
			attribute.Int("llm.messages", len(req.Messages)),
		),
	)
	defer func() { observability.EndSpan(span, err) }()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    chatRole(m.Role),
			Content: m.Content,
		})
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		g.logger.Warn("Chat completion failed",
			zap.String("operation", req.Operation),
			zap.String("model", req.Model),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return "", pkgerrors.NewExternalError("openai", err)
	}

	span.SetAttributes(attribute.Int("llm.total_tokens", resp.Usage.TotalTokens))
	g.logger.Debug("Chat completion finished",
		zap.String("operation", req.Operation),
		zap.String("model", req.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("duration", time.Since(start)),
	)

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func chatRole(role string) string {
	switch role {
	case ports.PromptRoleSystem:
		return openai.ChatMessageRoleSystem
	case ports.PromptRoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
