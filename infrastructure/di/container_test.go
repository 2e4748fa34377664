package di

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"symptocare-backend/application/commands"
	"symptocare-backend/application/queries"
	"symptocare-backend/domain/analysis"
	"symptocare-backend/infrastructure/config"
	"symptocare-backend/pkg/observability"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Environment:            "test",
		SupabaseJWTSecret:      "super-secret-jwt-token-with-at-least-32-characters",
		SummaryModel:           "gpt-4",
		ChatModel:              "gpt-4o-mini",
		LLMTimeout:             time.Second,
		RateLimitIPPerMinute:   100,
		RateLimitUserPerMinute: 200,
	}
}

func TestNewContainer(t *testing.T) {
	t.Run("Should wire an in-memory stack that records and analyzes moods", func(t *testing.T) {
		// Arrange
		container, err := NewContainerWithLogger(memoryConfig(), zap.NewNop())
		require.NoError(t, err)
		ctx := context.Background()

		// Act
		_, err = container.CommandBus.Send(ctx, commands.RecordMoodEntryCommand{
			UserID:     "u1",
			Mood:       2,
			Reflection: "I feel hopeless",
		})
		require.NoError(t, err)
		require.NoError(t, container.Hooks.Wait(ctx))
		result, err := container.QueryBus.Ask(ctx, queries.GetCrisisFlagsQuery{UserID: "u1"})

		// Assert
		require.NoError(t, err)
		flags := result.(*queries.CrisisFlagsResult)
		require.NotEmpty(t, flags.Flags)
		assert.Equal(t, analysis.FlagConcerningText, flags.Flags[0].Type)
		assert.True(t, container.Repositories.InMemory)
		assert.False(t, container.Generator.Available())
		assert.NoError(t, container.Ready(ctx))
		assert.NoError(t, container.Shutdown(ctx))
	})

	t.Run("Should install and flush a tracer provider when tracing is on", func(t *testing.T) {
		// Arrange
		previous := otel.GetTracerProvider()
		t.Cleanup(func() { otel.SetTracerProvider(previous) })
		cfg := memoryConfig()
		cfg.TracingEnabled = true

		// Act
		container, err := NewContainerWithLogger(cfg, zap.NewNop())

		// Assert
		require.NoError(t, err)
		require.NotNil(t, container.Tracing)
		_, span := observability.Tracer().Start(context.Background(), "container.check")
		assert.True(t, span.SpanContext().IsValid())
		span.End()
		assert.NoError(t, container.Shutdown(context.Background()))
	})

	t.Run("Should refuse to start without a way to verify tokens", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.SupabaseJWTSecret = ""

		_, err := NewContainerWithLogger(cfg, zap.NewNop())

		assert.Error(t, err)
	})

	t.Run("Should reject an unknown log level", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.LogLevel = "loud"

		_, err := ProvideLogger(cfg)

		assert.Error(t, err)
	})
}
