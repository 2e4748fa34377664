package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracerProvider(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	recorder := tracetest.NewSpanRecorder()
	tp := NewTracerProvider(TracingConfig{Environment: "test"}, sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	t.Run("Should install itself as the global provider", func(t *testing.T) {
		// Act
		_, span := Tracer().Start(context.Background(), "mood.record")
		EndSpan(span, nil)

		// Assert
		spans := recorder.Ended()
		require.NotEmpty(t, spans)
		last := spans[len(spans)-1]
		assert.Equal(t, "mood.record", last.Name())
		assert.Equal(t, codes.Unset, last.Status().Code)
		service, ok := last.Resource().Set().Value("service.name")
		require.True(t, ok)
		assert.Equal(t, TracerName, service.AsString())
	})

	t.Run("Should record errors on the span", func(t *testing.T) {
		_, span := tp.Tracer().Start(context.Background(), "summary.generate")
		EndSpan(span, errors.New("upstream timeout"))

		spans := recorder.Ended()
		last := spans[len(spans)-1]
		assert.Equal(t, codes.Error, last.Status().Code)
		assert.Equal(t, "upstream timeout", last.Status().Description)
		require.Len(t, last.Events(), 1)
		assert.Equal(t, "exception", last.Events()[0].Name)
	})
}

func TestSampler(t *testing.T) {
	t.Run("Should keep everything at zero or one", func(t *testing.T) {
		assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(0).Description())
		assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	})

	t.Run("Should use a ratio in between", func(t *testing.T) {
		assert.Equal(t, sdktrace.TraceIDRatioBased(0.25).Description(), sampler(0.25).Description())
	})
}

func TestInitTracing(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	t.Run("Should build a provider without an endpoint", func(t *testing.T) {
		tp, err := InitTracing(context.Background(), TracingConfig{})

		require.NoError(t, err)
		assert.NoError(t, tp.Shutdown(context.Background()))
	})
}
