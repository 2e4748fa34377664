package observability

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used across the service
const TracerName = "symptocare-backend"

// TracingConfig holds tracing configuration
type TracingConfig struct {
	ServiceName string
	Environment string
	// Endpoint is an OTLP gRPC host:port. Empty means spans are sampled
	// but not exported.
	Endpoint string
	Insecure bool
	// SampleRate is the share of root spans kept. Zero keeps all of them.
	SampleRate float64
}

// TracerProvider wraps the SDK provider so callers only see Tracer and
// Shutdown
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// InitTracing builds a provider exporting over OTLP gRPC and installs it
// as the global provider
func InitTracing(ctx context.Context, cfg TracingConfig) (*TracerProvider, error) {
	var opts []sdktrace.TracerProviderOption
	if cfg.Endpoint != "" {
		clientOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
		}
		exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(clientOpts...))
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	return NewTracerProvider(cfg, opts...), nil
}

// NewTracerProvider installs a provider built from cfg plus opts, such as
// a span processor
func NewTracerProvider(cfg TracingConfig, opts ...sdktrace.TracerProviderOption) *TracerProvider {
	if cfg.ServiceName == "" {
		cfg.ServiceName = TracerName
	}

	base := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(tracingResource(cfg)),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.SampleRate))),
	}
	tp := sdktrace.NewTracerProvider(append(base, opts...)...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TracerProvider{provider: tp, tracer: tp.Tracer(TracerName)}
}

func tracingResource(cfg TracingConfig) *resource.Resource {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		attribute.String("deployment.environment", cfg.Environment),
	}
	if version := os.Getenv("SERVICE_VERSION"); version != "" {
		attrs = append(attrs, semconv.ServiceVersion(version))
	}
	if hostname, err := os.Hostname(); err == nil {
		attrs = append(attrs, semconv.HostName(hostname))
	}
	return resource.NewSchemaless(attrs...)
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate <= 0 || rate >= 1:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Tracer returns the service tracer
func (tp *TracerProvider) Tracer() trace.Tracer {
	return tp.tracer
}

// Shutdown flushes pending spans and stops the exporter
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	return tp.provider.Shutdown(ctx)
}

// Tracer returns the global service tracer. Spans go nowhere until a
// provider is installed.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// EndSpan records err on span, if any, and ends it
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
