// Package supabase implements the repository ports on top of the Supabase
// PostgREST API. The service role key bypasses row level security, so
// every query here filters on user_id explicitly.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/supabase-community/postgrest-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	pkgerrors "symptocare-backend/pkg/errors"
	"symptocare-backend/pkg/observability"
)

// Table names
const (
	TableEnhancedMoodEntries = "enhanced_mood_entries"
	TableMoodEntries         = "mood_entries"
	TableEpisodes            = "episodes"
	TableSafetyPlans         = "safety_plans"
	TableAIInsights          = "ai_insights"
	TableChatMessages        = "chat_messages"
)

const restPath = "/rest/v1"

// Metrics records repository calls. *observability.Collector satisfies it.
type Metrics interface {
	RecordDBOperation(operation, table string, err error, d time.Duration)
}

// BreakerConfig tunes the circuit breaker in front of PostgREST
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig trips after 5 calls when 80% of them failed
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "supabase",
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// Store owns the PostgREST client shared by all repositories
type Store struct {
	rest    *postgrest.Client
	breaker *gobreaker.CircuitBreaker
	metrics Metrics
	tracer  trace.Tracer
	logger  *zap.Logger
}

// NewStore connects to the project's REST endpoint with the given key
func NewStore(projectURL, key string, breaker BreakerConfig, metrics Metrics, logger *zap.Logger) (*Store, error) {
	if projectURL == "" || key == "" {
		return nil, errors.New("supabase URL and key are required")
	}
	if _, err := url.ParseRequestURI(projectURL); err != nil {
		return nil, fmt.Errorf("invalid supabase URL: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rest := postgrest.NewClient(strings.TrimRight(projectURL, "/")+restPath, "public", map[string]string{
		"apikey":        key,
		"Authorization": "Bearer " + key,
	})

	s := &Store{
		rest:    rest,
		metrics: metrics,
		tracer:  observability.Tracer(),
		logger:  logger,
	}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breaker.Name,
		MaxRequests: breaker.MaxRequests,
		Interval:    breaker.Interval,
		Timeout:     breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breaker.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= breaker.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return s, nil
}

// from starts a query on a table
func (s *Store) from(table string) *postgrest.QueryBuilder {
	return s.rest.From(table)
}

// exec runs one PostgREST call through the breaker and records it. The
// client has no context support, so cancellation is checked up front.
func (s *Store) exec(ctx context.Context, operation, table string, call func() error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, span := s.tracer.Start(ctx, "supabase."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", operation),
			attribute.String("db.sql.table", table),
		),
	)
	defer func() { observability.EndSpan(span, err) }()

	start := time.Now()
	_, err = s.breaker.Execute(func() (interface{}, error) {
		return nil, call()
	})
	if s.metrics != nil {
		s.metrics.RecordDBOperation(operation, table, err, time.Since(start))
	}
	if err == nil {
		return nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return pkgerrors.NewUnavailableError("supabase").WithCause(err)
	}

	s.logger.Error("Supabase operation failed",
		zap.String("operation", operation),
		zap.String("table", table),
		zap.Error(err),
	)
	return pkgerrors.NewDatabaseError(operation, err)
}

// Ping issues a trivial query to prove the REST endpoint answers
func (s *Store) Ping(ctx context.Context) error {
	return s.exec(ctx, "ping", TableSafetyPlans, func() error {
		_, _, err := s.from(TableSafetyPlans).Select("id", "", false).Limit(1, "").Execute()
		return err
	})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
