// Package rest exposes the application over HTTP
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"symptocare-backend/application/commands/bus"
	querybus "symptocare-backend/application/queries/bus"
	"symptocare-backend/application/services"
	"symptocare-backend/interfaces/http/rest/handlers"
	"symptocare-backend/interfaces/http/rest/middleware"
	"symptocare-backend/pkg/auth"
	"symptocare-backend/pkg/common"
	pkgerrors "symptocare-backend/pkg/errors"
	"symptocare-backend/pkg/observability"
)

const readinessTimeout = 3 * time.Second

// Dependencies is everything the router wires into handlers
type Dependencies struct {
	CommandBus     *bus.CommandBus
	QueryBus       *querybus.QueryBus
	Summaries      *services.SummaryService
	Chat           *services.ChatService
	Verifier       auth.TokenVerifier
	IPLimiter      middleware.Limiter
	UserLimiter    middleware.Limiter
	Metrics        *observability.Collector
	Tracer         trace.Tracer
	EnableMetrics  bool
	AllowedOrigins []string
	Ready          func(ctx context.Context) error
	Debug          bool
	Logger         *zap.Logger
}

// Router creates and configures the HTTP router
type Router struct {
	deps   Dependencies
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(deps Dependencies) *Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		deps:   deps,
		errors: pkgerrors.NewErrorHandler(logger, deps.Debug),
		logger: logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Tracing(rt.tracer()))
	router.Use(middleware.Logger(rt.logger))
	router.Use(rt.errors.Middleware)
	if rt.deps.Metrics != nil {
		router.Use(middleware.Metrics(rt.deps.Metrics))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.deps.EnableMetrics && rt.deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.deps.Metrics.Handler())
	}

	moods := handlers.NewMoodHandler(rt.deps.CommandBus, rt.deps.QueryBus, rt.errors, rt.logger)
	analytics := handlers.NewAnalyticsHandler(rt.deps.QueryBus, rt.errors, rt.logger)
	episodes := handlers.NewEpisodeHandler(rt.deps.CommandBus, rt.deps.QueryBus, rt.errors, rt.logger)
	ai := handlers.NewAIHandler(rt.deps.Summaries, rt.deps.Chat, rt.errors, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/crisis-resources", episodes.ListCrisisResources)
		r.Get("/swagger/doc.json", handlers.APIDoc(rt.errors))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(middleware.AuthConfig{
				Verifier:    rt.deps.Verifier,
				IPLimiter:   rt.deps.IPLimiter,
				UserLimiter: rt.deps.UserLimiter,
				Errors:      rt.errors,
				Logger:      rt.logger,
			}))

			r.Route("/moods", func(r chi.Router) {
				r.Post("/", moods.RecordMood)
				r.Get("/", moods.ListMoods)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/flags", analytics.GetFlags)
				r.Get("/alerts", analytics.GetAlerts)
				r.Get("/stability", analytics.GetStability)
				r.Get("/correlations", analytics.GetCorrelations)
				r.Get("/episodes/inferred", analytics.GetInferredEpisodes)
				r.Get("/triggers", analytics.GetTopTriggers)
				r.Get("/streak", analytics.GetStreak)
				r.Get("/dashboard", analytics.GetDashboard)
			})

			r.Route("/episodes", func(r chi.Router) {
				r.Post("/", episodes.CreateEpisode)
				r.Get("/", episodes.ListEpisodes)
				r.Get("/{episodeID}", episodes.GetEpisode)
				r.Put("/{episodeID}", episodes.UpdateEpisode)
				r.Delete("/{episodeID}", episodes.DeleteEpisode)
			})

			r.Get("/safety-plan", episodes.GetSafetyPlan)
			r.Put("/safety-plan", episodes.SaveSafetyPlan)

			r.Group(func(r chi.Router) {
				r.Use(middleware.CircuitBreaker(middleware.DefaultCircuitBreakerConfig("llm"), rt.errors, rt.logger))
				r.Get("/insights/summary", ai.GetWeeklySummary)
				r.Post("/weekly-summary", ai.SummarizeEntries)
				r.Post("/chat", ai.Chat)
			})
		})
	})

	return router
}

func (rt *Router) tracer() trace.Tracer {
	if rt.deps.Tracer != nil {
		return rt.deps.Tracer
	}
	return observability.Tracer()
}

// healthCheck handles liveness probes
func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	_ = common.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports whether storage answers
func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	if rt.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := rt.deps.Ready(ctx); err != nil {
			rt.logger.Warn("Readiness check failed", zap.Error(err))
			rt.errors.HandleStatus(w, r, http.StatusServiceUnavailable, "Storage is not reachable")
			return
		}
	}
	_ = common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
