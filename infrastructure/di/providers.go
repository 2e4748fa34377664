package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"symptocare-backend/application/commands"
	"symptocare-backend/application/commands/bus"
	commandhandlers "symptocare-backend/application/commands/handlers"
	"symptocare-backend/application/ports"
	querybus "symptocare-backend/application/queries/bus"
	queryhandlers "symptocare-backend/application/queries/handlers"
	"symptocare-backend/application/services"
	"symptocare-backend/infrastructure/config"
	"symptocare-backend/infrastructure/llm"
	"symptocare-backend/infrastructure/persistence/memory"
	supabasestore "symptocare-backend/infrastructure/persistence/supabase"
	"symptocare-backend/pkg/auth"
	"symptocare-backend/pkg/extensions"
	"symptocare-backend/pkg/observability"
)

// Repositories groups the storage ports
type Repositories struct {
	Moods    ports.MoodEntryRepository
	Episodes ports.EpisodeRepository
	Plans    ports.SafetyPlanRepository
	Insights ports.InsightRepository
	Chat     ports.ChatRepository
	Supabase *supabasestore.Store
	InMemory bool
}

// ProvideLogger creates a new logger instance honoring LOG_LEVEL
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}

// ProvideMetrics returns the process-wide Prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector("symptocare")
}

// ProvideTracing installs the global tracer provider. It returns nil when
// tracing is off, leaving the no-op provider in place.
func ProvideTracing(ctx context.Context, cfg *config.Config) (*observability.TracerProvider, error) {
	if !cfg.TracingEnabled {
		return nil, nil
	}
	return observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: observability.TracerName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
		SampleRate:  cfg.TraceSampleRate,
	})
}

// ProvideAnalysisConfig returns the threshold source. In development the
// YAML file is watched and hot-reloaded; the watcher is nil otherwise.
func ProvideAnalysisConfig(cfg *config.Config, logger *zap.Logger) (ports.AnalysisConfigSource, *config.AnalysisWatcher, error) {
	if cfg.AnalysisConfigFile != "" && cfg.WatchAnalysisConfig {
		watcher, err := config.NewAnalysisWatcher(cfg.AnalysisConfigFile, cfg.ApplyAnalysisOverrides, logger)
		if err != nil {
			return nil, nil, err
		}
		return watcher, watcher, nil
	}

	analysisCfg, err := cfg.AnalysisConfig()
	if err != nil {
		return nil, nil, err
	}
	return ports.StaticConfig{Config: analysisCfg}, nil, nil
}

// ProvideRepositories selects Supabase when it is configured and the
// in-memory store otherwise
func ProvideRepositories(cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) (*Repositories, error) {
	if !cfg.UseSupabase() {
		logger.Warn("SUPABASE_URL not set, using in-memory storage")
		moods := memory.NewMoodEntryRepository()
		return &Repositories{
			Moods:    moods,
			Episodes: memory.NewEpisodeRepository(),
			Plans:    memory.NewSafetyPlanRepository(),
			Insights: memory.NewInsightRepository(),
			Chat:     memory.NewChatRepository(),
			InMemory: true,
		}, nil
	}

	store, err := supabasestore.NewStore(cfg.SupabaseURL, cfg.SupabaseKey,
		supabasestore.DefaultBreakerConfig(), metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase store: %w", err)
	}
	return &Repositories{
		Moods:    supabasestore.NewMoodEntryRepository(store),
		Episodes: supabasestore.NewEpisodeRepository(store),
		Plans:    supabasestore.NewSafetyPlanRepository(store),
		Insights: supabasestore.NewInsightRepository(store),
		Chat:     supabasestore.NewChatRepository(store),
		Supabase: store,
	}, nil
}

// ProvideTokenVerifier verifies locally with the JWT secret when present
// and falls back to asking Supabase Auth
func ProvideTokenVerifier(cfg *config.Config) (auth.TokenVerifier, error) {
	if cfg.SupabaseJWTSecret != "" {
		return auth.NewJWTValidator(cfg.SupabaseJWTSecret, auth.SupabaseAudience)
	}
	if cfg.UseSupabase() {
		client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create supabase client: %w", err)
		}
		return auth.NewCachingVerifier(auth.NewSupabaseVerifier(client.Auth), time.Minute), nil
	}
	return nil, errors.New("authentication needs SUPABASE_JWT_SECRET or SUPABASE_URL")
}

// ProvideTextGenerator creates the OpenAI-backed generator
func ProvideTextGenerator(cfg *config.Config, logger *zap.Logger) ports.TextGenerator {
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, AI features will use offline text")
	}
	return llm.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.LLMTimeout, logger)
}

// ProvideHooks creates the hook manager and subscribes the crisis monitor
func ProvideHooks(monitor *services.CrisisMonitor, logger *zap.Logger) *extensions.HookManager {
	hooks := extensions.NewHookManager(logger)
	hooks.Register(extensions.HookMoodEntryRecorded, monitor.OnMoodEntryRecorded)
	return hooks
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	repos *Repositories,
	publisher ports.EventPublisher,
	analysisCfg ports.AnalysisConfigSource,
	clock ports.Clock,
	metrics ports.Metrics,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(bus.LoggingMiddleware(logger))

	episodes := commandhandlers.NewEpisodeCommandHandler(repos.Episodes, publisher, clock, logger)
	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.RecordMoodEntryCommand{}, commandhandlers.NewRecordMoodEntryHandler(repos.Moods, publisher, analysisCfg, clock, metrics, logger)},
		{commands.CreateEpisodeCommand{}, episodes},
		{commands.UpdateEpisodeCommand{}, episodes},
		{commands.DeleteEpisodeCommand{}, episodes},
		{commands.SaveSafetyPlanCommand{}, commandhandlers.NewSaveSafetyPlanHandler(repos.Plans, publisher, clock, logger)},
	}
	for _, r := range registrations {
		if err := commandBus.Register(r.cmd, r.handler); err != nil {
			return nil, fmt.Errorf("failed to register %T: %w", r.cmd, err)
		}
	}
	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	repos *Repositories,
	analysisCfg ports.AnalysisConfigSource,
	clock ports.Clock,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(logger)

	analytics := queryhandlers.NewAnalyticsHandler(repos.Moods, analysisCfg, clock, logger)
	if err := queryBus.Register(analytics, analytics.Queries()...); err != nil {
		return nil, err
	}
	episodes := queryhandlers.NewEpisodeQueryHandler(repos.Episodes, repos.Plans)
	if err := queryBus.Register(episodes, episodes.Queries()...); err != nil {
		return nil, err
	}
	return queryBus, nil
}
