// Package di wires the application together
package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"symptocare-backend/application/commands/bus"
	"symptocare-backend/application/ports"
	querybus "symptocare-backend/application/queries/bus"
	"symptocare-backend/application/services"
	"symptocare-backend/infrastructure/config"
	"symptocare-backend/pkg/auth"
	"symptocare-backend/pkg/extensions"
	"symptocare-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	Metrics        *observability.Collector
	Tracing        *observability.TracerProvider
	Clock          ports.Clock
	AnalysisConfig ports.AnalysisConfigSource
	Watcher        *config.AnalysisWatcher
	Repositories   *Repositories
	Generator      ports.TextGenerator
	Hooks          *extensions.HookManager
	CommandBus     *bus.CommandBus
	QueryBus       *querybus.QueryBus
	Summaries      *services.SummaryService
	Chat           *services.ChatService
	CrisisMonitor  *services.CrisisMonitor
	Verifier       auth.TokenVerifier
	IPLimiter      *auth.IPRateLimiter
	UserLimiter    *auth.UserRateLimiter
}

// NewContainer builds every dependency from the configuration
func NewContainer(cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return NewContainerWithLogger(cfg, logger)
}

// NewContainerWithLogger is NewContainer with a caller-supplied logger
func NewContainerWithLogger(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: ProvideMetrics(),
		Clock:   ports.SystemClock{},
	}

	var err error
	c.Tracing, err = ProvideTracing(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	c.AnalysisConfig, c.Watcher, err = ProvideAnalysisConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis config: %w", err)
	}

	c.Repositories, err = ProvideRepositories(cfg, c.Metrics, logger)
	if err != nil {
		return nil, err
	}

	c.Verifier, err = ProvideTokenVerifier(cfg)
	if err != nil {
		return nil, err
	}

	c.Generator = ProvideTextGenerator(cfg, logger)

	repos := c.Repositories
	c.CrisisMonitor = services.NewCrisisMonitor(repos.Moods, c.AnalysisConfig, c.Clock, c.Metrics, logger)
	c.Hooks = ProvideHooks(c.CrisisMonitor, logger)

	c.CommandBus, err = ProvideCommandBus(repos, c.Hooks, c.AnalysisConfig, c.Clock, c.Metrics, logger)
	if err != nil {
		return nil, err
	}
	c.QueryBus, err = ProvideQueryBus(repos, c.AnalysisConfig, c.Clock, logger)
	if err != nil {
		return nil, err
	}

	c.Summaries = services.NewSummaryService(repos.Moods, repos.Insights, c.Generator, c.AnalysisConfig,
		c.Clock, c.Metrics, cfg.SummaryModel, logger)
	c.Chat = services.NewChatService(repos.Moods, repos.Chat, c.Generator, c.Clock, c.Metrics, cfg.ChatModel, logger)

	c.IPLimiter = auth.NewIPRateLimiter(cfg.RateLimitIPPerMinute)
	c.UserLimiter = auth.NewUserRateLimiter(cfg.RateLimitUserPerMinute)

	if c.Watcher != nil {
		c.Watcher.Start()
	}

	return c, nil
}

// Ready reports whether storage answers
func (c *Container) Ready(ctx context.Context) error {
	if c.Repositories.Supabase == nil {
		return nil
	}
	return c.Repositories.Supabase.Ping(ctx)
}

// Shutdown stops background work and flushes the logger
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Watcher != nil {
		c.Watcher.Stop()
	}
	err := c.Hooks.Wait(ctx)
	if c.Tracing != nil {
		if tErr := c.Tracing.Shutdown(ctx); tErr != nil {
			c.Logger.Warn("Failed to flush traces", zap.Error(tErr))
		}
	}
	_ = c.Logger.Sync()
	return err
}
