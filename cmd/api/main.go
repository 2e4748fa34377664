package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"symptocare-backend/infrastructure/config"
	"symptocare-backend/infrastructure/di"
	"symptocare-backend/interfaces/http/rest"
)

const shutdownTimeout = 30 * time.Second

// @title SymptoCare API
// @version 1.0
// @description Mood tracking, crisis detection and clinical analytics for SymptoCare.
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type Bearer followed by a space and the Supabase access token
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	logger := container.Logger

	router := rest.NewRouter(rest.Dependencies{
		CommandBus:     container.CommandBus,
		QueryBus:       container.QueryBus,
		Summaries:      container.Summaries,
		Chat:           container.Chat,
		Verifier:       container.Verifier,
		IPLimiter:      container.IPLimiter,
		UserLimiter:    container.UserLimiter,
		Metrics:        container.Metrics,
		EnableMetrics:  cfg.EnableMetrics,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Ready:          container.Ready,
		Debug:          cfg.IsDevelopment(),
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.Bool("inMemoryStorage", container.Repositories.InMemory),
			zap.Bool("llmEnabled", container.Generator.Available()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutting down server", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("Server failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	if err := container.Shutdown(ctx); err != nil {
		log.Printf("Failed to drain background work: %v", err)
	}

	log.Println("Server stopped")
}
