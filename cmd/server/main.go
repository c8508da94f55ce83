package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cagecms/cage/internal/api"
	"github.com/cagecms/cage/internal/config"
	"github.com/cagecms/cage/internal/database"
	"github.com/cagecms/cage/internal/render"
	"github.com/cagecms/cage/internal/repository"
	"github.com/cagecms/cage/internal/service"
	"github.com/cagecms/cage/internal/validation"
	"github.com/cagecms/cage/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting cage server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "./migrations"
	}
	if err := db.RunMigrations(migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Compile input validators
	validator, err := validation.New(&cfg.Blog)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compile validation patterns")
	}

	// Initialize services
	registry := render.NewRegistry()
	services := service.NewServices(repos, cfg, registry, validator, log)

	// Start background workers; Start spawns the recorder goroutine itself
	bgCtx, bgCancel := context.WithCancel(context.Background())
	services.Event.Start(bgCtx)
	log.Info().Msg("Event recorder started")

	go services.Auth.StartSessionSweep(bgCtx, cfg.Auth.SessionSweepInterval)

	// Initialize router
	router := api.NewRouter(services, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop background workers, draining queued events
	bgCancel()
	services.Event.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
