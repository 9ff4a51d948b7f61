package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"studytracker/internal/config"
	"studytracker/internal/database"
	"studytracker/internal/handlers"
	"studytracker/internal/repository"
	"studytracker/internal/router"
	"studytracker/internal/services"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	logger := setupLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	logger.Debug("environment variables loaded", "env", cfg.Env, "db_driver", cfg.DBDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ──── Step 2: Open the Session Store ────
	repo, err := openRepository(ctx, cfg)
	if err != nil {
		logger.Error("storage initialization failed", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Debug("session store ready", "driver", cfg.DBDriver)

	// ──── Step 3: Connect Event Publisher (optional) ────
	var events services.EventPublisher = services.NoopEventPublisher{}
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, session events disabled", "error", err)
		} else {
			defer client.Close()
			events = services.NewRedisEventPublisher(client)
			logger.Debug("redis connected", "channel", services.EventsChannel)
		}
	}

	// ──── Step 4: Initialize Service and Handlers ────
	svc := services.NewStudySessionService(repo, services.ServiceOptions{
		Goal:   cfg.Goal(),
		Events: events,
		Logger: logger,
	})

	root := router.New(
		handlers.NewStudySessionHandler(svc),
		handlers.NewDashboardHandler(svc),
		handlers.NewTransferHandler(svc),
		logger,
	)

	// ──── Step 5: Run Command ────
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		repo.Close()
		os.Exit(1)
	}
}

func openRepository(ctx context.Context, cfg *config.Config) (repository.StudySessionRepository, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pgConfig, err := database.NewPostgresConfig(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		repo, err := repository.NewPostgresStudySessionRepo(ctx, pgConfig, nil)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverMemory:
		return repository.NewMemoryStudySessionRepo(nil), nil
	default:
		db, err := database.NewSQLite(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		repo, err := repository.NewSQLiteStudySessionRepo(db, nil)
		if err != nil {
			db.Close()
			return nil, err
		}
		return repo, nil
	}
}

// setupLogger writes to stderr so command output on stdout stays clean.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
