package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/classpulse/classpulse-backend/internal/config"
	"github.com/classpulse/classpulse-backend/internal/credential"
	"github.com/classpulse/classpulse-backend/internal/database"
	"github.com/classpulse/classpulse-backend/internal/handler"
	"github.com/classpulse/classpulse-backend/internal/kvstore"
	"github.com/classpulse/classpulse-backend/internal/logger"
	"github.com/classpulse/classpulse-backend/internal/notification"
	"github.com/classpulse/classpulse-backend/internal/platform"
	"github.com/classpulse/classpulse-backend/internal/router"
	"github.com/classpulse/classpulse-backend/internal/scheduler"
	"github.com/classpulse/classpulse-backend/internal/service"
	"github.com/classpulse/classpulse-backend/internal/syncer"
	"github.com/classpulse/classpulse-backend/internal/validator"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreDriver).
		Msg("Starting ClassPulse Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Select KeyValueStore Backend ──────────────────────────────────
	var kv kvstore.Store
	switch cfg.StoreDriver {
	case "postgres":
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		kv = kvstore.NewPostgresStore(pool)
	case "redis":
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		kv = kvstore.NewRedisStore(rdb)
	case "memory":
		log.Warn().Msg("Using in-memory store, data will not survive restarts")
		kv = kvstore.NewMemoryStore()
	default:
		log.Fatal().Str("driver", cfg.StoreDriver).Msg("Unknown store driver")
	}

	// ─── Core Engine Wiring ────────────────────────────────────────────
	creds := credential.NewStore(kv)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	platformClient := platform.NewClient(httpClient, creds, cfg, log)

	hub := notification.NewHub(log)
	engine := notification.NewEngine(kv, hub, time.Now, log)

	settingsService := service.NewSettingsService(kv, log)
	portalService := service.NewPortalService(platformClient, time.Now, log)
	authService := service.NewAuthService(cfg)

	syncEngine := syncer.New(platformClient, engine, creds, settingsService.Get, cfg.Provider, time.Now, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Sync:         handler.NewSyncHandler(syncEngine, portalService),
		Notification: handler.NewNotificationHandler(engine),
		Course:       handler.NewCourseHandler(portalService),
		File:         handler.NewFileHandler(portalService),
		Setting:      handler.NewSettingHandler(settingsService),
		Alert:        handler.NewAlertHandler(hub, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Sync ─────────────────────────────────────────
	syncScheduler := scheduler.New(syncEngine, creds, cfg.Provider, log)
	if err := syncScheduler.Start(ctx, cfg.SyncCronSpec); err != nil {
		log.Fatal().Err(err).Msg("Failed to start sync scheduler")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the background sync scheduler and wait for a running cycle.
	syncScheduler.Stop()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
