// Homework planner voice skill server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ashureev/homework-planner/internal/api"
	"github.com/ashureev/homework-planner/internal/config"
	"github.com/ashureev/homework-planner/internal/convlog"
	"github.com/ashureev/homework-planner/internal/dates"
	"github.com/ashureev/homework-planner/internal/dialogue"
	"github.com/ashureev/homework-planner/internal/middleware"
	"github.com/ashureev/homework-planner/internal/session"
	"github.com/ashureev/homework-planner/internal/store"
	"github.com/ashureev/homework-planner/internal/telemetry"
	"github.com/ashureev/homework-planner/internal/timezone"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, logCloser, err := telemetry.NewLogger(cfg.LogFile, slog.LevelInfo)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	slog.Info("Starting server", "port", cfg.Port, "store", cfg.StoreBackend, "version", version)

	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		Dir:            cfg.Telemetry.Dir,
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("Failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			slog.Error("Failed to shut down telemetry", "error", err)
		}
	}()

	repo, err := openRepository(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Storage connected")

	transcript, err := convlog.New(convlog.Config{
		Enabled:   cfg.ConversationLog.Enabled,
		Path:      cfg.ConversationLog.Path,
		QueueSize: cfg.ConversationLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize conversation logger", "error", err)
		os.Exit(1)
	}

	sessions := session.NewStore(repo, cfg.FlushTimeout)
	controller, err := dialogue.New(dialogue.Options{
		Sessions:   sessions,
		Timezones:  newTimezoneResolver(cfg),
		Dates:      dates.NewParser(),
		Transcript: transcript,
	})
	if err != nil {
		slog.Error("Failed to initialize dialogue controller", "error", err)
		os.Exit(1)
	}

	sm := api.NewSessionManager()
	skillHandler := api.NewSkillHandler(controller, cfg.MaxRequestBodySize)
	socketHandler := api.NewSocketHandler(controller, sm, cfg.SkillID, cfg.AllowedOrigins, cfg.MaxRequestBodySize)
	healthHandler := api.NewHealthHandler(repo, sm, cfg.HealthCheckTimeout)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	healthHandler.RegisterHealth(r)
	skillHandler.RegisterRoutes(r, middleware.VerifyApplication(cfg.SkillID, cfg.MaxRequestBodySize))
	r.Get("/ws/skill", socketHandler.ServeHTTP)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // sockets are long-lived
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store.StartRetentionWorker(ctx, repo, cfg.DataRetention)

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sm.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	// Pending session-end flushes must land before storage closes.
	sessions.Wait()
	if err := transcript.Close(); err != nil {
		slog.Error("Failed to close conversation logger", "error", err)
	}

	slog.Info("Server stopped successfully")
}

func openRepository(cfg *config.Config) (store.Repository, error) {
	if cfg.StoreBackend == config.BackendMemory {
		slog.Warn("Using in-memory storage; planner data will not survive restarts")
		return store.NewMemory(), nil
	}
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func newTimezoneResolver(cfg *config.Config) timezone.Resolver {
	if !cfg.Timezone.Lookup {
		slog.Info("Timezone lookup disabled, using default", "timezone", cfg.Timezone.Default)
		return timezone.Static{Zone: cfg.Timezone.Default}
	}
	if cfg.Timezone.APIURL != "" {
		slog.Info("Timezone lookup endpoint overridden", "url", cfg.Timezone.APIURL)
	}
	return timezone.NewHTTPResolver(cfg.Timezone.APIURL, cfg.Timezone.APIToken, cfg.Timezone.Default, cfg.Timezone.Timeout)
}
