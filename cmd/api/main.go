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

	"github.com/joho/godotenv"

	"github.com/fluxstudio/fluxstudio-go/internal/config"
	"github.com/fluxstudio/fluxstudio-go/internal/gemini"
	"github.com/fluxstudio/fluxstudio-go/internal/handler"
	"github.com/fluxstudio/fluxstudio-go/internal/middleware"
	"github.com/fluxstudio/fluxstudio-go/internal/repository"
	"github.com/fluxstudio/fluxstudio-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db); err != nil {
		slog.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	authService := service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
	)
	settingsService := service.NewSettingsService(repository.NewSettingsRepository(db), cfg.EncryptionKey)

	var limiter middleware.Limiter = middleware.NewMemoryLimiter(ctx, cfg.AuthRateRPS, cfg.AuthRateBurst)
	if cfg.RedisURL != "" {
		rdb, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, using in-process rate limiting", "error", err)
		} else {
			defer rdb.Close()
			limiter = middleware.WithFallback(
				middleware.NewRedisLimiter(rdb, "ratelimit:auth", cfg.AuthRateLimit, cfg.AuthRateWindow),
				limiter,
			)
			slog.Info("redis rate limiting enabled")
		}
	}

	router := handler.NewRouter(handler.RouterConfig{
		Auth:               authService,
		Settings:           settingsService,
		Gemini:             gemini.NewClient(cfg.GeminiBaseURL, cfg.GeminiTimeout),
		AuthLimiter:        limiter,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func setupLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if !cfg.IsProduction() {
		opts.Level = slog.LevelDebug
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}
