package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/msomdec/todo-api/internal/config"
	"github.com/msomdec/todo-api/internal/domain"
	"github.com/msomdec/todo-api/internal/handler"
	"github.com/msomdec/todo-api/internal/logger"
	"github.com/msomdec/todo-api/internal/repository"
	"github.com/msomdec/todo-api/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *envFile)
		},
	}
}

// bootstrap loads configuration, installs the logger and opens a migrated store.
func bootstrap(ctx context.Context, envFile string) (*config.Config, domain.Database, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format))

	db, err := repository.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate store: %w", err)
	}
	slog.Info("database migrations applied", "driver", cfg.Store.Driver)
	return cfg, db, nil
}

func runServe(ctx context.Context, envFile string) error {
	cfg, db, err := bootstrap(ctx, envFile)
	if err != nil {
		return err
	}
	defer db.Close()

	authService := service.NewAuthService(db.Users(), cfg.Auth.JWTSecret, cfg.Auth.BcryptCost, cfg.Auth.TokenTTL)
	taskService := service.NewTaskService(db.Tasks())

	limiter, err := newRateLimiter(ctx, cfg.RateLimit)
	if err != nil {
		return err
	}
	if limiter != nil {
		defer limiter.Close()
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, taskService, handler.RouteOptions{
		Store:   db,
		Limiter: limiter,
		Metrics: handler.NewMetrics(),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler.Wrap(mux, cfg.Server.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// newRateLimiter returns nil when limiting is disabled. With a Redis address
// the budget is Burst requests per Burst/RPS window, shared across instances.
func newRateLimiter(ctx context.Context, cfg config.RateLimitConfig) (service.RateLimiter, error) {
	if cfg.RPS <= 0 || cfg.Burst <= 0 {
		slog.Info("rate limiting disabled")
		return nil, nil
	}

	if cfg.RedisAddr == "" {
		return service.NewTokenBucket(cfg.RPS, cfg.Burst), nil
	}

	window := max(time.Duration(float64(cfg.Burst)/cfg.RPS*float64(time.Second)), time.Second)
	limiter, err := service.NewRedisLimiter(ctx, &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, cfg.Burst, window)
	if err != nil {
		return nil, fmt.Errorf("connect rate limit redis: %w", err)
	}
	slog.Info("rate limiting via redis", "addr", cfg.RedisAddr, "limit", cfg.Burst, "window", window)
	return limiter, nil
}
