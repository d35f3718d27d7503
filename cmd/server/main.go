package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/iudanet/globalconnect/internal/server/cleanup"
	"github.com/iudanet/globalconnect/internal/server/config"
	"github.com/iudanet/globalconnect/internal/server/handlers"
	"github.com/iudanet/globalconnect/internal/server/jwt"
	"github.com/iudanet/globalconnect/internal/server/mailer"
	"github.com/iudanet/globalconnect/internal/server/metrics"
	"github.com/iudanet/globalconnect/internal/server/middleware"
	"github.com/iudanet/globalconnect/internal/server/router"
	"github.com/iudanet/globalconnect/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	args := os.Args[1:]

	// Show version and exit if requested
	if slices.Contains(args, "-version") || slices.Contains(args, "--version") {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	tokens := jwt.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	authHandler := handlers.NewAuthHandler(
		logger,
		store,
		store,
		tokens,
		mailer.New(cfg.Mail, logger),
		collector,
		handlers.AuthConfig{
			NewResetToken:    jwt.NewOpaqueToken,
			ResetTokenTTL:    cfg.ResetTokenTTL,
			ExposeResetToken: cfg.ExposeResetToken,
		},
	)
	if cfg.ExposeResetToken {
		logger.Warn("reset tokens are returned in API responses, do not use in production")
	}

	// Подбор пароля и спам письмами ограничиваются строже
	authLimits := make([]middleware.PathRateLimit, 0, 3)
	for _, path := range []string{"/api/auth/login", "/api/auth/register", "/api/auth/forgot-password"} {
		authLimits = append(authLimits, middleware.PathRateLimit{
			Path:   path,
			Rate:   cfg.AuthRateLimit,
			Window: cfg.RateWindow,
		})
	}
	limiter := middleware.NewPathRateLimiter(authLimits, cfg.RateLimit, cfg.RateWindow, logger)
	defer limiter.Stop()

	job := cleanup.NewJob(store, collector, logger)
	if err := job.Start(ctx, cfg.CleanupSchedule); err != nil {
		return err
	}
	defer job.Stop()

	srv := &http.Server{
		Addr: cfg.Address,
		Handler: router.New(router.Deps{
			Logger:      logger,
			Auth:        authHandler,
			Health:      handlers.NewHealthHandler(logger, store, Version),
			Validator:   tokens,
			Metrics:     collector,
			Gatherer:    reg,
			RateLimiter: limiter,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("address", cfg.Address),
			slog.String("version", Version),
			slog.String("database", cfg.DatabasePath),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server", slog.Duration("timeout", cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

func printVersion() {
	fmt.Printf("GlobalConnect Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
