package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"hanami-dashboard/internal/analytics"
	"hanami-dashboard/internal/config"
	"hanami-dashboard/internal/dashboard"
	"hanami-dashboard/internal/middleware"
	"hanami-dashboard/internal/observability"
	"hanami-dashboard/internal/remote"
	"hanami-dashboard/internal/server"
)

const csvLoadTimeout = 30 * time.Second

func main() {
	// A missing .env is fine; the environment itself still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"addr", cfg.Address(),
		"upstream", cfg.Upstream.URL,
	)

	data := analytics.NewDataset()
	ctx, cancel := context.WithTimeout(context.Background(), csvLoadTimeout)
	defer cancel()

	if err := data.LoadFromCSV(ctx, cfg.Dataset.CSVFile); err != nil {
		// An empty dataset is still serviceable: uploads can populate it.
		logger.Warn("starting without seed data", "file", cfg.Dataset.CSVFile, "error", err)
	}

	upstream := remote.NewClient(cfg.Upstream.URL, cfg.Upstream.Timeout)
	dash := dashboard.New(data, upstream)

	srv := server.NewServer(data, dash, logger)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      middlewareChain(srv),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook("rate-limiter", func(ctx context.Context) error {
		rateLimiter.Stop()
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
