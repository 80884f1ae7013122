// Package main запускает HTTP-сервер сервиса учёта дебиторской задолженности.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/piutang-system/internal/cache"
	"github.com/mmeshcher/piutang-system/internal/config"
	"github.com/mmeshcher/piutang-system/internal/handler"
	"github.com/mmeshcher/piutang-system/internal/metrics"
	"github.com/mmeshcher/piutang-system/internal/middleware"
	"github.com/mmeshcher/piutang-system/internal/repository"
	"github.com/mmeshcher/piutang-system/internal/service"
)

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

func main() {
	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger initialization error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sugar := logger.Sugar()

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	var reportCache *cache.Cache
	if cfg.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		defer client.Close()

		reportCache = cache.New(client, cfg.ReportCacheTTL, logger)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := reportCache.Ping(pingCtx); err != nil {
			// Отчёты строятся без кэша, пока Redis недоступен.
			sugar.Warnw("redis unavailable", "addr", cfg.RedisAddress, "error", err.Error())
		}
		cancel()
	}

	m := metrics.New()

	svc := service.NewService(repo, reportCache, m, logger)
	defer svc.Close()

	if cfg.SessionSecret == "" {
		sugar.Warn("SESSION_SECRET is empty, sessions will not survive restart")
	}
	authMiddleware := middleware.NewAuthMiddleware(cfg.SessionSecret)
	h := handler.NewHandler(svc, logger, authMiddleware, m, cfg.RateLimitPerMinute)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Фоновая сверка статусов оплаты с суммами платежей
	g.Go(func() error {
		svc.StartStatusReconciler(ctx, cfg.ReconcileInterval)
		return nil
	})

	g.Go(func() error {
		sugar.Infow("starting piutang server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
