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

	"github.com/chris/vault-wallet/pkg/auth"
	"github.com/chris/vault-wallet/pkg/bootstrap"
	"github.com/chris/vault-wallet/pkg/config"
	"github.com/chris/vault-wallet/pkg/groupvault"
	"github.com/chris/vault-wallet/pkg/handlers"
	"github.com/chris/vault-wallet/pkg/idempotency"
	"github.com/chris/vault-wallet/pkg/logging"
	"github.com/chris/vault-wallet/pkg/metrics"
	"github.com/chris/vault-wallet/pkg/middleware"
	"github.com/chris/vault-wallet/pkg/reconcile"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger, closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		slog.Error("failed to set up logging", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.RequireJWTSecret(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backends, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer backends.Close()

	m := metrics.New()
	svc := groupvault.NewService(backends.Store, backends.Ledger, logger)
	svc.Metrics = m

	var idem idempotency.Store = idempotency.NewMemoryStore()
	if cfg.RedisURL != "" {
		redisStore, err := idempotency.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return err
		}
		if err := redisStore.Ping(ctx); err != nil {
			return err
		}
		idem = redisStore
		logger.Info("idempotency keys stored in redis")
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	limiter.StartCleanup(5*time.Minute, ctx.Done())

	if cfg.ReconcileCron != "" {
		reconciler := &reconcile.Reconciler{
			Store:     backends.Store,
			Resumer:   svc,
			Metrics:   m,
			Logger:    logger.With(slog.String("component", "reconciler")),
			Threshold: cfg.StuckThreshold,
			Repair:    cfg.ReconcileRepair,
		}
		c := cron.New()
		_, err := c.AddFunc(cfg.ReconcileCron, func() {
			if _, err := reconciler.RunOnce(ctx); err != nil {
				logger.Error("reconciliation failed", slog.Any("error", err))
			}
		})
		if err != nil {
			return err
		}
		c.Start()
		defer c.Stop()
		logger.Info("reconciler scheduled", slog.String("cron", cfg.ReconcileCron))
	}

	router := handlers.NewRouter(handlers.Config{
		Store:       backends.Store,
		Ledger:      backends.Ledger,
		GroupVaults: svc,
		Verifier:    auth.NewVerifier(cfg.JWTSecret),
		Metrics:     m,
		RateLimiter: limiter,
		Idempotency: idem,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
