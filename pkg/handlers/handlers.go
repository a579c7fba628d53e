// Package handlers assembles the HTTP API: the middleware chain, the health and
// metrics endpoints, and every resource handler under /api.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/chris/vault-wallet/pkg/auth"
	"github.com/chris/vault-wallet/pkg/handlers/activity"
	"github.com/chris/vault-wallet/pkg/handlers/groupvaults"
	"github.com/chris/vault-wallet/pkg/handlers/profile"
	"github.com/chris/vault-wallet/pkg/handlers/respond"
	"github.com/chris/vault-wallet/pkg/handlers/vaults"
	"github.com/chris/vault-wallet/pkg/handlers/wallets"
	"github.com/chris/vault-wallet/pkg/idempotency"
	"github.com/chris/vault-wallet/pkg/ledger"
	"github.com/chris/vault-wallet/pkg/metrics"
	vwmiddleware "github.com/chris/vault-wallet/pkg/middleware"
	"github.com/chris/vault-wallet/pkg/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config holds the router's dependencies. Metrics, RateLimiter and Idempotency
// are optional.
type Config struct {
	Store          storage.ApiStore
	Ledger         ledger.Gateway
	GroupVaults    groupvaults.Service
	Verifier       *auth.Verifier
	Metrics        *metrics.Metrics
	RateLimiter    *vwmiddleware.RateLimiter
	Idempotency    idempotency.Store
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

// NewRouter builds the API router.
func NewRouter(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(vwmiddleware.NewStructuredLogger(logger))
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(vwmiddleware.Metrics(cfg.Metrics))
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respond.OK(w)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cfg.Verifier.Middleware)
		r.Use(auth.RequireAuth)
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Handler)
		}
		if cfg.Idempotency != nil {
			ttl := cfg.IdempotencyTTL
			if ttl <= 0 {
				ttl = idempotency.DefaultTTL
			}
			r.Use(idempotency.Middleware(cfg.Idempotency, ttl, logger))
		}

		groupvaults.NewGroupVaultsHandler(cfg.GroupVaults).Routes(r)
		vaults.NewVaultsHandler(cfg.Ledger).Routes(r)
		wallets.NewWalletsHandler(cfg.Ledger, cfg.Store, logger).Routes(r)
		activity.NewActivityHandler(cfg.Store).Routes(r)
		profile.NewProfileHandler(cfg.Store, logger).Routes(r)
	})

	return r
}
