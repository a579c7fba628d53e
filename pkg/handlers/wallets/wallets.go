package wallets

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/chris/vault-wallet/pkg/api"
	"github.com/chris/vault-wallet/pkg/handlers/respond"
	"github.com/chris/vault-wallet/pkg/ledger"
	"github.com/chris/vault-wallet/pkg/mapping"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/money"
	"github.com/chris/vault-wallet/pkg/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// DemoCash is the amount credited by the demo cash button.
const DemoCash models.Cents = 1_000_000

// WalletsHandler holds the dependencies for wallet-related handlers.
type WalletsHandler struct {
	Ledger ledger.WalletLedger
	Store  storage.ActivityStore
	Logger *slog.Logger
	Now    func() time.Time
}

// NewWalletsHandler creates a new WalletsHandler.
func NewWalletsHandler(l ledger.WalletLedger, store storage.ActivityStore, logger *slog.Logger) *WalletsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WalletsHandler{Ledger: l, Store: store, Logger: logger, Now: time.Now}
}

// GetWallet handles GET /api/wallet.
func (h *WalletsHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	wallet, err := h.Ledger.GetWallet(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, respond.LedgerError(err, "Wallet not found"))
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiWallet(wallet))
}

// TopUp handles POST /api/vault/top-up.
func (h *WalletsHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	var body api.TopUp
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}
	amount, err := respond.Cents(body.Amount, "Invalid amount")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.Ledger.TopUpWallet(r.Context(), userID, amount); err != nil {
		respond.Error(w, r, respond.LedgerError(err, "Wallet not found"))
		return
	}
	h.recordActivity(r.Context(), userID, models.ActivityWalletTopUp, amount, "Topped up wallet "+money.Format(amount))
	respond.OK(w)
}

// AddDemoCash handles POST /api/profile/demo-cash.
func (h *WalletsHandler) AddDemoCash(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	if err := h.Ledger.TopUpWallet(r.Context(), userID, DemoCash); err != nil {
		respond.Error(w, r, respond.LedgerError(err, "Wallet not found"))
		return
	}
	h.recordActivity(r.Context(), userID, models.ActivityDemoCash, DemoCash, "Added demo cash")
	respond.OK(w)
}

// recordActivity logs instead of failing: the money already moved.
func (h *WalletsHandler) recordActivity(ctx context.Context, userID string, activityType models.ActivityType, amount models.Cents, note string) {
	id := uuid.NewString()
	now := h.Now().UTC()
	err := h.Store.AppendActivity(ctx, &models.ActivityRecord{
		UserId:       userID,
		SortKey:      models.ActivitySortKey(now, id),
		Id:           id,
		ActivityType: activityType,
		Direction:    models.DirectionIn,
		Amount:       amount,
		Note:         note,
		OccurredAt:   now,
	})
	if err != nil {
		h.Logger.WarnContext(ctx, "failed to record wallet activity",
			slog.String("user_id", userID),
			slog.String("activity_type", string(activityType)),
			slog.Any("error", err))
	}
}

// Routes mounts the wallet endpoints.
func (h *WalletsHandler) Routes(r chi.Router) {
	r.Get("/wallet", h.GetWallet)
	r.Post("/vault/top-up", h.TopUp)
	r.Post("/profile/demo-cash", h.AddDemoCash)
}
