// Package vaults serves the personal vault, transfer and social endpoints.
// Each validates the request and calls one ledger procedure.
package vaults

import (
	"net/http"
	"strings"
	"time"

	"github.com/chris/vault-wallet/pkg/api"
	"github.com/chris/vault-wallet/pkg/apperrors"
	"github.com/chris/vault-wallet/pkg/handlers/respond"
	"github.com/chris/vault-wallet/pkg/ledger"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/go-chi/chi/v5"
)

// VaultsHandler holds the dependencies for the ledger pass-through handlers.
type VaultsHandler struct {
	Ledger ledger.Gateway
}

// NewVaultsHandler creates a new VaultsHandler.
func NewVaultsHandler(l ledger.Gateway) *VaultsHandler {
	return &VaultsHandler{Ledger: l}
}

// CreateVault handles POST /api/vault/create.
func (h *VaultsHandler) CreateVault(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	var body api.NewVault
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}

	v := ledger.NewVault{
		Name:            respond.Text(body.Name),
		ReleaseDate:     strings.TrimSpace(body.ReleaseDate),
		DestinationType: models.DestinationType(strings.TrimSpace(body.DestinationType)),
		DestinationName: respond.OptionalText(body.DestinationName),
		RoutingNumber:   respond.OptionalText(body.RoutingNumber),
		AccountNumber:   respond.OptionalText(body.AccountNumber),
	}
	if v.Name == "" || v.ReleaseDate == "" || v.DestinationType == "" {
		respond.Invalid(w, r, "Missing required fields")
		return
	}
	if _, err := time.Parse(models.DateLayout, v.ReleaseDate); err != nil {
		respond.Invalid(w, r, "Release date must be YYYY-MM-DD")
		return
	}
	if !v.DestinationType.Valid() {
		respond.Invalid(w, r, "Invalid destination type")
		return
	}
	if v.DestinationType == models.DestinationVendor &&
		(v.DestinationName == nil || v.RoutingNumber == nil || v.AccountNumber == nil) {
		respond.Invalid(w, r, "Vendor name, routing number, and account number are required")
		return
	}

	if err := h.Ledger.CreateVault(r.Context(), userID, v); err != nil {
		respond.Error(w, r, respond.LedgerError(err, "Vault not found"))
		return
	}
	respond.OK(w)
}

// FundVault handles POST /api/vault/fund.
func (h *VaultsHandler) FundVault(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	var body api.FundVault
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}

	amount, err := respond.Cents(body.Amount, "Invalid payload")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	f := ledger.VaultFunding{
		VaultID:   strings.TrimSpace(body.VaultId),
		Amount:    amount,
		Frequency: ledger.FrequencyOneTime,
	}
	if body.Frequency != nil && strings.TrimSpace(*body.Frequency) != "" {
		f.Frequency = ledger.Frequency(strings.TrimSpace(*body.Frequency))
	}
	if f.VaultID == "" || !f.Frequency.Valid() {
		respond.Invalid(w, r, "Invalid payload")
		return
	}
	if body.NextRunAt != nil && strings.TrimSpace(*body.NextRunAt) != "" {
		next, err := time.Parse(time.RFC3339, strings.TrimSpace(*body.NextRunAt))
		if err != nil {
			respond.Invalid(w, r, "Invalid payload")
			return
		}
		f.NextRunAt = &next
	}

	if err := h.Ledger.FundVault(r.Context(), userID, f); err != nil {
		respond.Error(w, r, respond.LedgerError(err, "Vault not found"))
		return
	}
	respond.OK(w)
}

// WithdrawVault handles POST /api/vault/withdraw.
func (h *VaultsHandler) WithdrawVault(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	var body api.WithdrawVault
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}

	amount, err := respond.Cents(body.Amount, "Invalid payload")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	wd := ledger.VaultWithdrawal{
		VaultID:      strings.TrimSpace(body.VaultId),
		Amount:       amount,
		Destination:  models.DestinationType(strings.TrimSpace(body.Destination)),
		Counterparty: respond.OptionalText(body.Counterparty),
	}
	if wd.VaultID == "" || !wd.Destination.Valid() {
		respond.Invalid(w, r, "Invalid payload")
		return
	}

	result, err := h.Ledger.WithdrawVault(r.Context(), userID, wd)
	if err != nil {
		respond.Error(w, r, respond.LedgerError(err, "Vault not found"))
		return
	}
	respond.JSON(w, http.StatusOK, api.VaultWithdrawal{Ok: true, Result: result})
}

// Transfer handles POST /api/transfer. Both accounts must belong to the caller.
func (h *VaultsHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	var body api.NewTransfer
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}

	amount, err := respond.Cents(body.Amount, "Invalid payload")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	t := ledger.Transfer{
		FromAccountID: strings.TrimSpace(body.FromAccountId),
		ToAccountID:   strings.TrimSpace(body.ToAccountId),
		Amount:        amount,
		Type:          ledger.TransferType(strings.TrimSpace(body.TransactionType)),
	}
	if t.FromAccountID == "" || t.ToAccountID == "" || !t.Type.Valid() {
		respond.Invalid(w, r, "Invalid payload")
		return
	}
	if t.FromAccountID == t.ToAccountID {
		respond.Invalid(w, r, "Accounts must be different")
		return
	}

	owned, err := h.Ledger.OwnsAccounts(r.Context(), userID, t.FromAccountID, t.ToAccountID)
	if err != nil {
		respond.Error(w, r, respond.LedgerError(err, "Account not found"))
		return
	}
	if !owned {
		respond.Error(w, r, apperrors.New(apperrors.ErrForbidden, "Invalid accounts"))
		return
	}

	if err := h.Ledger.TransferFunds(r.Context(), userID, t); err != nil {
		respond.Error(w, r, respond.LedgerError(err, "Account not found"))
		return
	}
	respond.OK(w)
}

// RequestPayment handles POST /api/social/request.
func (h *VaultsHandler) RequestPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	var body api.PaymentRequest
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}

	amount, err := respond.Cents(body.Amount, "Invalid payload")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	counterparty := respond.Text(body.Counterparty)
	if counterparty == "" {
		respond.Invalid(w, r, "Invalid payload")
		return
	}

	if err := h.Ledger.RequestPayment(r.Context(), userID, amount, counterparty); err != nil {
		respond.Error(w, r, respond.LedgerError(err, "Counterparty not found"))
		return
	}
	respond.OK(w)
}

// CreatePool handles POST /api/social/pool.
func (h *VaultsHandler) CreatePool(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	var body api.NewPool
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}

	amount, err := respond.Cents(body.Amount, "Invalid payload")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	title := respond.Text(body.Title)
	if title == "" {
		respond.Invalid(w, r, "Invalid payload")
		return
	}

	if err := h.Ledger.CreatePool(r.Context(), userID, amount, title); err != nil {
		respond.Error(w, r, respond.LedgerError(err, "Wallet not found"))
		return
	}
	respond.OK(w)
}

// Routes mounts the pass-through endpoints.
func (h *VaultsHandler) Routes(r chi.Router) {
	r.Post("/vault/create", h.CreateVault)
	r.Post("/vault/fund", h.FundVault)
	r.Post("/vault/withdraw", h.WithdrawVault)
	r.Post("/transfer", h.Transfer)
	r.Post("/social/request", h.RequestPayment)
	r.Post("/social/pool", h.CreatePool)
}
