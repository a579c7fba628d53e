package profile

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/chris/vault-wallet/pkg/api"
	"github.com/chris/vault-wallet/pkg/apperrors"
	"github.com/chris/vault-wallet/pkg/handlers/respond"
	"github.com/chris/vault-wallet/pkg/mapping"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Store is what the profile handlers need from storage.
type Store interface {
	storage.ProfileStore
	storage.ActivityStore
}

// ProfileHandler holds the dependencies for linked bank and settings handlers.
type ProfileHandler struct {
	Store  Store
	Logger *slog.Logger
	Now    func() time.Time
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(store Store, logger *slog.Logger) *ProfileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileHandler{Store: store, Logger: logger, Now: time.Now}
}

// AddBank handles POST /api/profile/banks.
func (h *ProfileHandler) AddBank(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	var body api.NewLinkedBank
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}

	bankName := respond.Text(body.BankName)
	last4 := strings.TrimSpace(body.AccountLast4)
	if bankName == "" || !fourDigits(last4) {
		respond.Invalid(w, r, "Invalid bank payload")
		return
	}

	now := h.Now().UTC()
	bank := &models.LinkedBank{
		UserId:       userID,
		Id:           uuid.NewString(),
		BankName:     bankName,
		AccountLast4: last4,
		IsPrimary:    body.IsPrimary != nil && *body.IsPrimary,
		CreatedAt:    now,
	}
	if err := h.Store.AddLinkedBank(r.Context(), bank); err != nil {
		respond.Error(w, r, apperrors.Persistence(err))
		return
	}

	activityID := uuid.NewString()
	err := h.Store.AppendActivity(r.Context(), &models.ActivityRecord{
		UserId:       userID,
		SortKey:      models.ActivitySortKey(now, activityID),
		Id:           activityID,
		ActivityType: models.ActivityBankLinked,
		Direction:    models.DirectionInfo,
		Counterparty: &bankName,
		Note:         "Linked " + bankName + " ending in " + last4,
		OccurredAt:   now,
	})
	if err != nil {
		h.Logger.WarnContext(r.Context(), "failed to record bank activity",
			slog.String("user_id", userID),
			slog.Any("error", err))
	}
	respond.OK(w)
}

func fourDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, c := range s {
		if !unicode.IsDigit(c) {
			return false
		}
	}
	return true
}

// ListBanks handles GET /api/profile/banks.
func (h *ProfileHandler) ListBanks(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	banks, err := h.Store.ListLinkedBanks(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, apperrors.Persistence(err))
		return
	}
	out := make([]api.LinkedBank, len(banks))
	for i := range banks {
		out[i] = mapping.ToApiLinkedBank(&banks[i])
	}
	respond.JSON(w, http.StatusOK, out)
}

// UpdateSettings handles POST /api/profile/settings.
func (h *ProfileHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	var body api.ProfileSettings
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}
	body.UpdatedAt = nil
	body.FullName = respond.OptionalText(body.FullName)
	body.BusinessName = respond.OptionalText(body.BusinessName)
	body.FavoritePayee = respond.OptionalText(body.FavoritePayee)

	patch, err := mapping.ToDomainSettingsPatch(userID, &body)
	if err != nil {
		respond.Error(w, r, apperrors.Wrap(apperrors.ErrInvalidPayload, "Invalid daily send limit", err))
		return
	}
	if len(patch.Fields()) == 0 {
		respond.Invalid(w, r, "No valid fields to update")
		return
	}

	if _, err := h.Store.UpsertSettings(r.Context(), patch); err != nil {
		respond.Error(w, r, apperrors.Persistence(err))
		return
	}
	respond.OK(w)
}

// GetSettings handles GET /api/profile/settings.
func (h *ProfileHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	settings, err := h.Store.GetSettings(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, apperrors.Persistence(err))
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiProfileSettings(settings))
}

// Routes mounts the profile endpoints.
func (h *ProfileHandler) Routes(r chi.Router) {
	r.Post("/profile/banks", h.AddBank)
	r.Get("/profile/banks", h.ListBanks)
	r.Post("/profile/settings", h.UpdateSettings)
	r.Get("/profile/settings", h.GetSettings)
}
