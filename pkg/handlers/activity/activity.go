package activity

import (
	"net/http"
	"strconv"

	"github.com/chris/vault-wallet/pkg/api"
	"github.com/chris/vault-wallet/pkg/apperrors"
	"github.com/chris/vault-wallet/pkg/handlers/respond"
	"github.com/chris/vault-wallet/pkg/mapping"
	"github.com/chris/vault-wallet/pkg/storage"
	"github.com/go-chi/chi/v5"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ActivityHandler holds the dependencies for activity-related handlers.
type ActivityHandler struct {
	Store storage.ActivityStore
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(store storage.ActivityStore) *ActivityHandler {
	return &ActivityHandler{Store: store}
}

// ListActivity handles GET /api/activity?limit=N.
func (h *ActivityHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	params, err := parseParams(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	limit := int32(DefaultLimit)
	if params.Limit != nil {
		limit = int32(min(*params.Limit, MaxLimit))
	}

	records, err := h.Store.ListActivity(r.Context(), userID, limit)
	if err != nil {
		respond.Error(w, r, apperrors.Persistence(err))
		return
	}

	out := make([]api.Activity, len(records))
	for i := range records {
		out[i] = mapping.ToApiActivity(&records[i])
	}
	respond.JSON(w, http.StatusOK, out)
}

func parseParams(r *http.Request) (api.ListActivityParams, error) {
	var params api.ListActivityParams
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return params, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return params, apperrors.Invalid("limit must be a positive integer")
	}
	params.Limit = &limit
	return params, nil
}

// Routes mounts the activity endpoint.
func (h *ActivityHandler) Routes(r chi.Router) {
	r.Get("/activity", h.ListActivity)
}
