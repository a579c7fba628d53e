package activity_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chris/vault-wallet/pkg/api"
	"github.com/chris/vault-wallet/pkg/auth"
	"github.com/chris/vault-wallet/pkg/handlers/activity"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func get(h *activity.ActivityHandler, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/activity"+query, nil)
	req = req.WithContext(auth.WithUserID(req.Context(), "user-1"))
	rr := httptest.NewRecorder()
	h.ListActivity(rr, req)
	return rr
}

func TestListActivity(t *testing.T) {
	alex := "Alex"
	records := []models.ActivityRecord{{
		Id:           "a1",
		ActivityType: models.ActivityGroupVaultContribution,
		Direction:    models.DirectionOut,
		Amount:       5000,
		Counterparty: &alex,
		Note:         "Added contribution to group vault",
		OccurredAt:   time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}}

	t.Run("Success", func(t *testing.T) {
		store := mocks.NewStorage(t)
		store.On("ListActivity", mock.Anything, "user-1", int32(activity.DefaultLimit)).Return(records, nil)

		rr := get(activity.NewActivityHandler(store), "")

		require.Equal(t, http.StatusOK, rr.Code)
		var out []api.Activity
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		require.Len(t, out, 1)
		assert.Equal(t, "group_vault_contribution", out[0].ActivityType)
		assert.Equal(t, "50", out[0].Amount.String())
		assert.Equal(t, "Alex", *out[0].Counterparty)
	})

	t.Run("Limit Is Capped", func(t *testing.T) {
		store := mocks.NewStorage(t)
		store.On("ListActivity", mock.Anything, "user-1", int32(activity.MaxLimit)).Return([]models.ActivityRecord{}, nil)

		rr := get(activity.NewActivityHandler(store), "?limit=500")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("Bad Limit", func(t *testing.T) {
		rr := get(activity.NewActivityHandler(mocks.NewStorage(t)), "?limit=-3")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Storage Error", func(t *testing.T) {
		store := mocks.NewStorage(t)
		store.On("ListActivity", mock.Anything, "user-1", int32(5)).Return(nil, errors.New("boom"))

		rr := get(activity.NewActivityHandler(store), "?limit=5")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
