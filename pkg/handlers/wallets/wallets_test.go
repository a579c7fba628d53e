package wallets_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chris/vault-wallet/pkg/api"
	"github.com/chris/vault-wallet/pkg/auth"
	"github.com/chris/vault-wallet/pkg/handlers/wallets"
	"github.com/chris/vault-wallet/pkg/ledger"
	ledgermocks "github.com/chris/vault-wallet/pkg/ledger/mocks"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func request(method, body string) *http.Request {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	return req.WithContext(auth.WithUserID(req.Context(), "user-c"))
}

func TestGetWallet(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		l := ledgermocks.NewGateway(t)
		l.On("GetWallet", mock.Anything, "user-c").Return(&models.Wallet{UserId: "user-c", CashBalance: 12345}, nil)
		h := wallets.NewWalletsHandler(l, mocks.NewStorage(t), nil)

		rr := httptest.NewRecorder()
		h.GetWallet(rr, request(http.MethodGet, ""))

		require.Equal(t, http.StatusOK, rr.Code)
		var wallet api.Wallet
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &wallet))
		assert.Equal(t, "123.45", wallet.CashBalance.String())
	})

	t.Run("Not Found", func(t *testing.T) {
		l := ledgermocks.NewGateway(t)
		l.On("GetWallet", mock.Anything, "user-c").Return(nil, ledger.ErrNotFound)
		h := wallets.NewWalletsHandler(l, mocks.NewStorage(t), nil)

		rr := httptest.NewRecorder()
		h.GetWallet(rr, request(http.MethodGet, ""))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestTopUp(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		l := ledgermocks.NewGateway(t)
		l.On("TopUpWallet", mock.Anything, "user-c", models.Cents(5000)).Return(nil)
		store := mocks.NewStorage(t)
		store.On("AppendActivity", mock.Anything, mock.MatchedBy(func(a *models.ActivityRecord) bool {
			return a.ActivityType == models.ActivityWalletTopUp && a.Amount == 5000 && a.Note == "Topped up wallet $50.00"
		})).Return(nil)
		h := wallets.NewWalletsHandler(l, store, nil)

		rr := httptest.NewRecorder()
		h.TopUp(rr, request(http.MethodPost, `{"amount":50}`))

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Invalid Amount", func(t *testing.T) {
		h := wallets.NewWalletsHandler(ledgermocks.NewGateway(t), mocks.NewStorage(t), nil)

		rr := httptest.NewRecorder()
		h.TopUp(rr, request(http.MethodPost, `{"amount":-5}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid amount")
	})

	t.Run("Activity Failure Still Succeeds", func(t *testing.T) {
		l := ledgermocks.NewGateway(t)
		l.On("TopUpWallet", mock.Anything, "user-c", models.Cents(100)).Return(nil)
		store := mocks.NewStorage(t)
		store.On("AppendActivity", mock.Anything, mock.Anything).Return(errors.New("throttled"))
		h := wallets.NewWalletsHandler(l, store, nil)

		rr := httptest.NewRecorder()
		h.TopUp(rr, request(http.MethodPost, `{"amount":1}`))

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestAddDemoCash(t *testing.T) {
	now := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	l := ledgermocks.NewGateway(t)
	l.On("TopUpWallet", mock.Anything, "user-c", wallets.DemoCash).Return(nil)
	store := mocks.NewStorage(t)
	store.On("AppendActivity", mock.Anything, mock.MatchedBy(func(a *models.ActivityRecord) bool {
		return a.ActivityType == models.ActivityDemoCash && a.OccurredAt.Equal(now) && strings.HasPrefix(a.SortKey, "2025-02-01T08:00:00Z#")
	})).Return(nil)
	h := wallets.NewWalletsHandler(l, store, nil)
	h.Now = func() time.Time { return now }

	rr := httptest.NewRecorder()
	h.AddDemoCash(rr, request(http.MethodPost, ""))

	assert.Equal(t, http.StatusOK, rr.Code)
}
