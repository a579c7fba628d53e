package vaults_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chris/vault-wallet/pkg/api"
	"github.com/chris/vault-wallet/pkg/auth"
	"github.com/chris/vault-wallet/pkg/handlers/vaults"
	"github.com/chris/vault-wallet/pkg/ledger"
	"github.com/chris/vault-wallet/pkg/ledger/mocks"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const user = "user-1"

func call(t *testing.T, fn http.HandlerFunc, body string) (*httptest.ResponseRecorder, api.Error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req = req.WithContext(auth.WithUserID(req.Context(), user))
	rr := httptest.NewRecorder()
	fn(rr, req)

	var e api.Error
	if rr.Code != http.StatusOK {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e))
	}
	return rr, e
}

func TestCreateVault(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		l := mocks.NewGateway(t)
		l.On("CreateVault", mock.Anything, user, mock.MatchedBy(func(v ledger.NewVault) bool {
			return v.Name == "Car" && v.DestinationType == models.DestinationBank && v.RoutingNumber == nil
		})).Return(nil)
		h := vaults.NewVaultsHandler(l)

		rr, _ := call(t, h.CreateVault, `{"name":"Car","release_date":"2026-05-01","destination_type":"bank"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
	})

	t.Run("Validation", func(t *testing.T) {
		tests := []struct {
			name, body, wantMsg string
		}{
			{"Missing Fields", `{"name":"Car"}`, "Missing required fields"},
			{"Vendor Details", `{"name":"Car","release_date":"2026-05-01","destination_type":"vendor","destination_name":"Dealer"}`, "Vendor name, routing number, and account number are required"},
			{"Bad Destination", `{"name":"Car","release_date":"2026-05-01","destination_type":"cash"}`, "Invalid destination type"},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				h := vaults.NewVaultsHandler(mocks.NewGateway(t))
				rr, e := call(t, h.CreateVault, tc.body)
				assert.Equal(t, http.StatusBadRequest, rr.Code)
				assert.Equal(t, tc.wantMsg, e.Error)
			})
		}
	})

	t.Run("Ledger Rejected", func(t *testing.T) {
		l := mocks.NewGateway(t)
		l.On("CreateVault", mock.Anything, user, mock.Anything).Return(fmt.Errorf("failed to vault_create: %w", ledger.Reject("Release date must be in the future")))
		h := vaults.NewVaultsHandler(l)

		rr, e := call(t, h.CreateVault, `{"name":"Car","release_date":"2020-05-01","destination_type":"bank"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "ledger_rejected", e.Code)
		assert.Equal(t, "Release date must be in the future", e.Error)
	})
}

func TestFundVault(t *testing.T) {
	t.Run("Defaults To One Time", func(t *testing.T) {
		l := mocks.NewGateway(t)
		l.On("FundVault", mock.Anything, user, ledger.VaultFunding{VaultID: "vault-1", Amount: 2550, Frequency: ledger.FrequencyOneTime}).Return(nil)
		h := vaults.NewVaultsHandler(l)

		rr, _ := call(t, h.FundVault, `{"vault_id":"vault-1","amount":25.50,"next_run_at":"  "}`)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Scheduled", func(t *testing.T) {
		l := mocks.NewGateway(t)
		l.On("FundVault", mock.Anything, user, mock.MatchedBy(func(f ledger.VaultFunding) bool {
			return f.Frequency == ledger.FrequencyMonthly && f.NextRunAt != nil && f.NextRunAt.Day() == 3
		})).Return(nil)
		h := vaults.NewVaultsHandler(l)

		rr, _ := call(t, h.FundVault, `{"vault_id":"vault-1","amount":10,"frequency":"monthly","next_run_at":"2026-02-03T09:00:00Z"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Invalid Payload", func(t *testing.T) {
		for _, body := range []string{
			`{"vault_id":"vault-1","amount":0}`,
			`{"amount":10}`,
			`{"vault_id":"vault-1","amount":10,"frequency":"daily"}`,
			`{"vault_id":"vault-1","amount":10,"next_run_at":"tomorrow"}`,
		} {
			h := vaults.NewVaultsHandler(mocks.NewGateway(t))
			rr, e := call(t, h.FundVault, body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, body)
			assert.Equal(t, "Invalid payload", e.Error, body)
		}
	})

	t.Run("Insufficient Funds", func(t *testing.T) {
		l := mocks.NewGateway(t)
		l.On("FundVault", mock.Anything, user, mock.Anything).Return(ledger.ErrInsufficientFunds)
		h := vaults.NewVaultsHandler(l)

		rr, e := call(t, h.FundVault, `{"vault_id":"vault-1","amount":10}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Equal(t, "insufficient_funds", e.Code)
	})
}

func TestWithdrawVault(t *testing.T) {
	l := mocks.NewGateway(t)
	l.On("WithdrawVault", mock.Anything, user, mock.MatchedBy(func(w ledger.VaultWithdrawal) bool {
		return w.Amount == 1000 && w.Destination == models.DestinationVendor && *w.Counterparty == "Landlord"
	})).Return(json.RawMessage(`{"fee":0.5}`), nil)
	h := vaults.NewVaultsHandler(l)

	rr, _ := call(t, h.WithdrawVault, `{"vault_id":"vault-1","amount":10,"destination":"vendor","counterparty":"Landlord"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true,"result":{"fee":0.5}}`, rr.Body.String())
}

func TestTransfer(t *testing.T) {
	body := `{"from_account_id":"acc-1","to_account_id":"acc-2","amount":5,"transaction_type":"deposit"}`

	t.Run("Success", func(t *testing.T) {
		l := mocks.NewGateway(t)
		l.On("OwnsAccounts", mock.Anything, user, []string{"acc-1", "acc-2"}).Return(true, nil)
		l.On("TransferFunds", mock.Anything, user, ledger.Transfer{FromAccountID: "acc-1", ToAccountID: "acc-2", Amount: 500, Type: ledger.TransferDeposit}).Return(nil)
		h := vaults.NewVaultsHandler(l)

		rr, _ := call(t, h.Transfer, body)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Same Account", func(t *testing.T) {
		h := vaults.NewVaultsHandler(mocks.NewGateway(t))
		rr, e := call(t, h.Transfer, `{"from_account_id":"acc-1","to_account_id":"acc-1","amount":5,"transaction_type":"deposit"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Accounts must be different", e.Error)
	})

	t.Run("Unknown Type", func(t *testing.T) {
		h := vaults.NewVaultsHandler(mocks.NewGateway(t))
		rr, _ := call(t, h.Transfer, `{"from_account_id":"acc-1","to_account_id":"acc-2","amount":5,"transaction_type":"gift"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Not Owned", func(t *testing.T) {
		l := mocks.NewGateway(t)
		l.On("OwnsAccounts", mock.Anything, user, []string{"acc-1", "acc-2"}).Return(false, nil)
		h := vaults.NewVaultsHandler(l)

		rr, e := call(t, h.Transfer, body)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "Invalid accounts", e.Error)
	})

	t.Run("Ledger Down", func(t *testing.T) {
		l := mocks.NewGateway(t)
		l.On("OwnsAccounts", mock.Anything, user, []string{"acc-1", "acc-2"}).Return(false, errors.New("connection refused"))
		h := vaults.NewVaultsHandler(l)

		rr, e := call(t, h.Transfer, body)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "persistence_failure", e.Code)
	})
}

func TestSocial(t *testing.T) {
	t.Run("Request Payment", func(t *testing.T) {
		l := mocks.NewGateway(t)
		l.On("RequestPayment", mock.Anything, user, models.Cents(1250), "Sam").Return(nil)
		h := vaults.NewVaultsHandler(l)

		rr, _ := call(t, h.RequestPayment, `{"amount":"12.50","counterparty":" <i>Sam</i> "}`)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Request Without Counterparty", func(t *testing.T) {
		h := vaults.NewVaultsHandler(mocks.NewGateway(t))
		rr, _ := call(t, h.RequestPayment, `{"amount":5}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Create Pool", func(t *testing.T) {
		l := mocks.NewGateway(t)
		l.On("CreatePool", mock.Anything, user, models.Cents(30000), "Cabin").Return(nil)
		h := vaults.NewVaultsHandler(l)

		rr, _ := call(t, h.CreatePool, `{"amount":300,"title":"Cabin"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestUnauthenticated(t *testing.T) {
	h := vaults.NewVaultsHandler(mocks.NewGateway(t))
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)).WithContext(context.Background())
	rr := httptest.NewRecorder()

	h.CreatePool(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
