package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chris/vault-wallet/pkg/api"
	"github.com/chris/vault-wallet/pkg/apperrors"
	"github.com/chris/vault-wallet/pkg/ledger"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"Invalid Payload", apperrors.Invalid("Invalid payload"), http.StatusBadRequest, "invalid_payload", "Invalid payload"},
		{"Forbidden", apperrors.New(apperrors.ErrForbidden, "Group vault belongs to another user"), http.StatusForbidden, "forbidden", "Group vault belongs to another user"},
		{"Not Found", apperrors.New(apperrors.ErrNotFound, "Member not found"), http.StatusNotFound, "not_found", "Member not found"},
		{"Insufficient Funds", apperrors.New(apperrors.ErrInsufficientFunds, "Insufficient funds"), http.StatusUnprocessableEntity, "insufficient_funds", "Insufficient funds"},
		{"Exceeds Contribution", apperrors.New(apperrors.ErrExceedsContribution, "too much"), http.StatusUnprocessableEntity, "exceeds_contribution", "too much"},
		{"Not Yet Releasable", apperrors.New(apperrors.ErrNotYetReleasable, "later"), http.StatusConflict, "not_yet_releasable", "later"},
		{"Conflict", apperrors.New(apperrors.ErrConflict, "raced"), http.StatusConflict, "conflict", "raced"},
		{"Ledger Rejected", apperrors.New(apperrors.ErrLedgerRejected, "Vault is locked"), http.StatusBadRequest, "ledger_rejected", "Vault is locked"},
		{"Raw Error Is Hidden", apperrors.Persistence(errors.New("dynamodb timeout")), http.StatusInternalServerError, "persistence_failure", "Internal error"},
		{"Unknown Error", errors.New("boom"), http.StatusInternalServerError, "persistence_failure", "Internal error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Error(rr, httptest.NewRequest(http.MethodPost, "/api/x", nil), tc.err)

			assert.Equal(t, tc.wantStatus, rr.Code)
			var body api.Error
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.wantCode, body.Code)
			assert.Equal(t, tc.wantMessage, body.Error)
		})
	}
}

func TestDecode(t *testing.T) {
	var body api.GroupVaultMovement
	err := Decode(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":"abc"}`)), &body)
	assert.ErrorIs(t, err, apperrors.ErrInvalidPayload)

	err = Decode(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"member_name":"Alex","amount":12.5}`)), &body)
	require.NoError(t, err)
	assert.Equal(t, "12.5", body.Amount.String())
}

func TestText(t *testing.T) {
	assert.Equal(t, "Rent", Text("  <b>Rent</b> "))
	assert.Equal(t, "", Text("<script>alert(1)</script>"))
	assert.Nil(t, OptionalText(nil))
	blank := "  "
	assert.Nil(t, OptionalText(&blank))
}

func TestCents(t *testing.T) {
	c, err := Cents(decimal.RequireFromString("10.25"), "Invalid amount")
	require.NoError(t, err)
	assert.EqualValues(t, 1025, c)

	for _, raw := range []string{"0", "-1", "0.001"} {
		_, err := Cents(decimal.RequireFromString(raw), "Invalid amount")
		assert.ErrorIs(t, err, apperrors.ErrInvalidPayload, raw)
		assert.Equal(t, "Invalid amount", apperrors.Message(err))
	}
}

func TestID(t *testing.T) {
	assert.Equal(t, "", ID(openapi_types.UUID{}))
	id := uuid.New()
	assert.Equal(t, id.String(), ID(id))
}

func TestLedgerError(t *testing.T) {
	err := LedgerError(fmt.Errorf("failed to vault_fund: %w", ledger.Reject("Vault is locked")), "Vault not found")
	assert.ErrorIs(t, err, apperrors.ErrLedgerRejected)
	assert.Equal(t, "Vault is locked", apperrors.Message(err))

	err = LedgerError(ledger.ErrNotFound, "Vault not found")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "Vault not found", apperrors.Message(err))

	assert.ErrorIs(t, LedgerError(ledger.ErrInsufficientFunds, ""), apperrors.ErrInsufficientFunds)
	assert.ErrorIs(t, LedgerError(errors.New("connection reset"), ""), apperrors.ErrPersistenceFailure)
}
