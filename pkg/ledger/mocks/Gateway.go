package mocks

import (
	"context"
	"encoding/json"

	"github.com/chris/vault-wallet/pkg/ledger"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/stretchr/testify/mock"
)

// Gateway is a mock type for the ledger.Gateway type
type Gateway struct {
	mock.Mock
}

var _ ledger.Gateway = (*Gateway)(nil)

// GetWallet provides a mock function with given fields: ctx, userID
func (_m *Gateway) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	ret := _m.Called(ctx, userID)

	var r0 *models.Wallet
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Wallet)
	}
	return r0, ret.Error(1)
}

// AdjustWallet provides a mock function with given fields: ctx, userID, delta, reference
func (_m *Gateway) AdjustWallet(ctx context.Context, userID string, delta models.Cents, reference string) error {
	ret := _m.Called(ctx, userID, delta, reference)
	return ret.Error(0)
}

// AdjustmentExists provides a mock function with given fields: ctx, reference
func (_m *Gateway) AdjustmentExists(ctx context.Context, reference string) (bool, error) {
	ret := _m.Called(ctx, reference)
	return ret.Bool(0), ret.Error(1)
}

// TopUpWallet provides a mock function with given fields: ctx, userID, amount
func (_m *Gateway) TopUpWallet(ctx context.Context, userID string, amount models.Cents) error {
	ret := _m.Called(ctx, userID, amount)
	return ret.Error(0)
}

// CreateVault provides a mock function with given fields: ctx, userID, v
func (_m *Gateway) CreateVault(ctx context.Context, userID string, v ledger.NewVault) error {
	ret := _m.Called(ctx, userID, v)
	return ret.Error(0)
}

// FundVault provides a mock function with given fields: ctx, userID, f
func (_m *Gateway) FundVault(ctx context.Context, userID string, f ledger.VaultFunding) error {
	ret := _m.Called(ctx, userID, f)
	return ret.Error(0)
}

// WithdrawVault provides a mock function with given fields: ctx, userID, w
func (_m *Gateway) WithdrawVault(ctx context.Context, userID string, w ledger.VaultWithdrawal) (json.RawMessage, error) {
	ret := _m.Called(ctx, userID, w)

	var r0 json.RawMessage
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(json.RawMessage)
	}
	return r0, ret.Error(1)
}

// OwnsAccounts provides a mock function with given fields: ctx, userID, accountIDs
func (_m *Gateway) OwnsAccounts(ctx context.Context, userID string, accountIDs ...string) (bool, error) {
	ret := _m.Called(ctx, userID, accountIDs)
	return ret.Bool(0), ret.Error(1)
}

// TransferFunds provides a mock function with given fields: ctx, userID, t
func (_m *Gateway) TransferFunds(ctx context.Context, userID string, t ledger.Transfer) error {
	ret := _m.Called(ctx, userID, t)
	return ret.Error(0)
}

// RequestPayment provides a mock function with given fields: ctx, userID, amount, counterparty
func (_m *Gateway) RequestPayment(ctx context.Context, userID string, amount models.Cents, counterparty string) error {
	ret := _m.Called(ctx, userID, amount, counterparty)
	return ret.Error(0)
}

// CreatePool provides a mock function with given fields: ctx, userID, amount, title
func (_m *Gateway) CreatePool(ctx context.Context, userID string, amount models.Cents, title string) error {
	ret := _m.Called(ctx, userID, amount, title)
	return ret.Error(0)
}

// NewGateway creates a new instance of Gateway. It also registers a testing
// interface on the mock and a cleanup function to assert the mocks expectations.
func NewGateway(t interface {
	mock.TestingT
	Cleanup(func())
}) *Gateway {
	m := &Gateway{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
