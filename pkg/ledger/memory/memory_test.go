package memory

import (
	"context"
	"testing"

	"github.com/chris/vault-wallet/pkg/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustWallet(t *testing.T) {
	ctx := context.Background()

	t.Run("Idempotent By Reference", func(t *testing.T) {
		l := New()
		l.SeedWallet("user-1", 10000)

		require.NoError(t, l.AdjustWallet(ctx, "user-1", -2500, "ref-1"))
		require.NoError(t, l.AdjustWallet(ctx, "user-1", -2500, "ref-1"))

		w, err := l.GetWallet(ctx, "user-1")
		require.NoError(t, err)
		assert.EqualValues(t, 7500, w.CashBalance)

		exists, err := l.AdjustmentExists(ctx, "ref-1")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Insufficient Funds", func(t *testing.T) {
		l := New()
		l.SeedWallet("user-1", 100)

		err := l.AdjustWallet(ctx, "user-1", -101, "ref-1")

		assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
		exists, _ := l.AdjustmentExists(ctx, "ref-1")
		assert.False(t, exists)
	})

	t.Run("Not Found", func(t *testing.T) {
		l := New()
		_, err := l.GetWallet(ctx, "ghost")
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})
}

func TestVaultLifecycle(t *testing.T) {
	ctx := context.Background()
	l := New()
	require.NoError(t, l.TopUpWallet(ctx, "user-1", 5000))

	require.NoError(t, l.CreateVault(ctx, "user-1", ledger.NewVault{Name: "Trip", ReleaseDate: "2030-01-01", DestinationType: "bank"}))
	ids := l.VaultIDs("user-1")
	require.Len(t, ids, 1)

	require.NoError(t, l.FundVault(ctx, "user-1", ledger.VaultFunding{VaultID: ids[0], Amount: 3000}))
	err := l.FundVault(ctx, "user-1", ledger.VaultFunding{VaultID: ids[0], Amount: 3000})
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	result, err := l.WithdrawVault(ctx, "user-1", ledger.VaultWithdrawal{VaultID: ids[0], Amount: 1000, Destination: "bank"})
	require.NoError(t, err)
	assert.Contains(t, string(result), `"remaining":2000`)

	_, err = l.WithdrawVault(ctx, "user-2", ledger.VaultWithdrawal{VaultID: ids[0], Amount: 1000, Destination: "bank"})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestTransferFunds(t *testing.T) {
	ctx := context.Background()
	l := New()
	l.SeedAccount("user-1", "checking", 1000)
	l.SeedAccount("user-1", "savings", 0)
	l.SeedAccount("user-2", "other", 0)

	owned, err := l.OwnsAccounts(ctx, "user-1", "checking", "savings")
	require.NoError(t, err)
	assert.True(t, owned)

	owned, err = l.OwnsAccounts(ctx, "user-1", "checking", "other")
	require.NoError(t, err)
	assert.False(t, owned)

	require.NoError(t, l.TransferFunds(ctx, "user-1", ledger.Transfer{FromAccountID: "checking", ToAccountID: "savings", Amount: 400, Type: ledger.TransferDeposit}))
	assert.EqualValues(t, 600, l.AccountBalance("checking"))
	assert.EqualValues(t, 400, l.AccountBalance("savings"))
}
