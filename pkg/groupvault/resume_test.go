package groupvault

import (
	"context"
	"errors"
	"testing"

	"github.com/chris/vault-wallet/pkg/apperrors"
	"github.com/chris/vault-wallet/pkg/ledger"
	ledgermocks "github.com/chris/vault-wallet/pkg/ledger/mocks"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/storage"
	storagemocks "github.com/chris/vault-wallet/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestContributeFailurePaths(t *testing.T) {
	ctx := context.Background()
	vault := &models.GroupVault{Id: "v1", UserId: owner, ReleaseDate: "2025-01-01"}
	in := Movement{UserID: owner, GroupVaultID: "v1", MemberName: "You", Amount: 500}

	t.Run("Ledger Rejects Debit", func(t *testing.T) {
		store := storagemocks.NewStorage(t)
		wallets := ledgermocks.NewGateway(t)
		svc := NewService(store, wallets, nil)

		store.On("GetGroupVault", ctx, "v1").Return(vault, nil)
		wallets.On("GetWallet", ctx, owner).Return(&models.Wallet{UserId: owner, CashBalance: 1000}, nil)
		store.On("CreateIntent", ctx, mock.AnythingOfType("*models.Intent")).Return(nil)
		wallets.On("AdjustWallet", ctx, owner, models.Cents(-500), mock.Anything).Return(ledger.ErrInsufficientFunds)
		store.On("MarkIntentFailed", ctx, mock.Anything, mock.Anything).Return(nil)

		err := svc.Contribute(ctx, in)

		assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	})

	t.Run("Ambiguous Ledger Error Leaves Intent Pending", func(t *testing.T) {
		store := storagemocks.NewStorage(t)
		wallets := ledgermocks.NewGateway(t)
		svc := NewService(store, wallets, nil)

		store.On("GetGroupVault", ctx, "v1").Return(vault, nil)
		wallets.On("GetWallet", ctx, owner).Return(&models.Wallet{UserId: owner, CashBalance: 1000}, nil)
		store.On("CreateIntent", ctx, mock.Anything).Return(nil)
		wallets.On("AdjustWallet", ctx, owner, models.Cents(-500), mock.Anything).Return(errors.New("connection reset"))

		err := svc.Contribute(ctx, in)

		assert.ErrorIs(t, err, apperrors.ErrPersistenceFailure)
		store.AssertNotCalled(t, "MarkIntentFailed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Store Step Fails After Debit", func(t *testing.T) {
		store := storagemocks.NewStorage(t)
		wallets := ledgermocks.NewGateway(t)
		svc := NewService(store, wallets, nil)

		store.On("GetGroupVault", ctx, "v1").Return(vault, nil)
		wallets.On("GetWallet", ctx, owner).Return(&models.Wallet{UserId: owner, CashBalance: 1000}, nil)
		store.On("CreateIntent", ctx, mock.Anything).Return(nil)
		wallets.On("AdjustWallet", ctx, owner, models.Cents(-500), mock.Anything).Return(nil)
		store.On("ApplyContribution", ctx, mock.Anything, mock.Anything).Return(errors.New("throttled"))

		err := svc.Contribute(ctx, in)

		assert.ErrorIs(t, err, apperrors.ErrPersistenceFailure)
		store.AssertNotCalled(t, "MarkIntentFailed", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestWithdrawLedgerCreditDeferred(t *testing.T) {
	ctx := context.Background()
	store := storagemocks.NewStorage(t)
	wallets := ledgermocks.NewGateway(t)
	svc := NewService(store, wallets, nil)

	store.On("GetGroupVault", ctx, "v1").Return(&models.GroupVault{Id: "v1", UserId: owner}, nil)
	store.On("GetMember", ctx, "v1", "Alex").Return(&models.GroupVaultMember{MemberName: "Alex", ContributionBalance: 900}, nil)
	wallets.On("GetWallet", ctx, owner).Return(&models.Wallet{UserId: owner}, nil)
	store.On("CreateIntent", ctx, mock.Anything).Return(nil)
	store.On("ApplyWithdrawal", ctx, mock.Anything, mock.Anything).Return(nil)
	wallets.On("AdjustWallet", ctx, owner, models.Cents(300), mock.Anything).Return(errors.New("ledger timeout"))

	err := svc.Withdraw(ctx, Movement{UserID: owner, GroupVaultID: "v1", MemberName: "Alex", Amount: 300})

	require.NoError(t, err)
	store.AssertNotCalled(t, "MarkIntentApplied", mock.Anything, mock.Anything)
}

func TestWithdrawAmbiguousStoreFailure(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Service, *storagemocks.Storage, *ledgermocks.Gateway) {
		store := storagemocks.NewStorage(t)
		wallets := ledgermocks.NewGateway(t)
		store.On("GetGroupVault", ctx, "v1").Return(&models.GroupVault{Id: "v1", UserId: owner}, nil)
		store.On("GetMember", ctx, "v1", "Alex").Return(&models.GroupVaultMember{MemberName: "Alex", ContributionBalance: 900}, nil)
		wallets.On("GetWallet", ctx, owner).Return(&models.Wallet{UserId: owner}, nil)
		store.On("CreateIntent", ctx, mock.Anything).Return(nil)
		store.On("ApplyWithdrawal", ctx, mock.Anything, mock.Anything).Return(errors.New("request timed out"))
		return NewService(store, wallets, nil), store, wallets
	}

	t.Run("Transaction Committed", func(t *testing.T) {
		svc, store, wallets := setup(t)
		store.On("MarkIntentFailed", ctx, mock.Anything, mock.Anything).Return(storage.ErrIntentNotPending)
		wallets.On("AdjustWallet", ctx, owner, models.Cents(300), mock.Anything).Return(nil)
		store.On("MarkIntentApplied", ctx, mock.Anything).Return(nil)

		err := svc.Withdraw(ctx, Movement{UserID: owner, GroupVaultID: "v1", MemberName: "Alex", Amount: 300})

		assert.NoError(t, err)
	})

	t.Run("Transaction Did Not Commit", func(t *testing.T) {
		svc, store, _ := setup(t)
		store.On("MarkIntentFailed", ctx, mock.Anything, mock.Anything).Return(nil)

		err := svc.Withdraw(ctx, Movement{UserID: owner, GroupVaultID: "v1", MemberName: "Alex", Amount: 300})

		assert.ErrorIs(t, err, apperrors.ErrPersistenceFailure)
	})
}

func TestSettleConflict(t *testing.T) {
	ctx := context.Background()
	store := storagemocks.NewStorage(t)
	wallets := ledgermocks.NewGateway(t)
	svc := NewService(store, wallets, nil)

	store.On("GetGroupVault", ctx, "v1").Return(&models.GroupVault{Id: "v1", UserId: owner, ReleaseDate: "2000-01-01", TotalBalance: 100}, nil)
	wallets.On("GetWallet", ctx, owner).Return(&models.Wallet{UserId: owner}, nil)
	store.On("ListMembers", ctx, "v1").Return([]models.GroupVaultMember{{MemberName: "You", ContributionBalance: 100}}, nil)
	store.On("CreateIntent", ctx, mock.Anything).Return(nil)
	store.On("ApplySettlement", ctx, mock.Anything).Return(storage.ErrConditionFailed)
	store.On("MarkIntentFailed", ctx, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Settle(ctx, owner, "v1")

	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestResume(t *testing.T) {
	ctx := context.Background()
	intent := func(kind models.IntentKind, status models.IntentStatus) *models.Intent {
		return &models.Intent{Id: "i1", Kind: kind, Status: status, UserId: owner, GroupVaultId: "v1", MemberName: "You", Amount: 400}
	}

	t.Run("Terminal", func(t *testing.T) {
		svc := NewService(storagemocks.NewStorage(t), ledgermocks.NewGateway(t), nil)
		outcome, err := svc.Resume(ctx, intent(models.IntentContribute, models.APPLIED))
		require.NoError(t, err)
		assert.Equal(t, OutcomeSkipped, outcome)
	})

	t.Run("Contribution Debited Rolls Forward", func(t *testing.T) {
		store := storagemocks.NewStorage(t)
		wallets := ledgermocks.NewGateway(t)
		svc := NewService(store, wallets, nil)
		wallets.On("AdjustmentExists", ctx, "i1").Return(true, nil)
		store.On("ApplyContribution", ctx, mock.Anything, mock.Anything).Return(nil)

		outcome, err := svc.Resume(ctx, intent(models.IntentContribute, models.PENDING))

		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, outcome)
	})

	t.Run("Contribution Never Debited Fails", func(t *testing.T) {
		store := storagemocks.NewStorage(t)
		wallets := ledgermocks.NewGateway(t)
		svc := NewService(store, wallets, nil)
		wallets.On("AdjustmentExists", ctx, "i1").Return(false, nil)
		store.On("MarkIntentFailed", ctx, "i1", "wallet debit was never applied").Return(nil)

		outcome, err := svc.Resume(ctx, intent(models.IntentContribute, models.PENDING))

		require.NoError(t, err)
		assert.Equal(t, OutcomeFailed, outcome)
	})

	t.Run("Pending Withdrawal Fails", func(t *testing.T) {
		store := storagemocks.NewStorage(t)
		svc := NewService(store, ledgermocks.NewGateway(t), nil)
		store.On("MarkIntentFailed", ctx, "i1", mock.Anything).Return(nil)

		outcome, err := svc.Resume(ctx, intent(models.IntentWithdraw, models.PENDING))

		require.NoError(t, err)
		assert.Equal(t, OutcomeFailed, outcome)
	})

	t.Run("Local Applied Settlement Credits", func(t *testing.T) {
		store := storagemocks.NewStorage(t)
		wallets := ledgermocks.NewGateway(t)
		svc := NewService(store, wallets, nil)
		wallets.On("AdjustWallet", ctx, owner, models.Cents(400), "i1").Return(nil)
		store.On("MarkIntentApplied", ctx, "i1").Return(nil)

		outcome, err := svc.Resume(ctx, intent(models.IntentSettle, models.LOCAL_APPLIED))

		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, outcome)
	})

	t.Run("Credit Still Failing", func(t *testing.T) {
		wallets := ledgermocks.NewGateway(t)
		svc := NewService(storagemocks.NewStorage(t), wallets, nil)
		wallets.On("AdjustWallet", ctx, owner, models.Cents(400), "i1").Return(errors.New("down"))

		_, err := svc.Resume(ctx, intent(models.IntentWithdraw, models.LOCAL_APPLIED))

		assert.Error(t, err)
	})
}
