package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chris/vault-wallet/pkg/groupvault"
	ledgermemory "github.com/chris/vault-wallet/pkg/ledger/memory"
	"github.com/chris/vault-wallet/pkg/models"
	schedulermocks "github.com/chris/vault-wallet/pkg/scheduler/mocks"
	"github.com/chris/vault-wallet/pkg/storage"
	"github.com/chris/vault-wallet/pkg/storage/memory"
	storagemocks "github.com/chris/vault-wallet/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func seedVault(t *testing.T, store *memory.Store, total models.Cents, contributions map[string]models.Cents) {
	t.Helper()
	var members []models.GroupVaultMember
	for name, c := range contributions {
		members = append(members, models.GroupVaultMember{GroupVaultId: "v1", MemberName: name, ContributionBalance: c})
	}
	err := store.CreateGroupVault(context.Background(),
		&models.GroupVault{Id: "v1", UserId: "u1", TotalBalance: total, ReleaseDate: "2025-01-01"},
		members,
		&models.ActivityRecord{UserId: "u1", SortKey: "seed", Id: "seed"})
	require.NoError(t, err)
}

func TestProcessStuckInProcess(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Now = func() time.Time { return now }
	wallets := ledgermemory.New()
	wallets.SeedWallet("u1", 10000)
	seedVault(t, store, 0, map[string]models.Cents{"You": 0})

	old := now.Add(-time.Hour)
	debited := &models.Intent{Id: "debited", Kind: models.IntentContribute, Status: models.PENDING, UserId: "u1", GroupVaultId: "v1", MemberName: "You", Amount: 700, CreatedAt: old}
	never := &models.Intent{Id: "never", Kind: models.IntentContribute, Status: models.PENDING, UserId: "u1", GroupVaultId: "v1", MemberName: "You", Amount: 50, CreatedAt: old}
	recent := &models.Intent{Id: "recent", Kind: models.IntentWithdraw, Status: models.PENDING, UserId: "u1", GroupVaultId: "v1", MemberName: "You", Amount: 1, CreatedAt: now}
	for _, i := range []*models.Intent{debited, never, recent} {
		require.NoError(t, store.CreateIntent(ctx, i))
	}
	require.NoError(t, wallets.AdjustWallet(ctx, "u1", -700, "debited"))

	svc := groupvault.NewService(store, wallets, nil)
	svc.Now = func() time.Time { return now }
	r := &Reconciler{Store: store, Resumer: svc, Now: func() time.Time { return now }}

	report, err := r.RunOnce(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, report.Stuck)
	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, 1, report.Failed)
	assert.Empty(t, report.Violations)

	vault, _ := store.GetGroupVault(ctx, "v1")
	assert.Equal(t, models.Cents(700), vault.TotalBalance)
	got, _ := store.GetIntent(ctx, "never")
	assert.Equal(t, models.FAILED, got.Status)
	got, _ = store.GetIntent(ctx, "recent")
	assert.Equal(t, models.PENDING, got.Status)

	t.Run("Second Pass Is A No-op", func(t *testing.T) {
		report, err := r.RunOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, report.Stuck)
		vault, _ := store.GetGroupVault(ctx, "v1")
		assert.Equal(t, models.Cents(700), vault.TotalBalance)
	})
}

func TestProcessStuckEnqueues(t *testing.T) {
	ctx := context.Background()
	store := storagemocks.NewStorage(t)
	sched := schedulermocks.NewIntentScheduler(t)

	stuck := []models.Intent{{Id: "a", Kind: models.IntentSettle}, {Id: "b", Kind: models.IntentWithdraw}}
	store.On("GetStuckIntents", ctx, DefaultStuckThreshold).Return(stuck, nil)
	sched.On("ScheduleIntent", ctx, mock.MatchedBy(func(i *models.Intent) bool { return i.Id == "a" })).Return(errors.New("queue down"))
	sched.On("ScheduleIntent", ctx, mock.MatchedBy(func(i *models.Intent) bool { return i.Id == "b" })).Return(nil)

	r := &Reconciler{Store: store, Scheduler: sched}
	report := &Report{}
	err := r.ProcessStuck(ctx, report)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Enqueued)
	assert.Equal(t, 1, report.Errors)
}

func TestProcessStuckQueryFails(t *testing.T) {
	ctx := context.Background()
	store := storagemocks.NewStorage(t)
	store.On("GetStuckIntents", ctx, 5*time.Minute).Return(nil, errors.New("boom"))

	r := &Reconciler{Store: store, Threshold: 5 * time.Minute}
	_, err := r.RunOnce(ctx)

	assert.ErrorContains(t, err, "failed to get stuck intents")
}

func TestAudit(t *testing.T) {
	ctx := context.Background()

	t.Run("Detects And Repairs Mismatch", func(t *testing.T) {
		store := memory.New()
		seedVault(t, store, 999, map[string]models.Cents{"You": 400, "Alex": 100})

		r := &Reconciler{Store: store, Repair: true}
		report := &Report{}
		require.NoError(t, r.Audit(ctx, report))

		require.Len(t, report.Violations, 1)
		assert.Equal(t, CheckTotalMismatch, report.Violations[0].Check)
		assert.True(t, report.Violations[0].Repaired)
		vault, _ := store.GetGroupVault(ctx, "v1")
		assert.Equal(t, models.Cents(500), vault.TotalBalance)
	})

	t.Run("Report Only", func(t *testing.T) {
		store := memory.New()
		seedVault(t, store, 1, map[string]models.Cents{"You": 0})

		r := &Reconciler{Store: store}
		report := &Report{}
		require.NoError(t, r.Audit(ctx, report))

		require.Len(t, report.Violations, 1)
		assert.False(t, report.Violations[0].Repaired)
		vault, _ := store.GetGroupVault(ctx, "v1")
		assert.Equal(t, models.Cents(1), vault.TotalBalance)
	})

	t.Run("Two Leaders", func(t *testing.T) {
		store := storagemocks.NewStorage(t)
		store.On("ListAllGroupVaults", ctx).Return([]models.GroupVault{{Id: "v1"}}, nil)
		store.On("ListMembers", ctx, "v1").Return([]models.GroupVaultMember{
			{MemberName: "You", IsLeader: true},
			{MemberName: "Alex", IsLeader: true},
		}, nil)

		r := &Reconciler{Store: store}
		report := &Report{}
		require.NoError(t, r.Audit(ctx, report))

		require.Len(t, report.Violations, 1)
		assert.Equal(t, CheckLeaderCount, report.Violations[0].Check)
	})

	t.Run("Repair Loses Race", func(t *testing.T) {
		store := storagemocks.NewStorage(t)
		store.On("ListAllGroupVaults", ctx).Return([]models.GroupVault{{Id: "v1", TotalBalance: 10, Version: 4}}, nil)
		store.On("ListMembers", ctx, "v1").Return([]models.GroupVaultMember{{MemberName: "You", ContributionBalance: 5}}, nil)
		store.On("RepairTotal", ctx, "v1", int64(4), models.Cents(5)).Return(storage.ErrConditionFailed)

		r := &Reconciler{Store: store, Repair: true}
		report := &Report{}
		require.NoError(t, r.Audit(ctx, report))

		assert.False(t, report.Violations[0].Repaired)
	})
}
