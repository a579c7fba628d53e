package groupvault

import (
	"context"
	"errors"
	"strings"

	"github.com/chris/vault-wallet/pkg/apperrors"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/storage"
)

// SettleResult reports what a settlement paid out.
type SettleResult struct {
	Note          string
	Amount        models.Cents
	Disbursements []Disbursement
}

// Settle releases a vault on or after its release date: the vault and every
// member are zeroed and the pre-settlement total is credited to the wallet once.
func (s *Service) Settle(ctx context.Context, userID, groupVaultID string) (result *SettleResult, err error) {
	defer func() { s.record("settle", err) }()

	groupVaultID = strings.TrimSpace(groupVaultID)
	if groupVaultID == "" {
		return nil, apperrors.Invalid("Group vault is required")
	}

	vault, err := s.ownedVault(ctx, userID, groupVaultID)
	if err != nil {
		return nil, err
	}
	if !vault.Releasable(s.now()) {
		return nil, apperrors.New(apperrors.ErrNotYetReleasable, "Group vault can only settle on or after the release date")
	}
	if _, err := s.requireWallet(ctx, userID); err != nil {
		return nil, err
	}

	members, err := s.Store.ListMembers(ctx, groupVaultID)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	plan := PlanSettlement(vault, members)

	intent := s.newIntent(models.IntentSettle, userID, groupVaultID, "", vault.TotalBalance)
	intent.Note = plan.Note
	if err := s.Store.CreateIntent(ctx, intent); err != nil {
		return nil, apperrors.Persistence(err)
	}

	err = s.Store.ApplySettlement(ctx, storage.Settlement{
		Vault:     vault,
		Members:   members,
		Intent:    intent,
		Activity:  s.newActivity(userID, models.ActivityGroupVaultSettle, models.DirectionIn, vault.TotalBalance, plan.Leader, plan.Note),
		SettledAt: s.now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConditionFailed):
			s.failIntent(ctx, intent, err)
			return nil, apperrors.Wrap(apperrors.ErrConflict, "Group vault changed during settlement, please retry", err)
		case errors.Is(err, storage.ErrTooManyMembers):
			s.failIntent(ctx, intent, err)
			return nil, apperrors.Persistence(err)
		case !s.storeStepLanded(ctx, intent, err):
			return nil, apperrors.Persistence(err)
		}
	}

	s.completeCredit(ctx, intent)
	return &SettleResult{Note: plan.Note, Amount: vault.TotalBalance, Disbursements: plan.Disbursements}, nil
}
