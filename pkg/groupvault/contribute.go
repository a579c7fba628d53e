package groupvault

import (
	"context"
	"log/slog"

	"github.com/chris/vault-wallet/pkg/apperrors"
	"github.com/chris/vault-wallet/pkg/models"
)

// Contribute moves cash from the caller's wallet into a member's contribution.
// The member is created on first contribution.
func (s *Service) Contribute(ctx context.Context, in Movement) (err error) {
	defer func() { s.record("contribute", err) }()

	if err := in.normalize(); err != nil {
		return err
	}
	if _, err := s.ownedVault(ctx, in.UserID, in.GroupVaultID); err != nil {
		return err
	}

	wallet, err := s.requireWallet(ctx, in.UserID)
	if err != nil {
		return err
	}
	if wallet.CashBalance < in.Amount {
		return apperrors.New(apperrors.ErrInsufficientFunds, "Insufficient cash balance")
	}

	intent := s.newIntent(models.IntentContribute, in.UserID, in.GroupVaultID, in.MemberName, in.Amount)
	if err := s.Store.CreateIntent(ctx, intent); err != nil {
		return apperrors.Persistence(err)
	}

	if err := s.Ledger.AdjustWallet(ctx, in.UserID, -in.Amount, intent.Id); err != nil {
		// An ambiguous failure may still have debited; the reconciler checks the
		// ledger before failing the intent.
		if definitive(err) {
			s.failIntent(ctx, intent, err)
		}
		return ledgerError(err)
	}

	if err := s.applyContribution(ctx, intent); err != nil {
		s.logger().Error("wallet debited but contribution not recorded",
			slog.String("intent_id", intent.Id),
			slog.String("group_vault_id", intent.GroupVaultId),
			slog.Any("error", err))
		return apperrors.Persistence(err)
	}
	return nil
}

// applyContribution is the store step of a contribution, shared with replay.
func (s *Service) applyContribution(ctx context.Context, intent *models.Intent) error {
	activity := s.newActivity(intent.UserId, models.ActivityGroupVaultContribution, models.DirectionOut,
		intent.Amount, ptr(intent.MemberName), "Added contribution to group vault")
	return s.Store.ApplyContribution(ctx, intent, activity)
}
