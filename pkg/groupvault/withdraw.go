package groupvault

import (
	"context"
	"errors"
	"log/slog"

	"github.com/chris/vault-wallet/pkg/apperrors"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/storage"
)

// Withdraw returns part of a member's own contribution to the caller's wallet.
func (s *Service) Withdraw(ctx context.Context, in Movement) (err error) {
	defer func() { s.record("withdraw", err) }()

	if err := in.normalize(); err != nil {
		return err
	}
	if _, err := s.ownedVault(ctx, in.UserID, in.GroupVaultID); err != nil {
		return err
	}

	member, err := s.Store.GetMember(ctx, in.GroupVaultID, in.MemberName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.Wrap(apperrors.ErrNotFound, "Member not found", err)
		}
		return apperrors.Persistence(err)
	}
	if member.ContributionBalance < in.Amount {
		return apperrors.New(apperrors.ErrExceedsContribution, "Members can only withdraw up to their own contribution")
	}
	if _, err := s.requireWallet(ctx, in.UserID); err != nil {
		return err
	}

	intent := s.newIntent(models.IntentWithdraw, in.UserID, in.GroupVaultID, in.MemberName, in.Amount)
	if err := s.Store.CreateIntent(ctx, intent); err != nil {
		return apperrors.Persistence(err)
	}

	activity := s.newActivity(in.UserID, models.ActivityGroupVaultWithdraw, models.DirectionIn,
		in.Amount, ptr(in.MemberName), "Withdrew member contribution from group vault")
	if err := s.Store.ApplyWithdrawal(ctx, intent, activity); err != nil {
		switch {
		case errors.Is(err, storage.ErrInsufficientContribution):
			s.failIntent(ctx, intent, err)
			return apperrors.Wrap(apperrors.ErrExceedsContribution, "Members can only withdraw up to their own contribution", err)
		case errors.Is(err, storage.ErrConditionFailed):
			s.failIntent(ctx, intent, err)
			return apperrors.Wrap(apperrors.ErrConflict, "Group vault changed during withdrawal, please retry", err)
		case !s.storeStepLanded(ctx, intent, err):
			return apperrors.Persistence(err)
		}
	}

	s.completeCredit(ctx, intent)
	return nil
}

// storeStepLanded resolves an ambiguous store failure. Failing the intent only
// succeeds from PENDING, so ErrIntentNotPending proves the transaction committed.
func (s *Service) storeStepLanded(ctx context.Context, intent *models.Intent, cause error) bool {
	err := s.Store.MarkIntentFailed(ctx, intent.Id, cause.Error())
	return errors.Is(err, storage.ErrIntentNotPending)
}

// completeCredit pays a LOCAL_APPLIED intent's amount into the wallet and marks
// it APPLIED. Failures leave the intent for the reconciler, so they are logged only.
func (s *Service) completeCredit(ctx context.Context, intent *models.Intent) {
	if err := s.credit(ctx, intent); err != nil {
		s.logger().Warn("wallet credit deferred to reconciliation",
			slog.String("intent_id", intent.Id),
			slog.String("kind", string(intent.Kind)),
			slog.Any("error", err))
	}
}

func (s *Service) credit(ctx context.Context, intent *models.Intent) error {
	if intent.Amount > 0 {
		if err := s.Ledger.AdjustWallet(ctx, intent.UserId, intent.Amount, intent.Id); err != nil {
			return err
		}
	}
	return s.Store.MarkIntentApplied(ctx, intent.Id)
}
