package groupvault

import (
	"context"
	"errors"
	"fmt"

	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/storage"
)

// Outcome is what Resume did with an intent.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeFailed  Outcome = "failed"
	// OutcomeSkipped means the intent was already terminal or another worker moved it.
	OutcomeSkipped Outcome = "skipped"
)

// Resume drives an unfinished intent to a terminal state:
//
//	CONTRIBUTE/PENDING         roll forward if the ledger holds the debit, else fail
//	WITHDRAW|SETTLE/PENDING    fail; nothing was mutated
//	WITHDRAW|SETTLE/LOCAL_APPLIED  retry the idempotent wallet credit
func (s *Service) Resume(ctx context.Context, intent *models.Intent) (Outcome, error) {
	if intent.Terminal() {
		return OutcomeSkipped, nil
	}

	switch {
	case intent.Status == models.PENDING && intent.Kind == models.IntentContribute:
		debited, err := s.Ledger.AdjustmentExists(ctx, intent.Id)
		if err != nil {
			return "", fmt.Errorf("failed to check ledger for intent %s: %w", intent.Id, err)
		}
		if !debited {
			return s.resumeFail(ctx, intent, "wallet debit was never applied")
		}
		err = s.applyContribution(ctx, intent)
		switch {
		case err == nil:
			return OutcomeApplied, nil
		case errors.Is(err, storage.ErrIntentNotPending):
			return OutcomeSkipped, nil
		default:
			return "", fmt.Errorf("failed to roll forward contribution %s: %w", intent.Id, err)
		}

	case intent.Status == models.PENDING:
		return s.resumeFail(ctx, intent, "abandoned before the store step")

	case intent.Status == models.LOCAL_APPLIED:
		err := s.credit(ctx, intent)
		switch {
		case err == nil:
			return OutcomeApplied, nil
		case errors.Is(err, storage.ErrIntentNotPending):
			return OutcomeSkipped, nil
		default:
			return "", fmt.Errorf("failed to credit wallet for intent %s: %w", intent.Id, err)
		}
	}

	return "", fmt.Errorf("intent %s has unknown status %q", intent.Id, intent.Status)
}

func (s *Service) resumeFail(ctx context.Context, intent *models.Intent, reason string) (Outcome, error) {
	err := s.Store.MarkIntentFailed(ctx, intent.Id, reason)
	switch {
	case err == nil:
		return OutcomeFailed, nil
	case errors.Is(err, storage.ErrIntentNotPending):
		return OutcomeSkipped, nil
	default:
		return "", err
	}
}
