// Package groupvault implements the group vault workflows. Each money-moving
// workflow writes an intent before touching the ledger or the store, so an
// interrupted run can be finished or failed later by the reconciler.
package groupvault

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/chris/vault-wallet/pkg/apperrors"
	"github.com/chris/vault-wallet/pkg/ledger"
	"github.com/chris/vault-wallet/pkg/metrics"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/storage"
	"github.com/google/uuid"
)

// Service runs the group vault workflows against the store and the wallet ledger.
type Service struct {
	Store   storage.WorkflowStore
	Ledger  ledger.WalletLedger
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Now     func() time.Time
	NewID   func() string
}

// NewService creates a Service with the real clock and uuid ids.
func NewService(store storage.WorkflowStore, wallets ledger.WalletLedger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Store:  store,
		Ledger: wallets,
		Logger: logger,
		Now:    func() time.Time { return time.Now().UTC() },
		NewID:  uuid.NewString,
	}
}

// Movement moves an amount into or out of one member's contribution.
type Movement struct {
	UserID       string
	GroupVaultID string
	MemberName   string
	Amount       models.Cents
}

func (m *Movement) normalize() error {
	m.GroupVaultID = strings.TrimSpace(m.GroupVaultID)
	m.MemberName = strings.TrimSpace(m.MemberName)
	if m.GroupVaultID == "" || m.MemberName == "" || m.Amount <= 0 {
		return apperrors.Invalid("Invalid payload")
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID == nil {
		return uuid.NewString()
	}
	return s.NewID()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Service) record(workflow string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperrors.Code(err)
	}
	s.Metrics.RecordWorkflow(workflow, outcome)
}

// ownedVault loads a vault and checks that the caller owns it.
func (s *Service) ownedVault(ctx context.Context, userID, groupVaultID string) (*models.GroupVault, error) {
	vault, err := s.Store.GetGroupVault(ctx, groupVaultID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "Group vault not found", err)
		}
		return nil, apperrors.Persistence(err)
	}
	if vault.UserId != userID {
		return nil, apperrors.New(apperrors.ErrForbidden, "Group vault belongs to another user")
	}
	return vault, nil
}

// requireWallet fails with NotFound when the caller has no wallet to credit.
func (s *Service) requireWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	wallet, err := s.Ledger.GetWallet(ctx, userID)
	if err != nil {
		return nil, ledgerError(err)
	}
	return wallet, nil
}

func (s *Service) newIntent(kind models.IntentKind, userID, groupVaultID, memberName string, amount models.Cents) *models.Intent {
	now := s.now()
	return &models.Intent{
		Id:           s.newID(),
		Kind:         kind,
		Status:       models.PENDING,
		UserId:       userID,
		GroupVaultId: groupVaultID,
		MemberName:   memberName,
		Amount:       amount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *Service) newActivity(userID string, activityType models.ActivityType, direction models.Direction, amount models.Cents, counterparty *string, note string) *models.ActivityRecord {
	now := s.now()
	id := s.newID()
	return &models.ActivityRecord{
		UserId:       userID,
		SortKey:      models.ActivitySortKey(now, id),
		Id:           id,
		ActivityType: activityType,
		Direction:    direction,
		Amount:       amount,
		Counterparty: counterparty,
		Note:         note,
		OccurredAt:   now,
	}
}

// failIntent marks a PENDING intent FAILED. The result is logged, not returned:
// an intent left PENDING is failed by the reconciler anyway.
func (s *Service) failIntent(ctx context.Context, intent *models.Intent, cause error) {
	if err := s.Store.MarkIntentFailed(ctx, intent.Id, cause.Error()); err != nil {
		s.logger().Warn("failed to mark intent failed",
			slog.String("intent_id", intent.Id),
			slog.String("kind", string(intent.Kind)),
			slog.Any("error", err))
	}
}

// ledgerError maps a ledger failure to a caller-facing kind.
func ledgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return apperrors.Wrap(apperrors.ErrInsufficientFunds, "Insufficient cash balance", err)
	case errors.Is(err, ledger.ErrNotFound):
		return apperrors.Wrap(apperrors.ErrNotFound, "Wallet not found", err)
	case errors.Is(err, ledger.ErrRejected):
		return apperrors.Wrap(apperrors.ErrLedgerRejected, "Ledger rejected the request", err)
	default:
		return apperrors.Persistence(err)
	}
}

// definitive reports whether a ledger error proves the call had no effect.
func definitive(err error) bool {
	return errors.Is(err, ledger.ErrInsufficientFunds) ||
		errors.Is(err, ledger.ErrNotFound) ||
		errors.Is(err, ledger.ErrRejected)
}

func ptr[T any](v T) *T {
	return &v
}
