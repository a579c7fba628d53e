// Package ledger defines the contract of the external ledger that owns wallet
// cash balances, personal vaults, accounts and transfers.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/chris/vault-wallet/pkg/models"
)

var (
	// ErrInsufficientFunds is returned when a debit would take a balance below zero.
	ErrInsufficientFunds = errors.New("insufficient cash balance")
	// ErrNotFound is returned when the wallet, vault or account does not exist.
	ErrNotFound = errors.New("ledger record not found")
	// ErrRejected is returned when a procedure refuses the request for any other reason.
	ErrRejected = errors.New("ledger rejected the request")
)

// RejectedError is an ErrRejected carrying the reason the procedure gave.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return ErrRejected.Error() + ": " + e.Reason
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// Reject returns an ErrRejected with a reason.
func Reject(reason string) error {
	return &RejectedError{Reason: reason}
}

// Reason returns the rejection reason carried by err, or "".
func Reason(err error) string {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Reason
	}
	return ""
}

// WalletLedger reads and moves a user's wallet cash balance.
type WalletLedger interface {
	// GetWallet returns the user's wallet.
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)

	// AdjustWallet adds delta (negative to debit) to the cash balance. A reference
	// that was already applied is a no-op, which makes retries safe.
	AdjustWallet(ctx context.Context, userID string, delta models.Cents, reference string) error

	// AdjustmentExists reports whether an adjustment with this reference was applied.
	AdjustmentExists(ctx context.Context, reference string) (bool, error)

	// TopUpWallet credits the wallet from the user's funding source.
	TopUpWallet(ctx context.Context, userID string, amount models.Cents) error
}

// Frequency is how often a personal vault funding repeats.
type Frequency string

const (
	FrequencyOneTime  Frequency = "one_time"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOneTime, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// NewVault describes a personal vault to open.
type NewVault struct {
	Name            string
	ReleaseDate     string
	DestinationType models.DestinationType
	DestinationName *string
	RoutingNumber   *string
	AccountNumber   *string
}

// VaultFunding moves wallet cash into a personal vault, optionally on a schedule.
type VaultFunding struct {
	VaultID   string
	Amount    models.Cents
	Frequency Frequency
	NextRunAt *time.Time
}

// VaultWithdrawal pays a personal vault out to a bank or vendor.
type VaultWithdrawal struct {
	VaultID      string
	Amount       models.Cents
	Destination  models.DestinationType
	Counterparty *string
}

// TransferType classifies an account-to-account transfer.
type TransferType string

const (
	TransferDeposit   TransferType = "deposit"
	TransferWithdraw  TransferType = "withdraw"
	TransferScheduled TransferType = "scheduled"
)

// Valid reports whether t is a known transfer type.
func (t TransferType) Valid() bool {
	return t == TransferDeposit || t == TransferWithdraw || t == TransferScheduled
}

// Transfer moves money between two accounts of the same user.
type Transfer struct {
	FromAccountID string
	ToAccountID   string
	Amount        models.Cents
	Type          TransferType
}

// VaultLedger manages personal (single-owner) vaults.
type VaultLedger interface {
	CreateVault(ctx context.Context, userID string, v NewVault) error
	FundVault(ctx context.Context, userID string, f VaultFunding) error
	// WithdrawVault returns the procedure's raw result document.
	WithdrawVault(ctx context.Context, userID string, w VaultWithdrawal) (json.RawMessage, error)
}

// TransferLedger moves money between accounts.
type TransferLedger interface {
	// OwnsAccounts reports whether every account id belongs to the user.
	OwnsAccounts(ctx context.Context, userID string, accountIDs ...string) (bool, error)
	TransferFunds(ctx context.Context, userID string, t Transfer) error
}

// SocialLedger records peer-to-peer requests and pools.
type SocialLedger interface {
	RequestPayment(ctx context.Context, userID string, amount models.Cents, counterparty string) error
	CreatePool(ctx context.Context, userID string, amount models.Cents, title string) error
}

// Gateway is the complete ledger surface used by the service.
type Gateway interface {
	WalletLedger
	VaultLedger
	TransferLedger
	SocialLedger
}
