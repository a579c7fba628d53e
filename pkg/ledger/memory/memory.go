// Package memory provides a simulated in-process ledger for local runs and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/chris/vault-wallet/pkg/ledger"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/google/uuid"
)

type vault struct {
	ID      string
	UserID  string
	Params  ledger.NewVault
	Balance models.Cents
}

type account struct {
	UserID  string
	Balance models.Cents
}

// Ledger is a mutex-guarded map implementation of ledger.Gateway.
type Ledger struct {
	mu          sync.Mutex
	wallets     map[string]models.Cents
	adjustments map[string]struct{}
	vaults      map[string]*vault
	accounts    map[string]*account
	requests    []string
	pools       []string
}

// New creates an empty simulated ledger.
func New() *Ledger {
	return &Ledger{
		wallets:     make(map[string]models.Cents),
		adjustments: make(map[string]struct{}),
		vaults:      make(map[string]*vault),
		accounts:    make(map[string]*account),
	}
}

// Make sure we conform to the interface
var _ ledger.Gateway = (*Ledger)(nil)

// SeedWallet sets the user's cash balance, creating the wallet if needed.
func (l *Ledger) SeedWallet(userID string, balance models.Cents) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.wallets[userID] = balance
}

// SeedAccount registers an account owned by userID.
func (l *Ledger) SeedAccount(userID, accountID string, balance models.Cents) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[accountID] = &account{UserID: userID, Balance: balance}
}

// AccountBalance returns an account's balance.
func (l *Ledger) AccountBalance(accountID string) models.Cents {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a, ok := l.accounts[accountID]; ok {
		return a.Balance
	}
	return 0
}

// VaultIDs lists the personal vault ids owned by userID.
func (l *Ledger) VaultIDs(userID string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var ids []string
	for id, v := range l.vaults {
		if v.UserID == userID {
			ids = append(ids, id)
		}
	}
	return ids
}

func (l *Ledger) GetWallet(_ context.Context, userID string) (*models.Wallet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.wallets[userID]
	if !ok {
		return nil, fmt.Errorf("failed to get wallet for %s: %w", userID, ledger.ErrNotFound)
	}
	return &models.Wallet{UserId: userID, CashBalance: balance}, nil
}

func (l *Ledger) AdjustWallet(_ context.Context, userID string, delta models.Cents, reference string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, done := l.adjustments[reference]; done {
		return nil
	}
	balance, ok := l.wallets[userID]
	if !ok {
		return fmt.Errorf("failed to adjust wallet for %s: %w", userID, ledger.ErrNotFound)
	}
	if balance+delta < 0 {
		return fmt.Errorf("failed to adjust wallet for %s: %w", userID, ledger.ErrInsufficientFunds)
	}
	l.wallets[userID] = balance + delta
	l.adjustments[reference] = struct{}{}
	return nil
}

func (l *Ledger) AdjustmentExists(_ context.Context, reference string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.adjustments[reference]
	return ok, nil
}

// TopUpWallet credits the wallet, creating it on first use.
func (l *Ledger) TopUpWallet(_ context.Context, userID string, amount models.Cents) error {
	if amount <= 0 {
		return fmt.Errorf("failed to top up wallet: %w", ledger.Reject("amount must be positive"))
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.wallets[userID] += amount
	return nil
}

func (l *Ledger) CreateVault(_ context.Context, userID string, v ledger.NewVault) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := uuid.New().String()
	l.vaults[id] = &vault{ID: id, UserID: userID, Params: v}
	return nil
}

// FundVault moves cash from the wallet into the vault. Recurring schedules are
// accepted but only the first run is simulated.
func (l *Ledger) FundVault(_ context.Context, userID string, f ledger.VaultFunding) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.vaults[f.VaultID]
	if !ok || v.UserID != userID {
		return fmt.Errorf("failed to fund vault %s: %w", f.VaultID, ledger.ErrNotFound)
	}
	if l.wallets[userID] < f.Amount {
		return fmt.Errorf("failed to fund vault %s: %w", f.VaultID, ledger.ErrInsufficientFunds)
	}
	l.wallets[userID] -= f.Amount
	v.Balance += f.Amount
	return nil
}

func (l *Ledger) WithdrawVault(_ context.Context, userID string, w ledger.VaultWithdrawal) (json.RawMessage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.vaults[w.VaultID]
	if !ok || v.UserID != userID {
		return nil, fmt.Errorf("failed to withdraw from vault %s: %w", w.VaultID, ledger.ErrNotFound)
	}
	if v.Balance < w.Amount {
		return nil, fmt.Errorf("failed to withdraw from vault %s: %w", w.VaultID, ledger.ErrInsufficientFunds)
	}
	v.Balance -= w.Amount

	return json.Marshal(map[string]any{
		"vault_id":     v.ID,
		"amount":       w.Amount,
		"destination":  w.Destination,
		"remaining":    v.Balance,
		"counterparty": w.Counterparty,
	})
}

func (l *Ledger) OwnsAccounts(_ context.Context, userID string, accountIDs ...string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(accountIDs) == 0 {
		return false, nil
	}
	for _, id := range accountIDs {
		a, ok := l.accounts[id]
		if !ok || a.UserID != userID {
			return false, nil
		}
	}
	return true, nil
}

func (l *Ledger) TransferFunds(_ context.Context, userID string, t ledger.Transfer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	from, ok := l.accounts[t.FromAccountID]
	if !ok || from.UserID != userID {
		return fmt.Errorf("failed to transfer funds: %w", ledger.ErrNotFound)
	}
	to, ok := l.accounts[t.ToAccountID]
	if !ok || to.UserID != userID {
		return fmt.Errorf("failed to transfer funds: %w", ledger.ErrNotFound)
	}
	if from.Balance < t.Amount {
		return fmt.Errorf("failed to transfer funds: %w", ledger.ErrInsufficientFunds)
	}
	from.Balance -= t.Amount
	to.Balance += t.Amount
	return nil
}

func (l *Ledger) RequestPayment(_ context.Context, userID string, amount models.Cents, counterparty string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requests = append(l.requests, fmt.Sprintf("%s:%s:%d", userID, counterparty, amount))
	return nil
}

func (l *Ledger) CreatePool(_ context.Context, userID string, amount models.Cents, title string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pools = append(l.pools, fmt.Sprintf("%s:%s:%d", userID, title, amount))
	return nil
}
