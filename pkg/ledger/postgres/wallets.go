package postgres

import (
	"context"

	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/money"
	"github.com/shopspring/decimal"
)

type walletRow struct {
	UserID      string          `db:"user_id"`
	CashBalance decimal.Decimal `db:"cash_balance"`
}

// GetWallet reads the user's wallet row.
func (l *Ledger) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	var row walletRow
	err := l.DB.GetContext(ctx, &row,
		"SELECT user_id, cash_balance FROM vault_wallets WHERE user_id = $1", userID)
	if err != nil {
		return nil, mapError("get wallet", err)
	}

	return &models.Wallet{
		UserId:      row.UserID,
		CashBalance: models.Cents(row.CashBalance.Shift(2).IntPart()),
	}, nil
}

// AdjustWallet calls vault_wallet_adjust, which records the reference and
// ignores repeats of it.
func (l *Ledger) AdjustWallet(ctx context.Context, userID string, delta models.Cents, reference string) error {
	_, err := l.DB.ExecContext(ctx, "SELECT vault_wallet_adjust($1, $2, $3)",
		userID, money.FromCents(delta), reference)
	if err != nil {
		return mapError("adjust wallet", err)
	}
	return nil
}

// AdjustmentExists calls vault_wallet_adjustment_exists.
func (l *Ledger) AdjustmentExists(ctx context.Context, reference string) (bool, error) {
	var exists bool
	err := l.DB.GetContext(ctx, &exists, "SELECT vault_wallet_adjustment_exists($1)", reference)
	if err != nil {
		return false, mapError("check wallet adjustment", err)
	}
	return exists, nil
}

// TopUpWallet calls vault_top_up_wallet.
func (l *Ledger) TopUpWallet(ctx context.Context, userID string, amount models.Cents) error {
	_, err := l.DB.ExecContext(ctx, "SELECT vault_top_up_wallet($1, $2)", userID, money.FromCents(amount))
	if err != nil {
		return mapError("top up wallet", err)
	}
	return nil
}
