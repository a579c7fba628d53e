package postgres

import (
	"context"

	"github.com/chris/vault-wallet/pkg/ledger"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/money"
	"github.com/lib/pq"
)

// OwnsAccounts counts the user's accounts among accountIDs.
func (l *Ledger) OwnsAccounts(ctx context.Context, userID string, accountIDs ...string) (bool, error) {
	if len(accountIDs) == 0 {
		return false, nil
	}

	var owned int
	err := l.DB.GetContext(ctx, &owned,
		"SELECT count(DISTINCT id) FROM accounts WHERE user_id = $1 AND id = ANY($2)",
		userID, pq.Array(accountIDs))
	if err != nil {
		return false, mapError("look up accounts", err)
	}
	return owned == len(unique(accountIDs)), nil
}

// TransferFunds calls transfer_funds.
func (l *Ledger) TransferFunds(ctx context.Context, userID string, t ledger.Transfer) error {
	_, err := l.DB.ExecContext(ctx, "SELECT transfer_funds($1, $2, $3, $4, $5)",
		userID, t.FromAccountID, t.ToAccountID, money.FromCents(t.Amount), string(t.Type))
	if err != nil {
		return mapError("transfer funds", err)
	}
	return nil
}

// RequestPayment calls vault_request_payment.
func (l *Ledger) RequestPayment(ctx context.Context, userID string, amount models.Cents, counterparty string) error {
	_, err := l.DB.ExecContext(ctx, "SELECT vault_request_payment($1, $2, $3)",
		userID, money.FromCents(amount), counterparty)
	if err != nil {
		return mapError("request payment", err)
	}
	return nil
}

// CreatePool calls vault_create_pool.
func (l *Ledger) CreatePool(ctx context.Context, userID string, amount models.Cents, title string) error {
	_, err := l.DB.ExecContext(ctx, "SELECT vault_create_pool($1, $2, $3)",
		userID, money.FromCents(amount), title)
	if err != nil {
		return mapError("create pool", err)
	}
	return nil
}

func unique(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
