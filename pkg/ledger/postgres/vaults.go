package postgres

import (
	"context"
	"encoding/json"

	"github.com/chris/vault-wallet/pkg/ledger"
	"github.com/chris/vault-wallet/pkg/money"
	"github.com/jmoiron/sqlx/types"
)

// CreateVault calls vault_create.
func (l *Ledger) CreateVault(ctx context.Context, userID string, v ledger.NewVault) error {
	_, err := l.DB.ExecContext(ctx, "SELECT vault_create($1, $2, $3, $4, $5, $6, $7)",
		userID, v.Name, v.ReleaseDate, string(v.DestinationType), v.DestinationName, v.RoutingNumber, v.AccountNumber)
	if err != nil {
		return mapError("create vault", err)
	}
	return nil
}

// FundVault calls vault_fund. A nil NextRunAt is passed as SQL NULL.
func (l *Ledger) FundVault(ctx context.Context, userID string, f ledger.VaultFunding) error {
	frequency := f.Frequency
	if frequency == "" {
		frequency = ledger.FrequencyOneTime
	}

	_, err := l.DB.ExecContext(ctx, "SELECT vault_fund($1, $2, $3, $4, $5)",
		userID, f.VaultID, money.FromCents(f.Amount), string(frequency), f.NextRunAt)
	if err != nil {
		return mapError("fund vault", err)
	}
	return nil
}

// WithdrawVault calls vault_withdraw and returns its jsonb result.
func (l *Ledger) WithdrawVault(ctx context.Context, userID string, w ledger.VaultWithdrawal) (json.RawMessage, error) {
	var result types.NullJSONText
	err := l.DB.GetContext(ctx, &result, "SELECT to_jsonb(vault_withdraw($1, $2, $3, $4, $5))",
		userID, w.VaultID, money.FromCents(w.Amount), string(w.Destination), w.Counterparty)
	if err != nil {
		return nil, mapError("withdraw from vault", err)
	}
	if !result.Valid {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(result.JSONText), nil
}
