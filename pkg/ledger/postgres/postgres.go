// Package postgres implements the ledger gateway on top of the Postgres
// stored procedures that own wallets, vaults and accounts.
package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/chris/vault-wallet/pkg/ledger"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Postgres error codes raised by the ledger procedures.
const (
	codeRaiseException = "P0001"
	codeNoDataFound    = "P0002"
	codeCheckViolation = "23514"
)

// Ledger implements ledger.Gateway using sqlx and lib/pq.
type Ledger struct {
	DB *sqlx.DB
}

// New creates a new Ledger over an open database handle.
func New(db *sqlx.DB) *Ledger {
	return &Ledger{DB: db}
}

// Open connects to the ledger database described by dsn.
func Open(dsn string) (*Ledger, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ledger database: %w", err)
	}
	return New(db), nil
}

// Close releases the database handle.
func (l *Ledger) Close() error {
	return l.DB.Close()
}

// Make sure we conform to the interface
var _ ledger.Gateway = (*Ledger)(nil)

// mapError translates driver errors into ledger sentinels.
func mapError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to %s: %w", op, ledger.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeCheckViolation:
			return fmt.Errorf("failed to %s: %w", op, ledger.ErrInsufficientFunds)
		case codeNoDataFound:
			return fmt.Errorf("failed to %s: %w: %s", op, ledger.ErrNotFound, pqErr.Message)
		case codeRaiseException:
			if strings.Contains(strings.ToLower(pqErr.Message), "insufficient") {
				return fmt.Errorf("failed to %s: %w", op, ledger.ErrInsufficientFunds)
			}
			return fmt.Errorf("failed to %s: %w", op, ledger.Reject(pqErr.Message))
		}
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}
