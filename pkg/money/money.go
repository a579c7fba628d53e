// Package money converts between decimal currency amounts and integer cents.
package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/chris/vault-wallet/pkg/models"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotPositive is returned for amounts that are zero or negative.
	ErrNotPositive = errors.New("amount must be greater than zero")
	// ErrTooPrecise is returned for amounts with more than two fractional digits.
	ErrTooPrecise = errors.New("amount must have at most two decimal places")
	// ErrOutOfRange is returned for amounts whose cents do not fit in an int64.
	ErrOutOfRange = errors.New("amount is too large")
)

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// ToCents converts a positive decimal amount to cents.
func ToCents(d decimal.Decimal) (models.Cents, error) {
	if !d.IsPositive() {
		return 0, ErrNotPositive
	}
	scaled := d.Mul(hundred)
	if !scaled.IsInteger() {
		return 0, ErrTooPrecise
	}
	if scaled.GreaterThan(maxCents) {
		return 0, ErrOutOfRange
	}
	return models.Cents(scaled.IntPart()), nil
}

// Parse converts a textual amount such as "12.50" to cents.
func Parse(s string) (models.Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return ToCents(d)
}

// FromCents converts cents to a decimal amount with two fractional digits.
func FromCents(c models.Cents) decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// Format renders cents as a dollar string, e.g. "$100.00".
func Format(c models.Cents) string {
	if c < 0 {
		return "-$" + FromCents(-c).StringFixed(2)
	}
	return "$" + FromCents(c).StringFixed(2)
}
