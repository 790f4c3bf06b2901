// Package money converts between decimal USD amounts and integer minor units.
// Balances and transaction amounts are stored in cents so that no arithmetic
// ever goes through binary floating point.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/qfsvault/qfs_vault_app/internal/apperrors"
)

var hundred = decimal.NewFromInt(100)

// FromUSD converts a decimal USD amount into minor units (cents).
// Amounts with more than two fraction digits are rejected rather than rounded:
// silently rounding caller input would make the ledger disagree with what the
// caller asked for.
func FromUSD(amount decimal.Decimal) (int64, error) {
	cents := amount.Mul(hundred)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("%w: amount %s has sub-cent precision", apperrors.ErrValidation, amount.String())
	}
	// IntPart silently wraps outside int64 range, which would turn an absurdly
	// large amount into a plausible-looking one.
	if !cents.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: amount %s is out of range", apperrors.ErrValidation, amount.String())
	}
	return cents.IntPart(), nil
}

// ToUSD converts minor units back to a decimal USD amount.
func ToUSD(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
