package services

import "github.com/shopspring/decimal"

// RateConverter converts USD amounts (in minor units) into asset amounts.
// Implementations are pure and deterministic: same inputs and rate table,
// same output. No I/O.
type RateConverter interface {
	// Convert returns the asset amount for a USD amount, rounded half-down to
	// the asset's fixed number of decimal places so a withdrawal's asset
	// amount never exceeds what the USD amount covers. Unknown assets fail
	// with ErrValidation.
	Convert(amountUSDMinor int64, assetSymbol string) (decimal.Decimal, error)
}
