package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/qfsvault/qfs_vault_app/internal/apperrors"
	portssvc "github.com/qfsvault/qfs_vault_app/internal/core/ports/services"
	"github.com/qfsvault/qfs_vault_app/internal/utils/money"
)

// assetRate is one entry in the static rate table: USD per unit of asset, and
// the fixed number of decimal places the asset amount is rounded to.
type assetRate struct {
	usdPerUnit decimal.Decimal
	places     int32
}

// staticRateConverter converts USD amounts using a fixed rate table. It stands
// in for a real rate feed; the only contract is the shape of the value it
// returns.
type staticRateConverter struct {
	rates map[string]assetRate
}

// NewStaticRateConverter creates a rate converter over the built-in table.
func NewStaticRateConverter() portssvc.RateConverter {
	return &staticRateConverter{
		rates: map[string]assetRate{
			"BTC":  {usdPerUnit: decimal.NewFromInt(68000), places: 6},
			"ETH":  {usdPerUnit: decimal.NewFromInt(3400), places: 6},
			"USDT": {usdPerUnit: decimal.NewFromInt(1), places: 2},
		},
	}
}

var _ portssvc.RateConverter = (*staticRateConverter)(nil)

// Convert implements portssvc.RateConverter.
func (s *staticRateConverter) Convert(amountUSDMinor int64, assetSymbol string) (decimal.Decimal, error) {
	rate, ok := s.rates[assetSymbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: unsupported asset %q", apperrors.ErrValidation, assetSymbol)
	}

	// Divide with headroom beyond the target precision, then round half-down.
	raw := money.ToUSD(amountUSDMinor).DivRound(rate.usdPerUnit, rate.places+4)
	return roundHalfDown(raw, rate.places), nil
}

var half = decimal.New(5, -1)

// roundHalfDown rounds a non-negative decimal to the given number of places,
// with exact halves rounding toward zero. Rounding a withdrawal's asset amount
// up could promise more than the USD amount covers.
func roundHalfDown(d decimal.Decimal, places int32) decimal.Decimal {
	shifted := d.Shift(places)
	floor := shifted.Floor()
	if shifted.Sub(floor).GreaterThan(half) {
		floor = floor.Add(decimal.NewFromInt(1))
	}
	return floor.Shift(-places)
}
