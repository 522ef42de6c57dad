package units

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Fixed exponents used by the marketplace contract regardless of currency.
const (
	DefaultCurrencyDecimals int32 = 18
	FeeDecimals             int32 = 18
	PriceMultiplierDecimals int32 = 2
	FractionsDecimals       int32 = 6
)

// Scale converts a raw on-chain integer into a decimal value. A positive
// exponent divides by 10^exponent, a negative one multiplies by 10^-exponent.
// The result is exact: the exponent is applied to the decimal's scale, so no
// division rounding takes place.
func Scale(amount *big.Int, exponent int32) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	switch {
	case exponent > 0:
		return decimal.NewFromBigInt(amount, -exponent)
	case exponent < 0:
		return decimal.NewFromBigInt(new(big.Int).Mul(amount, pow10(-exponent)), 0)
	default:
		return decimal.NewFromBigInt(amount, 0)
	}
}

// Unscale is the inverse of Scale, truncating any fractional remainder.
func Unscale(value decimal.Decimal, exponent int32) *big.Int {
	return value.Shift(exponent).BigInt()
}

func pow10(n int32) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
