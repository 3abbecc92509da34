package utils

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// DisplayPrecision is the number of decimal places balances are rounded to.
const DisplayPrecision = 6

// FormatUnits scales a raw integer amount by 10^decimals and rounds it to
// DisplayPrecision places.
// Example: amount=1234567890000000000, decimals=18 => 1.234568
func FormatUnits(amount *big.Int, decimals uint8) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).Round(DisplayPrecision)
}

// FormatUnitsFloat is FormatUnits converted to a float64 for native balances.
func FormatUnitsFloat(amount *big.Int, decimals uint8) float64 {
	return FormatUnits(amount, decimals).InexactFloat64()
}

// FormatUint64Units is FormatUnitsFloat for lamport/satoshi style counters.
func FormatUint64Units(amount uint64, decimals uint8) float64 {
	return FormatUnitsFloat(new(big.Int).SetUint64(amount), decimals)
}

// ParseAmount parses a decimal balance string; unparseable input counts as zero.
func ParseAmount(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}
