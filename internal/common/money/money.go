// Package money holds the fixed-point conventions shared by pricing, escrow
// and settlement.
//
//   - token amounts are int64 with 4 implied decimals (20000 = 2.0000 tokens)
//   - price samples are USD per token with 4 implied decimals (50000 = $5.0000)
//   - level prices are USD cents (1000 = $10.00)
package money

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// Decimals is the scale of token amounts and price samples.
	Decimals = 4

	// priceScale relates cents × sample-scale × token-scale:
	// 100 (cents → dollars) is absorbed by 10^4 (dollars → sample units)
	// and 10^4 (token units), leaving 10^6.
	priceScale = 1_000_000
)

var (
	minAmount = decimal.NewFromInt(math.MinInt64)
	maxAmount = decimal.NewFromInt(math.MaxInt64)
)

// Amount is a token quantity in 10^-4 units.
type Amount = int64

// RequiredTokens converts a USD-cents price into the token amount needed at the
// given USD-per-token sample value. It rounds up so that
// sampleValue × result ≥ priceCents × 10^6 always holds.
func RequiredTokens(priceCents uint32, sampleValue int64) (Amount, error) {
	if sampleValue <= 0 {
		return 0, fmt.Errorf("price sample value must be positive, got %d", sampleValue)
	}
	need := int64(priceCents) * priceScale
	return (need + sampleValue - 1) / sampleValue, nil
}

// Covers reports whether amount pays for priceCents at sampleValue.
func Covers(amount Amount, priceCents uint32, sampleValue int64) bool {
	required, err := RequiredTokens(priceCents, sampleValue)
	if err != nil {
		return false
	}
	return amount >= required
}

// FeeOf returns pool × rate / 1000, rate being tenths of a percent.
func FeeOf(pool Amount, rate uint32) Amount {
	return pool * int64(rate) / 1000
}

// Format renders an amount as "2.0000" or, with a symbol, "2.0000 TON".
func Format(a Amount, symbol string) string {
	s := decimal.New(a, -Decimals).StringFixed(Decimals)
	if symbol == "" {
		return s
	}
	return s + " " + symbol
}

// Parse reads a decimal string ("2", "2.5", "0.0001") into an Amount. More
// than four fractional digits are rejected rather than rounded, and so are
// values that do not fit an int64 in 10^-4 units.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	scaled := d.Shift(Decimals)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than %d decimals", s, Decimals)
	}
	if scaled.LessThan(minAmount) || scaled.GreaterThan(maxAmount) {
		return 0, fmt.Errorf("amount %q is out of range", s)
	}
	return scaled.IntPart(), nil
}

// ParseAsset splits an escrow quantity such as "2.0000 TON" into its amount
// and symbol.
func ParseAsset(s string) (Amount, string, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, "", fmt.Errorf("invalid asset %q: want \"<amount> <symbol>\"", s)
	}
	a, err := Parse(fields[0])
	if err != nil {
		return 0, "", err
	}
	return a, fields[1], nil
}
