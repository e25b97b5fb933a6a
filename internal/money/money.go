// Package money holds the whole-dollar arithmetic shared by the ledger and
// setup: decimal rates applied to integer amounts, and display formatting.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MustRate parses a decimal rate such as "0.2" or "0.007". It panics on a
// malformed literal and is meant for package-level constants.
func MustRate(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ParseRate parses a decimal rate from configuration input.
func ParseRate(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse rate %q: %w", s, err)
	}
	return d, nil
}

// Mul returns amount × rate without rounding.
func Mul(amount int, rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(amount)).Mul(rate)
}

// FloorMul returns floor(amount × rate).
func FloorMul(amount int, rate decimal.Decimal) int {
	return int(Mul(amount, rate).Floor().IntPart())
}

var printer = message.NewPrinter(language.AmericanEnglish)

// Format renders a dollar amount with thousands separators, e.g. "$12,500"
// or "-$900".
func Format(amount int) string {
	if amount < 0 {
		return printer.Sprintf("-$%d", -amount)
	}
	return printer.Sprintf("$%d", amount)
}
