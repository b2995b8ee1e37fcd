package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user supplied decimal string to a positive amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. Signs,
// exponents and thousands separators are rejected. At most MaxAmountScale
// decimal places and MaxAmountIntDigits integer digits are allowed.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,5")  -> 12.5, nil
//	ParseAmount("0")     -> 0, ErrInvalidAmount
//	ParseAmount("1.23456") -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if s == "." {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// Amount columns are NUMERIC(18, 4) on postgres.
const (
	MaxAmountScale     = 4
	MaxAmountIntDigits = 14
)

var amountCeiling = decimal.New(1, MaxAmountIntDigits)

// ValidateAmount enforces the amount > 0 invariant and keeps the value
// representable without rounding in every backend.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	if !d.Equal(d.Truncate(MaxAmountScale)) {
		return ErrInvalidAmount
	}
	if d.GreaterThanOrEqual(amountCeiling) {
		return ErrInvalidAmount
	}
	return nil
}

// FormatAmount renders an amount with two decimals for display.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
