package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
	ErrAmountTooLarge  = errors.New("amount exceeds 9999999999999.99")
)

// Limit is the first magnitude a NUMERIC(15,2) column cannot hold.
var Limit = decimal.New(1, 13)

func InRange(value decimal.Decimal) bool {
	return value.Abs().LessThan(Limit)
}

// Parse reads a decimal amount with at most two fractional digits.
// A comma is accepted as the decimal separator.
func Parse(input string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(trimmed, ",") == 1 && !strings.Contains(trimmed, ".") {
		trimmed = strings.Replace(trimmed, ",", ".", 1)
	}
	if strings.ContainsAny(trimmed, "eE") {
		return decimal.Zero, ErrInvalidAmount
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if value.Exponent() < -2 && !value.Equal(value.Round(2)) {
		return decimal.Zero, ErrTooManyDecimals
	}
	value = value.Round(2)
	if !InRange(value) {
		return decimal.Zero, ErrAmountTooLarge
	}
	return value, nil
}

func Format(value decimal.Decimal) string {
	return value.StringFixed(2)
}
