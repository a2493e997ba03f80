package domain

import "github.com/shopspring/decimal"

// PaymentTolerance is the overshoot below which a payment is still accepted
// against a rental's remaining balance.
var PaymentTolerance = decimal.New(1, -2)

// Amount parses a decimal literal such as "25.00". It panics on malformed
// input and is meant for constants and tests.
func Amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// RoundCents applies half-up rounding to two decimal places.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// HasCentsPrecision reports whether d carries no more than two decimal places.
func HasCentsPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

func SumAmounts(amounts ...decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, amounts...)
}
