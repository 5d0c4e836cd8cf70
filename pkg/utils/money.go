package utils

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// FormatMoney renders an amount with two decimals for display
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Percentage returns amount × pct / 100 without rounding
func Percentage(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}
