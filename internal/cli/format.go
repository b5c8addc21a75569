// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every formatted amount. Commands set it from config.
var CurrencySymbol = "$"

// FormatMoney formats an amount with two decimals and thousands separators.
// e.g., 1234.5 -> "$1,234.50", -20 -> "-$20.00"
func FormatMoney(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)

	intPart, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err == nil {
		intPart = FormatNumber(n)
	}

	out := CurrencySymbol + intPart + "." + frac
	if neg && !d.Abs().Round(2).IsZero() {
		return "-" + out
	}
	return out
}

// FormatMoneyShort drops the cents on large amounts for tight columns.
// e.g., 12345.67 -> "$12,346", 99.5 -> "$99.50"
func FormatMoneyShort(d decimal.Decimal) string {
	if d.Abs().LessThan(decimal.NewFromInt(1000)) {
		return FormatMoney(d)
	}
	r := d.Round(0).IntPart()
	if r < 0 {
		return "-" + CurrencySymbol + FormatNumber(-r)
	}
	return CurrencySymbol + FormatNumber(r)
}

// FormatMonths formats a month count as years and months.
// e.g., 27 -> "2y 3m", 8 -> "8m", 24 -> "2y"
func FormatMonths(months int) string {
	if months <= 0 {
		return "0m"
	}
	years := months / 12
	rest := months % 12
	switch {
	case years == 0:
		return fmt.Sprintf("%dm", rest)
	case rest == 0:
		return fmt.Sprintf("%dy", years)
	default:
		return fmt.Sprintf("%dy %dm", years, rest)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatRate formats an annual rate that is already in percent.
func FormatRate(pct decimal.Decimal) string {
	return pct.StringFixed(2) + "%"
}

// FormatDelta formats a money change with an explicit sign.
func FormatDelta(current, previous decimal.Decimal) string {
	delta := current.Sub(previous)
	if delta.IsNegative() {
		return "-" + FormatMoney(delta.Neg())
	}
	return "+" + FormatMoney(delta)
}

// ShortID trims a record ID for display. Any unique prefix is accepted back.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
