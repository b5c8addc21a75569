package cli

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"1234.5", "$1,234.50"},
		{"1234567.891", "$1,234,567.89"},
		{"-20", "-$20.00"},
		{"-0.001", "$0.00"},
		{"999.999", "$1,000.00"},
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.in)
		if got := FormatMoney(d); got != tt.want {
			t.Errorf("FormatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoneySymbol(t *testing.T) {
	prev := CurrencySymbol
	CurrencySymbol = "€"
	defer func() { CurrencySymbol = prev }()

	if got := FormatMoney(decimal.NewFromInt(1500)); got != "€1,500.00" {
		t.Errorf("got %q, want €1,500.00", got)
	}
}

func TestFormatMoneyShort(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"99.5", "$99.50"},
		{"12345.67", "$12,346"},
		{"-2500", "-$2,500"},
	}
	for _, tt := range tests {
		if got := FormatMoneyShort(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("FormatMoneyShort(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMonths(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0m"},
		{-3, "0m"},
		{8, "8m"},
		{12, "1y"},
		{27, "2y 3m"},
	}
	for _, tt := range tests {
		if got := FormatMonths(tt.in); got != tt.want {
			t.Errorf("FormatMonths(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	a := decimal.NewFromInt(150)
	b := decimal.NewFromInt(100)
	if got := FormatDelta(a, b); got != "+$50.00" {
		t.Errorf("got %q, want +$50.00", got)
	}
	if got := FormatDelta(b, a); got != "-$50.00" {
		t.Errorf("got %q, want -$50.00", got)
	}
}

func TestFormatRateAndPercent(t *testing.T) {
	if got := FormatRate(decimal.RequireFromString("18.5")); got != "18.50%" {
		t.Errorf("FormatRate = %q", got)
	}
	if got := FormatPercent(0.256); got != "25.6%" {
		t.Errorf("FormatPercent = %q", got)
	}
}

func TestShortID(t *testing.T) {
	if got := ShortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("got %q", got)
	}
	if got := ShortID("abc"); got != "abc" {
		t.Errorf("got %q", got)
	}
}
