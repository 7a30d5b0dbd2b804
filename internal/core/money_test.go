package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12", 1200, true},
		{"0.01", 1, true},
		{".50", 50, true},
		{"12.345", 1234, true}, // third digit rounds half-up
		{"12.346", 1235, true},
		{" 7.5 ", 750, true},
		{"", 0, false},
		{"0", 0, false},
		{"0.00", 0, false},
		{"-1.00", 0, false},
		{"+1.00", 0, false},
		{"1.2.3", 0, false},
		{"abc", 0, false},
		{"12a.00", 0, false},
		{"92233720368547759", 0, false}, // would overflow at *100
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q: got (%d, %v), want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: expected error, got %d", tc.in, got)
		}
	}
}

func TestMoneyDecimal(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{1234, "12.34"},
		{-7550, "-75.50"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).Decimal(); got != tc.want {
			t.Fatalf("%d: got %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyGrouped(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{123450, "1,234.50"},
		{100, "1.00"},
		{99999999, "999,999.99"},
		{100000000, "1,000,000.00"},
		{-123450, "-1,234.50"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).Grouped(); got != tc.want {
			t.Fatalf("%d: got %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(Money{Cents: 123450}, EUR); got != "€1,234.50" {
		t.Fatalf("got %q", got)
	}
	if got := FormatAmount(Money{Cents: -500}, USD); got != "-$5.00" {
		t.Fatalf("got %q", got)
	}
	// Unknown codes fall back to the default symbol.
	if got := FormatAmount(Money{Cents: 100}, CurrencyCode("XXX")); got != "$1.00" {
		t.Fatalf("got %q", got)
	}
}
