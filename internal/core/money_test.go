package core

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseSignedAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"-150", "-150", true},
		{"-150.0", "-150", true},
		{"1234.5", "1234.5", true},
		{"R$ 1.234,56", "1234.56", true},
		{"R$ -1.234,56", "-1234.56", true},
		{"-R$ 10,00", "-10", true},
		{"(150,00)", "-150", true},
		{"1.234.567", "1234567", true},
		{"1,5", "1.5", true},
		{" 2,50 ", "2.5", true},
		{"1,234.56", "1234.56", true},
		{"1.500", "1500", true},
		{"-12.345", "-12345", true},
		{"R$ 1.500", "1500", true},
		{"0.125", "0.125", true},
		{"1.5", "1.5", true},
		{"1.50", "1.5", true},
		{"1500.125", "1500.125", true},
		{"", "", false},
		{"R$", "", false},
		{"abc", "", false},
		{"1,2,3x", "", false},
	}
	for _, tc := range cases {
		got, err := ParseSignedAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q: unexpected error %v", tc.in, err)
			}
			if !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s", tc.in, tc.out, got)
			}
		} else if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestParseAmountTakesAbsoluteValue(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
	}{
		{"-150.0", 15000},
		{"150", 15000},
		{"-0.01", 1},
		{"1.0050", 101}, // half away from zero
		{"-1.0050", 101},
		{"0.005", 1},
		{"92233720368547758.07", math.MaxInt64},
		{"R$ -1.234,50", 123450},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if err != nil || got.Cents != tc.cents {
			t.Fatalf("%q expected %d cents, got %d (err=%v)", tc.in, tc.cents, got.Cents, err)
		}
	}
}

func TestParseAmountRejectsOverflow(t *testing.T) {
	for _, in := range []string{"1e30", "-92233720368547758.08", "R$ 100.000.000.000.000.000,00"} {
		if _, err := ParseAmount(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("%q: expected ErrInvalidAmount, got %v", in, err)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1050}
	b := Money{Cents: 250}
	if got := a.Add(b); got.Cents != 1300 {
		t.Fatalf("Add = %d", got.Cents)
	}
	if got := b.Sub(a); got.Cents != -800 {
		t.Fatalf("Sub = %d", got.Cents)
	}
	if got := b.Sub(a).Abs(); got.Cents != 800 {
		t.Fatalf("Abs = %d", got.Cents)
	}
	if got := Sum(a, b, b); got.Cents != 1550 {
		t.Fatalf("Sum = %d", got.Cents)
	}
	if !a.Decimal().Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("Decimal = %s", a.Decimal())
	}
}

func TestRepeatedAggregationHasNoDrift(t *testing.T) {
	// 0.1 added ten times must be exactly 1.00
	var total Money
	for i := 0; i < 10; i++ {
		m, err := ParseAmount("0,10")
		if err != nil {
			t.Fatal(err)
		}
		total = total.Add(m)
	}
	if total.Cents != 100 {
		t.Fatalf("expected 100 cents, got %d", total.Cents)
	}
}
