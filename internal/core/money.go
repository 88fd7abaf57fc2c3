// Package core provides the domain model shared by the reporting pipeline.
//
// This file contains money parsing and arithmetic. Amounts are kept as
// integer cents so repeated aggregation never drifts.
package core

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseSignedAmount parses a ledger amount cell into a decimal.
//
// It accepts raw spreadsheet numbers ("-150.5", "1.5E+3") as well as
// pt-BR text ("R$ -1.234,56", "(150,00)"). Dots grouping exact thousands
// ("1.500", "12.345.678") are thousands separators, as is a dot before a
// comma; any other single dot is a decimal point.
//
// Examples:
//
//	ParseSignedAmount("-150")        -> -150
//	ParseSignedAmount("R$ 1.234,56") -> 1234.56
//	ParseSignedAmount("1234.5")      -> 1234.5
//	ParseSignedAmount("1.500")       -> 1500
func ParseSignedAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' || r == '\t' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	s = normalizeSeparators(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// thousandsGrouped matches pt-BR integers written with dot grouping. A
// leading zero group ("0.125") is a decimal fraction, not a grouping.
var thousandsGrouped = regexp.MustCompile(`^[1-9][0-9]{0,2}(\.[0-9]{3})+$`)

func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case lastDot >= 0 && (strings.Count(s, ".") > 1 || thousandsGrouped.MatchString(s)):
		return strings.ReplaceAll(s, ".", "")
	default:
		return s
	}
}

// maxReais is the largest magnitude whose cents fit in an int64.
var maxReais = decimal.NewFromInt(math.MaxInt64).Shift(-2)

// InCentsRange reports whether d can be held by Money without overflow.
func InCentsRange(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(maxReais)
}

// MoneyFromDecimal rounds d half away from zero to whole cents. d must be
// InCentsRange.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// ParseAmount parses a cell and returns its absolute value in cents.
func ParseAmount(s string) (Money, error) {
	d, err := ParseSignedAmount(s)
	if err != nil {
		return Money{}, err
	}
	if !InCentsRange(d) {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d.Abs()), nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) Neg() Money        { return Money{Cents: -m.Cents} }
func (m Money) IsZero() bool      { return m.Cents == 0 }

func (m Money) Abs() Money {
	if m.Cents < 0 {
		return m.Neg()
	}
	return m
}

// Decimal returns the exact value in reais.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Reais returns the value as a float64 for chart scaling only.
// Note: use cents for calculations.
func (m Money) Reais() float64 {
	return float64(m.Cents) / 100.0
}

// Sum adds up a list of amounts.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
