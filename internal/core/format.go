package core

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// brPrinter is fixed to pt-BR; output never depends on the host locale.
var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders cents as "R$ 1.234,50". Negative values keep the
// sign after the symbol: "R$ -1.234,50".
func FormatBRL(m Money) string {
	// The magnitude is unsigned so math.MinInt64 does not overflow.
	cents := uint64(m.Cents)
	sign := ""
	if m.Cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("R$ %s%s,%02d", sign, brPrinter.Sprintf("%d", cents/100), cents%100)
}

// Format renders numeric values as currency. Strings are returned as-is,
// so formatting an already formatted value is a no-op.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case Money:
		return FormatBRL(x)
	case *Money:
		if x == nil {
			return ""
		}
		return FormatBRL(*x)
	case decimal.Decimal:
		if !InCentsRange(x) {
			return x.String()
		}
		return FormatBRL(MoneyFromDecimal(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Sprint(x)
		}
		return Format(decimal.NewFromFloat(x))
	case float32:
		return Format(float64(x))
	case int:
		return Format(int64(x))
	case int64:
		return Format(decimal.NewFromInt(x))
	default:
		return fmt.Sprint(v)
	}
}
