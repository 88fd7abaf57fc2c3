package services

import (
	"essenza/internal/core"
	"sort"
	"strings"
)

// AllPeriodsLabel is the selector value meaning "no month filter".
const AllPeriodsLabel = "Todos"

// Period is either AllPeriods or a single month.
type Period struct {
	all   bool
	month core.MonthKey
}

// AllPeriods disables month filtering.
var AllPeriods = Period{all: true}

// MonthPeriod selects one month.
func MonthPeriod(k core.MonthKey) Period {
	return Period{month: k}
}

// ParsePeriod reads a selector value. Empty and "Todos" mean all periods;
// anything else must be a month label such as "Jan/2024".
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, AllPeriodsLabel) {
		return AllPeriods, nil
	}
	k, err := core.ParseMonthLabel(s)
	if err != nil {
		return Period{}, &core.UnknownPeriodError{Label: s}
	}
	return MonthPeriod(k), nil
}

func (p Period) IsAll() bool { return p.all }

// Month returns the selected month; ok is false for AllPeriods.
func (p Period) Month() (core.MonthKey, bool) {
	return p.month, !p.all
}

// Label returns "Todos" or the month label.
func (p Period) Label() string {
	if p.all {
		return AllPeriodsLabel
	}
	return p.month.Label()
}

// FilterPeriod returns a copy of txs restricted to p. A month absent from
// txs is an UnknownPeriodError rather than an empty result.
func FilterPeriod(txs []core.Transaction, p Period) ([]core.Transaction, error) {
	if p.all {
		out := make([]core.Transaction, len(txs))
		copy(out, txs)
		return out, nil
	}

	var out []core.Transaction
	for _, tx := range txs {
		if tx.Month == p.month {
			out = append(out, tx)
		}
	}
	if len(out) == 0 {
		return nil, &core.UnknownPeriodError{Label: p.month.Label()}
	}
	return out, nil
}

// AvailablePeriods lists the distinct months present in txs in
// chronological order. Selectors offer only these.
func AvailablePeriods(txs []core.Transaction) []core.MonthKey {
	seen := make(map[core.MonthKey]bool)
	var keys []core.MonthKey
	for _, tx := range txs {
		if !seen[tx.Month] {
			seen[tx.Month] = true
			keys = append(keys, tx.Month)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Index() < keys[j].Index() })
	return keys
}
