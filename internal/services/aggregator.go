package services

import (
	"essenza/internal/core"
	"sort"
)

// Total sums every amount in txs.
func Total(txs []core.Transaction) core.Money {
	var total core.Money
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

// ByType keeps the transactions of one movement type. ByType(txs, core.Paid)
// is the expense view, core.Received the revenue view.
func ByType(txs []core.Transaction, t core.MovementType) []core.Transaction {
	var out []core.Transaction
	for _, tx := range txs {
		if tx.Type == t {
			out = append(out, tx)
		}
	}
	return out
}

// RankByCategory sums amounts per category, largest first. Ties keep the
// order in which categories first appear in txs.
func RankByCategory(txs []core.Transaction) []core.CategoryAmount {
	return rankCategories(txs, func(tx core.Transaction) (string, core.Money) {
		return tx.Category, tx.Amount
	})
}

func rankCategories[T any](items []T, key func(T) (string, core.Money)) []core.CategoryAmount {
	index := make(map[string]int)
	var ranking []core.CategoryAmount
	for _, it := range items {
		name, amount := key(it)
		i, ok := index[name]
		if !ok {
			i = len(ranking)
			index[name] = i
			ranking = append(ranking, core.CategoryAmount{Name: name})
		}
		ranking[i].Amount = ranking[i].Amount.Add(amount)
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Amount.Cents > ranking[j].Amount.Cents
	})
	return ranking
}

// MonthlyEvolution sums amounts per month in chronological order. Months
// with no transactions are absent, not zero.
func MonthlyEvolution(txs []core.Transaction) []core.MonthAmount {
	sums := make(map[core.MonthKey]core.Money)
	for _, tx := range txs {
		sums[tx.Month] = sums[tx.Month].Add(tx.Amount)
	}
	out := make([]core.MonthAmount, 0, len(sums))
	for k, v := range sums {
		out = append(out, core.MonthAmount{Month: k, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Index() < out[j].Month.Index() })
	return out
}

// TopCategory returns the highest-summed category. Empty input is an
// EmptyGroupError so "no data" is never shown as a category.
func TopCategory(txs []core.Transaction) (core.CategoryAmount, error) {
	ranking := RankByCategory(txs)
	if len(ranking) == 0 {
		return core.CategoryAmount{}, &core.EmptyGroupError{Group: "category"}
	}
	return ranking[0], nil
}
