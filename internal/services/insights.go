package services

import "essenza/internal/core"

// Insights returns the plain sentences of the report's insights page:
// top expense category, top revenue category and period balance.
func Insights(d Dashboard) []string {
	out := make([]string, 0, 3)
	if d.TopExpense != nil {
		out = append(out, "A maior despesa foi na categoria: "+d.TopExpense.Name+".")
	} else {
		out = append(out, "Nenhuma despesa registrada no período.")
	}
	if d.TopRevenue != nil {
		out = append(out, "A maior receita foi na categoria: "+d.TopRevenue.Name+".")
	} else {
		out = append(out, "Nenhuma receita registrada no período.")
	}
	out = append(out, "O saldo do período foi: "+core.FormatBRL(d.Balance)+".")
	return out
}
