package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"essenza/internal/core"
	"essenza/internal/services"
	"essenza/internal/sheets"
)

const barWidth = 24

type styles struct {
	title     lipgloss.Style
	label     lipgloss.Style
	muted     lipgloss.Style
	expense   lipgloss.Style
	revenue   lipgloss.Style
	ok        lipgloss.Style
	errorText lipgloss.Style
	box       lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa")),
		label:     lipgloss.NewStyle().Width(20),
		muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c")),
		expense:   lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8")),
		revenue:   lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")),
		ok:        lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")).Bold(true),
		errorText: lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8")).Bold(true),
		box:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

func (s styles) clientList(clients []sheets.Client) string {
	lines := []string{s.title.Render("Clientes")}
	for _, c := range clients {
		lines = append(lines, fmt.Sprintf("%s %s", s.label.Render(c.ID), s.muted.Render(c.DisplayName)))
	}
	return strings.Join(lines, "\n")
}

func (s styles) dashboard(d services.Dashboard) string {
	name := d.Client.DisplayName
	if name == "" {
		name = d.Client.ID
	}

	balance := s.revenue
	if d.Balance.Cents < 0 {
		balance = s.expense
	}
	totals := s.box.Render(strings.Join([]string{
		s.label.Render("Despesas") + s.expense.Render(core.FormatBRL(d.TotalExpenses)),
		s.label.Render("Receitas") + s.revenue.Render(core.FormatBRL(d.TotalRevenues)),
		s.label.Render("Saldo") + balance.Render(core.FormatBRL(d.Balance)),
	}, "\n"))

	sections := []string{
		s.title.Render(fmt.Sprintf("%s · %s", name, d.Period.Label())),
		totals,
		s.categories("Despesas por categoria", d.ExpensesByCategory, s.expense),
		s.categories("Receitas por categoria", d.RevenuesByCategory, s.revenue),
		s.evolution(d.Evolution),
	}

	if len(d.Insights) > 0 {
		lines := []string{s.title.Render("Destaques")}
		for _, in := range d.Insights {
			lines = append(lines, "• "+in)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if d.Rejected > 0 {
		sections = append(sections, s.muted.Render(fmt.Sprintf("%d linha(s) ignorada(s) por data ou valor inválido.", d.Rejected)))
	}
	return strings.Join(sections, "\n\n")
}

func (s styles) categories(title string, items []core.CategoryAmount, color lipgloss.Style) string {
	lines := []string{s.title.Render(title)}
	if len(items) == 0 {
		return strings.Join(append(lines, s.muted.Render("Nenhum lançamento no período.")), "\n")
	}

	var top int64
	for _, it := range items {
		if it.Amount.Cents > top {
			top = it.Amount.Cents
		}
	}
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			s.label.Render(truncate(it.Name, 19)),
			color.Render(bar(it.Amount.Cents, top)),
			core.FormatBRL(it.Amount)))
	}
	return strings.Join(lines, "\n")
}

func (s styles) evolution(points []core.MonthAmount) string {
	lines := []string{s.title.Render("Evolução mensal")}
	if len(points) == 0 {
		return strings.Join(append(lines, s.muted.Render("Sem lançamentos.")), "\n")
	}

	var top int64
	for _, p := range points {
		if p.Amount.Cents > top {
			top = p.Amount.Cents
		}
	}
	for _, p := range points {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			s.label.Render(p.Label()), bar(p.Amount.Cents, top), core.FormatBRL(p.Amount)))
	}
	return strings.Join(lines, "\n")
}

func (s styles) pending(o services.PendingOverview) string {
	header := s.title.Render(fmt.Sprintf("Pendências · %s · referência %s", o.Client, o.Reference))
	switch o.Status {
	case services.PendingUnavailable:
		return header + "\n" + s.muted.Render("Cliente sem planilha de pendências.")
	case services.PendingDisabled:
		return header + "\n" + s.errorText.Render(o.Warning)
	}

	sections := []string{
		header,
		s.aging("A pagar", o.Payables, s.expense),
		s.aging("A receber", o.Receivables, s.revenue),
	}
	if o.Rejected > 0 {
		sections = append(sections, s.muted.Render(fmt.Sprintf("%d linha(s) ignorada(s).", o.Rejected)))
	}
	return strings.Join(sections, "\n\n")
}

func (s styles) aging(title string, r services.AgingReport, color lipgloss.Style) string {
	lines := []string{s.title.Render(title)}
	for _, b := range r.Buckets {
		lines = append(lines, fmt.Sprintf("%s %3d  %s", s.label.Render(b.Bucket.Label()), b.Count, color.Render(core.FormatBRL(b.Total))))
	}
	lines = append(lines, fmt.Sprintf("%s      %s", s.label.Render("Total"), core.FormatBRL(r.Total)))
	return s.box.Render(strings.Join(lines, "\n"))
}

// bar scales cents against top into a fixed-width block bar.
func bar(cents, top int64) string {
	if top <= 0 || cents <= 0 {
		return strings.Repeat(" ", barWidth)
	}
	n := int(cents * barWidth / top)
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n) + strings.Repeat(" ", barWidth-n)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
