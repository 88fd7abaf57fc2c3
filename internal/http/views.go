package http

import (
	"time"

	"essenza/internal/core"
	"essenza/internal/services"
	"essenza/internal/sheets"
	"essenza/internal/storage"
)

// amountView carries both the exact cents and the display string.
type amountView struct {
	Cents     int64  `json:"cents"`
	Formatted string `json:"formatted"`
}

func amount(m core.Money) amountView {
	return amountView{Cents: m.Cents, Formatted: core.FormatBRL(m)}
}

type clientView struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

func clientViews(clients []sheets.Client) []clientView {
	out := make([]clientView, 0, len(clients))
	for _, c := range clients {
		out = append(out, clientView{ID: c.ID, DisplayName: c.DisplayName})
	}
	return out
}

type categoryView struct {
	Name   string     `json:"name"`
	Amount amountView `json:"amount"`
}

func categoryViews(in []core.CategoryAmount) []categoryView {
	out := make([]categoryView, 0, len(in))
	for _, c := range in {
		out = append(out, categoryView{Name: c.Name, Amount: amount(c.Amount)})
	}
	return out
}

func topView(c *core.CategoryAmount) *categoryView {
	if c == nil {
		return nil
	}
	return &categoryView{Name: c.Name, Amount: amount(c.Amount)}
}

type monthView struct {
	Month  string     `json:"month"`
	Amount amountView `json:"amount"`
}

func monthViews(in []core.MonthAmount) []monthView {
	out := make([]monthView, 0, len(in))
	for _, m := range in {
		out = append(out, monthView{Month: m.Label(), Amount: amount(m.Amount)})
	}
	return out
}

type dashboardView struct {
	Client             clientView     `json:"client"`
	Period             string         `json:"period"`
	Periods            []string       `json:"periods"`
	Empty              bool           `json:"empty"`
	TotalExpenses      amountView     `json:"total_expenses"`
	TotalRevenues      amountView     `json:"total_revenues"`
	Balance            amountView     `json:"balance"`
	ExpensesByCategory []categoryView `json:"expenses_by_category"`
	RevenuesByCategory []categoryView `json:"revenues_by_category"`
	Evolution          []monthView    `json:"evolution"`
	ExpenseEvolution   []monthView    `json:"expense_evolution"`
	RevenueEvolution   []monthView    `json:"revenue_evolution"`
	TopExpense         *categoryView  `json:"top_expense"`
	TopRevenue         *categoryView  `json:"top_revenue"`
	Insights           []string       `json:"insights"`
	Transactions       int            `json:"transactions"`
	RejectedRows       int            `json:"rejected_rows"`
	UnknownTypes       int            `json:"unknown_types"`
}

// periodOptions lists the selectable periods, "Todos" first.
func periodOptions(keys []core.MonthKey) []string {
	out := make([]string, 0, len(keys)+1)
	out = append(out, services.AllPeriodsLabel)
	for _, k := range keys {
		out = append(out, k.Label())
	}
	return out
}

func newDashboardView(d services.Dashboard) dashboardView {
	return dashboardView{
		Client:             clientView{ID: d.Client.ID, DisplayName: d.Client.DisplayName},
		Period:             d.Period.Label(),
		Periods:            periodOptions(d.Periods),
		Empty:              d.Empty(),
		TotalExpenses:      amount(d.TotalExpenses),
		TotalRevenues:      amount(d.TotalRevenues),
		Balance:            amount(d.Balance),
		ExpensesByCategory: categoryViews(d.ExpensesByCategory),
		RevenuesByCategory: categoryViews(d.RevenuesByCategory),
		Evolution:          monthViews(d.Evolution),
		ExpenseEvolution:   monthViews(d.ExpenseEvolution),
		RevenueEvolution:   monthViews(d.RevenueEvolution),
		TopExpense:         topView(d.TopExpense),
		TopRevenue:         topView(d.TopRevenue),
		Insights:           d.Insights,
		Transactions:       len(d.Transactions),
		RejectedRows:       d.Rejected,
		UnknownTypes:       d.UnknownTypes,
	}
}

type bucketView struct {
	Bucket string     `json:"bucket"`
	Label  string     `json:"label"`
	Count  int        `json:"count"`
	Total  amountView `json:"total"`
}

type pendingItemView struct {
	DueDate   string     `json:"due_date"`
	Category  string     `json:"category"`
	Amount    amountView `json:"amount"`
	DaysToDue int        `json:"days_to_due"`
	Buckets   []string   `json:"buckets"`
}

type agingView struct {
	Total      amountView        `json:"total"`
	Buckets    []bucketView      `json:"buckets"`
	ByCategory []categoryView    `json:"by_category"`
	Items      []pendingItemView `json:"items"`
}

func newAgingView(r services.AgingReport) agingView {
	v := agingView{
		Total:      amount(r.Total),
		Buckets:    make([]bucketView, 0, len(r.Buckets)),
		ByCategory: categoryViews(r.ByCategory),
		Items:      make([]pendingItemView, 0, len(r.Items)),
	}
	for _, b := range r.Buckets {
		v.Buckets = append(v.Buckets, bucketView{Bucket: string(b.Bucket), Label: b.Bucket.Label(), Count: b.Count, Total: amount(b.Total)})
	}
	for _, it := range r.Items {
		buckets := make([]string, 0, len(it.Buckets))
		for _, b := range it.Buckets {
			buckets = append(buckets, string(b))
		}
		v.Items = append(v.Items, pendingItemView{
			DueDate:   it.DueDate.Format(isoDate),
			Category:  it.Category,
			Amount:    amount(it.Amount),
			DaysToDue: it.DaysToDue,
			Buckets:   buckets,
		})
	}
	return v
}

type pendingView struct {
	Client      string     `json:"client"`
	Reference   string     `json:"reference"`
	Status      string     `json:"status"`
	Warning     string     `json:"warning,omitempty"`
	Payables    *agingView `json:"payables,omitempty"`
	Receivables *agingView `json:"receivables,omitempty"`
	Rejected    int        `json:"rejected_rows"`
}

func newPendingView(p services.PendingOverview) pendingView {
	v := pendingView{
		Client:    p.Client,
		Reference: p.Reference.Format(isoDate),
		Status:    string(p.Status),
		Warning:   p.Warning,
		Rejected:  p.Rejected,
	}
	if p.Status == services.PendingAvailable {
		payables, receivables := newAgingView(p.Payables), newAgingView(p.Receivables)
		v.Payables, v.Receivables = &payables, &receivables
	}
	return v
}

type runView struct {
	ID            string     `json:"id"`
	Client        string     `json:"client"`
	Period        string     `json:"period"`
	TotalExpenses amountView `json:"total_expenses"`
	TotalRevenues amountView `json:"total_revenues"`
	Balance       amountView `json:"balance"`
	RejectedRows  int        `json:"rejected_rows"`
	Pages         int        `json:"pages"`
	Destination   string     `json:"destination"`
	CreatedAt     time.Time  `json:"created_at"`
}

func runViews(runs []storage.ReportRun) []runView {
	out := make([]runView, 0, len(runs))
	for _, r := range runs {
		out = append(out, runView{
			ID:            r.ID,
			Client:        r.Client,
			Period:        r.Period,
			TotalExpenses: amount(r.TotalExpenses),
			TotalRevenues: amount(r.TotalRevenues),
			Balance:       amount(r.Balance),
			RejectedRows:  r.RejectedRows,
			Pages:         r.Pages,
			Destination:   r.Destination,
			CreatedAt:     r.CreatedAt,
		})
	}
	return out
}
