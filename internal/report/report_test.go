package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"essenza/internal/core"
	"essenza/internal/services"
	"essenza/internal/sheets"
)

func sampleDocument() Document {
	txs := []core.Transaction{
		core.NewTransaction(core.NewDate(2024, 1, 5), core.Money{Cents: 15000}, "Aluguel", core.Paid),
		core.NewTransaction(core.NewDate(2024, 1, 20), core.Money{Cents: 90000}, "Serviços", core.Received),
		core.NewTransaction(core.NewDate(2024, 3, 2), core.Money{Cents: 8000}, "Energia elétrica", core.Paid),
	}
	d := services.Compute(txs, txs)
	d.Client = sheets.Client{ID: "padaria_sol", DisplayName: "Padaria Sol"}
	d.Period = services.AllPeriods
	d.Rejected = 2
	d.Insights = services.Insights(d)
	return Document{
		Brand:       "Essenza",
		GeneratedAt: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
		Dashboard:   d,
	}
}

func TestPagePlan(t *testing.T) {
	want := []Page{PageCover, PageSummary, PageExpenses, PageRevenues, PageEvolution, PageInsights, PageClosing}
	got := PagePlan()
	if len(got) != len(want) {
		t.Fatalf("PagePlan() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PagePlan()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	got[0] = "mutated"
	if PagePlan()[0] != PageCover {
		t.Error("PagePlan must return a copy")
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	pages, err := Render(&buf, sampleDocument())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if pages != len(PagePlan()) {
		t.Errorf("pages = %d, want %d", pages, len(PagePlan()))
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %q", buf.Bytes()[:8])
	}
}

func TestRender_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	if _, err := Render(&a, sampleDocument()); err != nil {
		t.Fatal(err)
	}
	if _, err := Render(&b, sampleDocument()); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("same document rendered to different bytes")
	}
}

func TestRender_EmptyDashboardKeepsAllPages(t *testing.T) {
	d := services.Compute(nil, nil)
	d.Client = sheets.Client{ID: "vazio"}
	d.Insights = services.Insights(d)
	doc := Document{GeneratedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Dashboard: d, LogoPath: filepath.Join(t.TempDir(), "missing.png")}

	var buf bytes.Buffer
	pages, err := Render(&buf, doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if pages != 7 {
		t.Errorf("pages = %d, want 7", pages)
	}
}

func TestPeriodLabel(t *testing.T) {
	doc := sampleDocument()
	if got := doc.PeriodLabel(); got != ConsolidatedLabel {
		t.Errorf("PeriodLabel() = %q, want %q", got, ConsolidatedLabel)
	}
	doc.Dashboard.Period = services.MonthPeriod(core.MonthKey{Year: 2024, Month: time.March})
	if got := doc.PeriodLabel(); got != "Mar/2024" {
		t.Errorf("PeriodLabel() = %q", got)
	}
}

func TestTopCategories(t *testing.T) {
	var items []core.CategoryAmount
	var total core.Money
	for i := 0; i < 20; i++ {
		amount := core.Money{Cents: int64(1000 - i)}
		items = append(items, core.CategoryAmount{Name: fmt.Sprintf("c%02d", i), Amount: amount})
		total = total.Add(amount)
	}

	bars := topCategories(items)
	if len(bars) != maxBars || bars[maxBars-1].Name != otherLabel {
		t.Fatalf("unexpected bars %+v", bars)
	}
	var sum core.Money
	for _, b := range bars {
		sum = sum.Add(b.Amount)
	}
	if sum != total {
		t.Errorf("merged bars sum %d, want %d", sum.Cents, total.Cents)
	}
	if got := topCategories(items[:3]); len(got) != 3 {
		t.Errorf("short list changed: %+v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Alimentação", 30); got != "Alimentação" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Errorf("truncate() = %q", got)
	}
}
