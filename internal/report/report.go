// Package report renders the fixed-layout client PDF.
//
// The page sequence never changes: cover, financial summary, expenses by
// category, revenues by category, monthly evolution, insights and a closing
// page. Empty groups still get their page, with a short notice in place of
// the chart.
package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"essenza/internal/core"
	"essenza/internal/services"

	"github.com/go-pdf/fpdf"
)

type Page string

const (
	PageCover     Page = "cover"
	PageSummary   Page = "summary"
	PageExpenses  Page = "expenses_by_category"
	PageRevenues  Page = "revenues_by_category"
	PageEvolution Page = "monthly_evolution"
	PageInsights  Page = "insights"
	PageClosing   Page = "closing"
)

var pagePlan = []Page{PageCover, PageSummary, PageExpenses, PageRevenues, PageEvolution, PageInsights, PageClosing}

// PagePlan returns the page order of every report.
func PagePlan() []Page {
	out := make([]Page, len(pagePlan))
	copy(out, pagePlan)
	return out
}

// ConsolidatedLabel names the all-periods selection on the cover.
const ConsolidatedLabel = "Consolidado"

// Document is everything one PDF shows.
type Document struct {
	Brand       string
	LogoPath    string // optional PNG or JPEG; missing files are skipped
	GeneratedAt time.Time
	Dashboard   services.Dashboard
}

// PeriodLabel is the cover's period line.
func (d Document) PeriodLabel() string {
	if d.Dashboard.Period.IsAll() {
		return ConsolidatedLabel
	}
	return d.Dashboard.Period.Label()
}

func (d Document) brand() string {
	if d.Brand == "" {
		return "Essenza"
	}
	return d.Brand
}

func (d Document) clientName() string {
	if d.Dashboard.Client.DisplayName != "" {
		return d.Dashboard.Client.DisplayName
	}
	return d.Dashboard.Client.ID
}

// Render writes doc as a PDF to w and returns the page count. The output
// only depends on doc: GeneratedAt pins the creation date.
func Render(w io.Writer, doc Document) (int, error) {
	r := newRenderer(doc)
	for _, p := range pagePlan {
		r.pdf.AddPage()
		r.pages[p](r)
	}
	if err := r.pdf.Error(); err != nil {
		return 0, fmt.Errorf("render report: %w", err)
	}
	pages := r.pdf.PageNo()
	if err := r.pdf.Output(w); err != nil {
		return 0, fmt.Errorf("write report: %w", err)
	}
	return pages, nil
}

type renderer struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	doc   Document
	logo  bool
	pages map[Page]func(*renderer)
}

const (
	pageW    = 210.0
	margin   = 15.0
	contentW = pageW - 2*margin
)

func newRenderer(doc Document) *renderer {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, 20, margin)
	pdf.SetAutoPageBreak(false, 15)
	pdf.SetCatalogSort(true)
	created := doc.GeneratedAt.UTC()
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetCreator(doc.brand(), true)
	pdf.SetAuthor(doc.brand(), true)
	pdf.SetTitle(fmt.Sprintf("Relatório Financeiro %s - %s", doc.clientName(), doc.PeriodLabel()), true)

	r := &renderer{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
		doc: doc,
	}
	if doc.LogoPath != "" {
		if _, err := os.Stat(doc.LogoPath); err == nil {
			r.logo = true
		}
	}
	r.pages = map[Page]func(*renderer){
		PageCover:     (*renderer).cover,
		PageSummary:   (*renderer).summary,
		PageExpenses:  (*renderer).expenses,
		PageRevenues:  (*renderer).revenues,
		PageEvolution: (*renderer).evolution,
		PageInsights:  (*renderer).insights,
		PageClosing:   (*renderer).closing,
	}
	return r
}

func (r *renderer) centered(y float64, style string, size float64, text string) {
	r.pdf.SetFont("Helvetica", style, size)
	r.pdf.SetXY(margin, y)
	r.pdf.CellFormat(contentW, size*0.5, r.tr(text), "", 0, "C", false, 0, "")
}

func (r *renderer) title(text string) {
	r.pdf.SetFont("Helvetica", "B", 18)
	r.pdf.SetTextColor(40, 40, 40)
	r.pdf.SetXY(margin, 20)
	r.pdf.CellFormat(contentW, 10, r.tr(text), "", 1, "L", false, 0, "")
	r.pdf.SetDrawColor(180, 160, 120)
	r.pdf.Line(margin, 32, pageW-margin, 32)
}

func (r *renderer) image(x, y, w float64) {
	if !r.logo {
		return
	}
	r.pdf.ImageOptions(r.doc.LogoPath, x, y, w, 0, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
}

func (r *renderer) cover() {
	r.centered(40, "B", 24, "RELATÓRIO FINANCEIRO - "+r.doc.brand())
	r.image(pageW/2-25, 60, 50)
	r.centered(125, "", 16, "Cliente: "+r.doc.clientName())
	r.centered(137, "", 16, "Período: "+r.doc.PeriodLabel())
	r.centered(270, "", 10, "Gerado em "+r.doc.GeneratedAt.Format("02/01/2006 15:04"))
}

func (r *renderer) summary() {
	d := r.doc.Dashboard
	r.title("Resumo Financeiro")
	rows := []struct {
		label string
		value core.Money
	}{
		{"Total de Despesas", d.TotalExpenses},
		{"Total de Receitas", d.TotalRevenues},
		{"Saldo do Período", d.Balance},
	}
	r.pdf.SetFont("Helvetica", "", 14)
	y := 45.0
	for _, row := range rows {
		r.pdf.SetXY(margin, y)
		r.pdf.CellFormat(80, 10, r.tr(row.label+":"), "", 0, "L", false, 0, "")
		r.pdf.CellFormat(60, 10, r.tr(core.FormatBRL(row.value)), "", 0, "R", false, 0, "")
		y += 14
	}
	if d.Rejected > 0 {
		r.pdf.SetFont("Helvetica", "I", 10)
		r.pdf.SetXY(margin, y+6)
		r.pdf.CellFormat(contentW, 6, r.tr(fmt.Sprintf("%d linha(s) ignorada(s) por data ou valor inválido.", d.Rejected)), "", 0, "L", false, 0, "")
	}
}

func (r *renderer) expenses() {
	r.title("Despesas por Categoria")
	r.categoryChart(r.doc.Dashboard.ExpensesByCategory, "Nenhuma despesa registrada no período.", rgb{192, 80, 77})
}

func (r *renderer) revenues() {
	r.title("Receitas por Categoria")
	r.categoryChart(r.doc.Dashboard.RevenuesByCategory, "Nenhuma receita registrada no período.", rgb{79, 129, 102})
}

func (r *renderer) evolution() {
	r.title("Evolução Mensal")
	r.monthChart(r.doc.Dashboard.Evolution, rgb{68, 114, 160})
}

func (r *renderer) insights() {
	r.title("Insights " + r.doc.brand())
	r.pdf.SetFont("Helvetica", "", 13)
	r.pdf.SetXY(margin, 42)
	for _, line := range r.doc.Dashboard.Insights {
		r.pdf.SetX(margin)
		r.pdf.MultiCell(contentW, 8, r.tr("- "+line), "", "L", false)
		r.pdf.Ln(3)
	}
}

func (r *renderer) closing() {
	r.centered(60, "B", 24, r.doc.brand()+" Gestão Financeira")
	r.centered(80, "", 14, "Relatório gerado automaticamente pelo sistema "+r.doc.brand()+".")
	r.image(pageW/2-20, 100, 40)
}
