package report

import (
	"essenza/internal/core"
)

type rgb struct{ r, g, b int }

// maxBars keeps category charts on one page; the tail is merged.
const maxBars = 12

const otherLabel = "Outras"

// topCategories keeps the first maxBars-1 entries and merges the rest into
// one "Outras" bar so the chart still sums to the group total.
func topCategories(items []core.CategoryAmount) []core.CategoryAmount {
	if len(items) <= maxBars {
		return items
	}
	out := make([]core.CategoryAmount, 0, maxBars)
	out = append(out, items[:maxBars-1]...)
	var rest core.Money
	for _, it := range items[maxBars-1:] {
		rest = rest.Add(it.Amount)
	}
	return append(out, core.CategoryAmount{Name: otherLabel, Amount: rest})
}

func maxCents(values []int64) int64 {
	var m int64
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

// categoryChart draws horizontal bars, largest first, each labelled with
// its formatted amount.
func (r *renderer) categoryChart(items []core.CategoryAmount, empty string, color rgb) {
	if len(items) == 0 {
		r.notice(empty)
		return
	}
	bars := topCategories(items)
	values := make([]int64, len(bars))
	for i, b := range bars {
		values[i] = b.Amount.Cents
	}
	peak := maxCents(values)

	const (
		labelW = 55.0
		valueW = 35.0
		barH   = 9.0
		gap    = 6.0
	)
	maxBarW := contentW - labelW - valueW
	y := 45.0
	r.pdf.SetFont("Helvetica", "", 10)
	r.pdf.SetFillColor(color.r, color.g, color.b)
	for _, b := range bars {
		r.pdf.SetXY(margin, y)
		r.pdf.CellFormat(labelW, barH, r.tr(truncate(b.Name, 30)), "", 0, "L", false, 0, "")
		w := 0.0
		if peak > 0 {
			w = maxBarW * float64(b.Amount.Cents) / float64(peak)
		}
		if w > 0 {
			r.pdf.Rect(margin+labelW, y+1, w, barH-2, "F")
		}
		r.pdf.SetXY(margin+labelW+w+2, y)
		r.pdf.CellFormat(valueW, barH, r.tr(core.FormatBRL(b.Amount)), "", 0, "L", false, 0, "")
		y += barH + gap
	}
}

// monthChart draws one vertical bar per month in chronological order.
func (r *renderer) monthChart(points []core.MonthAmount, color rgb) {
	if len(points) == 0 {
		r.notice("Nenhum lançamento registrado.")
		return
	}
	values := make([]int64, len(points))
	for i, p := range points {
		values[i] = p.Amount.Cents
	}
	peak := maxCents(values)

	const (
		baseY  = 230.0
		chartH = 160.0
	)
	slot := contentW / float64(len(points))
	barW := slot * 0.6
	r.pdf.SetDrawColor(120, 120, 120)
	r.pdf.Line(margin, baseY, pageW-margin, baseY)
	r.pdf.SetFillColor(color.r, color.g, color.b)

	fontSize := 9.0
	if len(points) > 12 {
		fontSize = 6
	}
	for i, p := range points {
		h := 0.0
		if peak > 0 {
			h = chartH * float64(p.Amount.Cents) / float64(peak)
		}
		x := margin + float64(i)*slot + (slot-barW)/2
		if h > 0 {
			r.pdf.Rect(x, baseY-h, barW, h, "F")
		}
		r.pdf.SetFont("Helvetica", "", fontSize)
		r.pdf.SetXY(margin+float64(i)*slot, baseY+2)
		r.pdf.CellFormat(slot, 5, r.tr(p.Label()), "", 0, "C", false, 0, "")
		r.pdf.SetXY(margin+float64(i)*slot, baseY-h-6)
		r.pdf.CellFormat(slot, 5, r.tr(core.FormatBRL(p.Amount)), "", 0, "C", false, 0, "")
	}
}

func (r *renderer) notice(text string) {
	r.pdf.SetFont("Helvetica", "I", 12)
	r.pdf.SetTextColor(110, 110, 110)
	r.pdf.SetXY(margin, 50)
	r.pdf.CellFormat(contentW, 10, r.tr(text), "", 0, "L", false, 0, "")
	r.pdf.SetTextColor(40, 40, 40)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
