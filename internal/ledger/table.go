// Package ledger turns raw spreadsheet tables into canonical transactions
// and pending items.
package ledger

import "strings"

// Table is a raw tabular ledger: a header row plus data rows, every cell as
// text. Sources (xlsx, Google Sheets, memory) all produce this shape.
type Table struct {
	Header []string
	Rows   [][]string
}

// Row maps trimmed header names to cell values.
type Row map[string]string

// NewTable splits a cell matrix into header and rows. An empty matrix
// yields an empty table.
func NewTable(matrix [][]string) Table {
	if len(matrix) == 0 {
		return Table{}
	}
	return Table{Header: matrix[0], Rows: matrix[1:]}
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Columns returns the header names trimmed of surrounding whitespace.
func (t Table) Columns() []string {
	cols := make([]string, len(t.Header))
	for i, h := range t.Header {
		cols[i] = strings.TrimSpace(h)
	}
	return cols
}

// Records returns one Row per data row. Short rows are padded with empty
// cells; cells beyond the header are ignored. A repeated header name keeps
// its first column.
func (t Table) Records() []Row {
	cols := t.Columns()
	out := make([]Row, 0, len(t.Rows))
	for _, raw := range t.Rows {
		r := make(Row, len(cols))
		for i, c := range cols {
			if _, seen := r[c]; seen || c == "" {
				continue
			}
			r[c] = safeGet(raw, i)
		}
		out = append(out, r)
	}
	return out
}

// SheetRow converts a zero-based data row index into the 1-based
// spreadsheet row number (the header occupies row 1).
func SheetRow(i int) int {
	return i + 2
}

func safeGet(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
