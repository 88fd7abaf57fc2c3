package ledger

import (
	"fmt"
	"strings"

	"essenza/internal/core"

	"golang.org/x/text/unicode/norm"
)

// UncategorizedLabel replaces blank category cells.
const UncategorizedLabel = "Sem categoria"

// RowError records why a data row was dropped.
type RowError struct {
	Row int // spreadsheet row number, header is row 1
	Err error
}

func (e RowError) Error() string {
	return e.Err.Error()
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Result is the outcome of normalizing a ledger table.
type Result struct {
	Transactions []core.Transaction
	Rejected     []RowError
}

// PendingResult is the outcome of normalizing a PAGAR or RECEBER table.
type PendingResult struct {
	Items    []core.PendingItem
	Rejected []RowError
}

// Normalizer converts raw tables into canonical records. It holds no state
// besides the column names and is safe for concurrent use.
type Normalizer struct {
	schema  Schema
	pending PendingSchema
}

// NewNormalizer creates a Normalizer; blank column names take defaults.
func NewNormalizer(schema Schema, pending PendingSchema) *Normalizer {
	return &Normalizer{schema: schema.WithDefaults(), pending: pending.WithDefaults()}
}

// Schema returns the ledger columns in use.
func (n *Normalizer) Schema() Schema { return n.schema }

// PendingSchema returns the pending-sheet columns in use.
func (n *Normalizer) PendingSchema() PendingSchema { return n.pending }

// Normalize validates the header and converts every row. Rows with an
// unparseable date or amount are dropped and reported in Result.Rejected;
// rows with an unrecognized type are kept as core.Unknown. Blank rows are
// skipped silently.
func (n *Normalizer) Normalize(t Table) (Result, error) {
	if err := n.schema.Validate(t.Header); err != nil {
		return Result{}, err
	}

	records := t.Records()
	res := Result{Transactions: make([]core.Transaction, 0, len(records))}
	for i, r := range records {
		row := SheetRow(i)
		if blank(r, n.schema.Required()) {
			continue
		}

		date, err := ParseDayFirst(r[n.schema.Date])
		if err != nil {
			res.Rejected = append(res.Rejected, RowError{Row: row, Err: &core.InvalidDateError{Row: row, Value: r[n.schema.Date]}})
			continue
		}
		amount, err := core.ParseAmount(r[n.schema.Amount])
		if err != nil {
			res.Rejected = append(res.Rejected, RowError{Row: row, Err: &core.InvalidAmountError{Row: row, Value: r[n.schema.Amount]}})
			continue
		}

		res.Transactions = append(res.Transactions, core.NewTransaction(
			date,
			amount,
			NormalizeCategory(r[n.schema.Category]),
			core.ParseMovementType(r[n.schema.Type]),
		))
	}
	return res, nil
}

// NormalizePending converts a PAGAR/RECEBER table. The direction comes from
// the sheet the table was read from, not from its content.
func (n *Normalizer) NormalizePending(t Table, dir core.Direction) (PendingResult, error) {
	if dir != core.Payable && dir != core.Receivable {
		return PendingResult{}, fmt.Errorf("unknown pending direction %q", dir)
	}
	if err := n.pending.Validate(t.Header); err != nil {
		return PendingResult{}, err
	}

	records := t.Records()
	res := PendingResult{Items: make([]core.PendingItem, 0, len(records))}
	for i, r := range records {
		row := SheetRow(i)
		if blank(r, n.pending.Required()) {
			continue
		}

		due, err := ParseDayFirst(r[n.pending.DueDate])
		if err != nil {
			res.Rejected = append(res.Rejected, RowError{Row: row, Err: &core.InvalidDateError{Row: row, Value: r[n.pending.DueDate]}})
			continue
		}
		amount, err := core.ParseAmount(r[n.pending.Amount])
		if err != nil {
			res.Rejected = append(res.Rejected, RowError{Row: row, Err: &core.InvalidAmountError{Row: row, Value: r[n.pending.Amount]}})
			continue
		}

		res.Items = append(res.Items, core.PendingItem{
			DueDate:   due,
			Amount:    amount,
			Category:  NormalizeCategory(r[n.pending.Category]),
			Direction: dir,
		})
	}
	return res, nil
}

// NormalizeCategory trims, collapses inner whitespace and applies NFC so
// "Alimentação" typed two different ways groups as one category.
func NormalizeCategory(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return UncategorizedLabel
	}
	return norm.NFC.String(s)
}

func blank(r Row, cols []string) bool {
	for _, c := range cols {
		if r[c] != "" {
			return false
		}
	}
	return true
}
