package ledger

import (
	"strings"
	"unicode"

	"essenza/internal/core"

	"github.com/schollz/closestmatch"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Schema names the columns a ledger must carry.
type Schema struct {
	Date     string
	Amount   string
	Category string
	Type     string
}

// PendingSchema names the columns of the PAGAR/RECEBER sheets.
type PendingSchema struct {
	DueDate  string
	Amount   string
	Category string
}

// DefaultSchema returns the column names used by the Essenza ledgers.
func DefaultSchema() Schema {
	return Schema{Date: "Data", Amount: "Valor", Category: "Categoria", Type: "Tipo"}
}

// DefaultPendingSchema returns the column names of the pending sheets.
func DefaultPendingSchema() PendingSchema {
	return PendingSchema{DueDate: "Vencimento", Amount: "Valor", Category: "Categoria"}
}

// WithDefaults fills blank names from DefaultSchema.
func (s Schema) WithDefaults() Schema {
	d := DefaultSchema()
	if s.Date == "" {
		s.Date = d.Date
	}
	if s.Amount == "" {
		s.Amount = d.Amount
	}
	if s.Category == "" {
		s.Category = d.Category
	}
	if s.Type == "" {
		s.Type = d.Type
	}
	return s
}

// WithDefaults fills blank names from DefaultPendingSchema.
func (s PendingSchema) WithDefaults() PendingSchema {
	d := DefaultPendingSchema()
	if s.DueDate == "" {
		s.DueDate = d.DueDate
	}
	if s.Amount == "" {
		s.Amount = d.Amount
	}
	if s.Category == "" {
		s.Category = d.Category
	}
	return s
}

func (s Schema) Required() []string {
	return []string{s.Date, s.Amount, s.Category, s.Type}
}

func (s PendingSchema) Required() []string {
	return []string{s.DueDate, s.Amount, s.Category}
}

// Validate checks that every required column is present in header.
func (s Schema) Validate(header []string) error {
	return validateColumns(s.Required(), header)
}

// Validate checks that every required column is present in header.
func (s PendingSchema) Validate(header []string) error {
	return validateColumns(s.Required(), header)
}

// validateColumns reports all missing columns at once. For each one it
// suggests the closest unclaimed header, comparing case- and accent-folded
// names.
func validateColumns(required, header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}

	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	claimed := make(map[string]bool, len(required))
	for _, col := range required {
		claimed[col] = true
	}
	byKey := make(map[string]string)
	var keys []string
	for _, h := range header {
		h = strings.TrimSpace(h)
		if h == "" || claimed[h] {
			continue
		}
		k := foldHeader(h)
		if _, dup := byKey[k]; dup {
			continue
		}
		byKey[k] = h
		keys = append(keys, k)
	}

	suggestions := make(map[string]string)
	if len(keys) > 0 {
		cm := closestmatch.New(keys, []int{2, 3})
		for _, col := range missing {
			if match := cm.Closest(foldHeader(col)); match != "" {
				suggestions[col] = byKey[match]
			}
		}
	}
	return &core.MissingColumnError{Columns: missing, Suggestions: suggestions}
}

func foldHeader(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
