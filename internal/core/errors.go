package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDate           = errors.New("invalid date")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrUnknownPeriod         = errors.New("unknown period")
	ErrEmptyGroup            = errors.New("empty group")
	ErrMissingColumn         = errors.New("missing required column")
	ErrMissingPendingFile    = errors.New("pending file not found")
	ErrMalformedPendingSheet = errors.New("malformed pending sheet")
	ErrNoLedgers             = errors.New("no ledger files found")
	ErrClientNotFound        = errors.New("client not found")
)

// InvalidDateError is a row-local failure; the row is dropped.
type InvalidDateError struct {
	Row   int
	Value string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("row %d: invalid date %q", e.Row, e.Value)
}

func (e *InvalidDateError) Unwrap() error { return ErrInvalidDate }

// InvalidAmountError is a row-local failure; the row is dropped.
type InvalidAmountError struct {
	Row   int
	Value string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("row %d: invalid amount %q", e.Row, e.Value)
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

// UnknownPeriodError means a caller asked for a month absent from the data.
type UnknownPeriodError struct {
	Label string
}

func (e *UnknownPeriodError) Error() string {
	return fmt.Sprintf("unknown period %q", e.Label)
}

func (e *UnknownPeriodError) Unwrap() error { return ErrUnknownPeriod }

// EmptyGroupError signals "no data for this grouping", distinct from a zero total.
type EmptyGroupError struct {
	Group string
}

func (e *EmptyGroupError) Error() string {
	return fmt.Sprintf("no data for %s", e.Group)
}

func (e *EmptyGroupError) Unwrap() error { return ErrEmptyGroup }

// MissingColumnError is raised at ingest when the header lacks required columns.
type MissingColumnError struct {
	Columns     []string
	Suggestions map[string]string
}

func (e *MissingColumnError) Error() string {
	parts := make([]string, 0, len(e.Columns))
	for _, c := range e.Columns {
		if s, ok := e.Suggestions[c]; ok && s != "" {
			parts = append(parts, fmt.Sprintf("%q (did you mean %q?)", c, s))
			continue
		}
		parts = append(parts, fmt.Sprintf("%q", c))
	}
	return "missing required column: " + strings.Join(parts, ", ")
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingColumn }

// MalformedPendingSheetError disables the aging view without failing the dashboard.
type MalformedPendingSheetError struct {
	Path    string
	Missing []string
	Err     error
}

func (e *MalformedPendingSheetError) Error() string {
	msg := "malformed pending sheet"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if len(e.Missing) > 0 {
		msg += ": missing " + strings.Join(e.Missing, ", ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedPendingSheetError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedPendingSheet, e.Err}
	}
	return []error{ErrMalformedPendingSheet}
}
