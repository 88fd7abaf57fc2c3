package core

import (
	"strings"
	"time"
)

const (
	Paid     MovementType = "paid"
	Received MovementType = "received"
	Unknown  MovementType = "unknown"
)

const (
	Payable    Direction = "payable"
	Receivable Direction = "receivable"
)

type (
	MovementType string

	// Direction says which pending sheet an item came from.
	Direction string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is one normalized ledger row.
	Transaction struct {
		Date     Date
		Amount   Money // always >= 0
		Category string
		Type     MovementType
		Month    MonthKey
	}

	// PendingItem is a not-yet-settled payable or receivable.
	PendingItem struct {
		DueDate   Date
		Amount    Money
		Category  string
		Direction Direction
	}
)

// ParseMovementType matches the ledger's type column case-insensitively.
// Anything other than "pago" or "recebido" is Unknown.
func ParseMovementType(raw string) MovementType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pago":
		return Paid
	case "recebido":
		return Received
	default:
		return Unknown
	}
}

// Label returns the Portuguese word used in reports.
func (t MovementType) Label() string {
	switch t {
	case Paid:
		return "Despesa"
	case Received:
		return "Receita"
	default:
		return "Indefinido"
	}
}

// Label returns the Portuguese name of the pending sheet.
func (d Direction) Label() string {
	if d == Payable {
		return "A pagar"
	}
	return "A receber"
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// DaysUntil returns other - d in whole calendar days. It counts from Unix
// seconds because time.Duration saturates past roughly 292 years.
func (d Date) DaysUntil(other Date) int {
	a := NewDate(d.Year(), int(d.Month()), d.Day())
	b := NewDate(other.Year(), int(other.Month()), other.Day())
	return int((b.Unix() - a.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// SameMonth reports whether both dates fall in the same calendar month.
func (d Date) SameMonth(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month()
}

// String formats the date day-first, as the ledgers do.
func (d Date) String() string {
	return d.Format("02/01/2006")
}

// NewTransaction builds a Transaction deriving its month key from the date.
func NewTransaction(date Date, amount Money, category string, t MovementType) Transaction {
	return Transaction{
		Date:     date,
		Amount:   amount.Abs(),
		Category: category,
		Type:     t,
		Month:    MonthKeyOf(date),
	}
}

// DaysToDue is recomputed on every call; "today" moves between runs.
func (p PendingItem) DaysToDue(ref Date) int {
	return ref.DaysUntil(p.DueDate)
}
