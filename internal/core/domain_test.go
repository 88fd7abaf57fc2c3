package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseMovementType(t *testing.T) {
	cases := map[string]MovementType{
		"Pago":       Paid,
		" pago ":     Paid,
		"PAGO":       Paid,
		"Recebido":   Received,
		"recebido":   Received,
		"transferido": Unknown,
		"":           Unknown,
	}
	for in, want := range cases {
		if got := ParseMovementType(in); got != want {
			t.Fatalf("ParseMovementType(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestNewTransactionDerivesMonthAndAbs(t *testing.T) {
	tx := NewTransaction(NewDate(2024, 3, 9), Money{Cents: -15000}, "Aluguel", Paid)
	if tx.Amount.Cents != 15000 {
		t.Fatalf("amount must be absolute, got %d", tx.Amount.Cents)
	}
	if tx.Month != (MonthKey{Year: 2024, Month: time.March}) {
		t.Fatalf("unexpected month key %+v", tx.Month)
	}
}

func TestDaysUntil(t *testing.T) {
	ref := NewDate(2024, 6, 15)
	cases := []struct {
		due  Date
		want int
	}{
		{NewDate(2024, 6, 10), -5},
		{NewDate(2024, 6, 15), 0},
		{NewDate(2024, 6, 20), 5},
		{NewDate(2024, 7, 15), 30},
		{NewDate(2025, 6, 15), 365},
		{NewDate(2400, 6, 15), 137331},
		{NewDate(1900, 1, 1), -45456},
	}
	for _, tc := range cases {
		item := PendingItem{DueDate: tc.due}
		if got := item.DaysToDue(ref); got != tc.want {
			t.Fatalf("DaysToDue(%s) = %d, want %d", tc.due, got, tc.want)
		}
	}
}

func TestDaysUntilIgnoresTimeOfDay(t *testing.T) {
	ref := Date{Time: time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC)}
	due := NewDate(2024, 6, 16)
	if got := ref.DaysUntil(due); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestMonthKeyLabelAndIndex(t *testing.T) {
	jan := MonthKey{Year: 2024, Month: time.January}
	apr := MonthKey{Year: 2024, Month: time.April}
	dec := MonthKey{Year: 2023, Month: time.December}

	if jan.Label() != "Jan/2024" || apr.Label() != "Abr/2024" || dec.Label() != "Dez/2023" {
		t.Fatalf("unexpected labels %s %s %s", jan.Label(), apr.Label(), dec.Label())
	}
	// "Abr" sorts before "Jan" lexically; Index must not.
	if !(dec.Index() < jan.Index() && jan.Index() < apr.Index()) {
		t.Fatalf("index order wrong: dec=%d jan=%d apr=%d", dec.Index(), jan.Index(), apr.Index())
	}
}

func TestParseMonthLabel(t *testing.T) {
	k, err := ParseMonthLabel("set/2024")
	if err != nil || k != (MonthKey{Year: 2024, Month: time.September}) {
		t.Fatalf("unexpected %+v err=%v", k, err)
	}
	for _, bad := range []string{"", "Set", "Set/24", "Foo/2024"} {
		if _, err := ParseMonthLabel(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestErrorsUnwrapToSentinels(t *testing.T) {
	cases := []struct {
		err    error
		target error
	}{
		{&InvalidDateError{Row: 2, Value: "x"}, ErrInvalidDate},
		{&InvalidAmountError{Row: 2, Value: "x"}, ErrInvalidAmount},
		{&UnknownPeriodError{Label: "Fev/2024"}, ErrUnknownPeriod},
		{&EmptyGroupError{Group: "despesas"}, ErrEmptyGroup},
		{&MissingColumnError{Columns: []string{"Data"}}, ErrMissingColumn},
		{&MalformedPendingSheetError{Missing: []string{"PAGAR"}}, ErrMalformedPendingSheet},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.target) {
			t.Fatalf("%T does not unwrap to %v", tc.err, tc.target)
		}
	}
}

func TestMissingColumnErrorMentionsSuggestion(t *testing.T) {
	err := &MissingColumnError{
		Columns:     []string{"Categoria", "Tipo"},
		Suggestions: map[string]string{"Categoria": "Categorias"},
	}
	want := `missing required column: "Categoria" (did you mean "Categorias"?), "Tipo"`
	if err.Error() != want {
		t.Fatalf("got %q", err.Error())
	}
}
