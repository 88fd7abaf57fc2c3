package services

import (
	"errors"
	"essenza/internal/core"
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		wantAll bool
		label   string
		wantErr bool
	}{
		{"", true, "Todos", false},
		{"Todos", true, "Todos", false},
		{"todos", true, "Todos", false},
		{"Mar/2024", false, "Mar/2024", false},
		{" abr/2024 ", false, "Abr/2024", false},
		{"March", false, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := ParsePeriod(tt.in)
			if tt.wantErr {
				if !errors.Is(err, core.ErrUnknownPeriod) {
					t.Fatalf("expected ErrUnknownPeriod, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if p.IsAll() != tt.wantAll || p.Label() != tt.label {
				t.Errorf("ParsePeriod(%q) = %v %q", tt.in, p.IsAll(), p.Label())
			}
		})
	}
}

func TestFilterPeriod_AllReturnsEverything(t *testing.T) {
	txs := sampleTransactions()
	out, err := FilterPeriod(txs, AllPeriods)
	if err != nil || len(out) != len(txs) {
		t.Fatalf("FilterPeriod(all) = %d items, err=%v", len(out), err)
	}
	out[0].Category = "changed"
	if txs[0].Category == "changed" {
		t.Fatal("FilterPeriod must not alias its input")
	}
}

func TestFilterPeriod_Month(t *testing.T) {
	txs := sampleTransactions()
	jan := core.MonthKey{Year: 2024, Month: time.January}
	out, err := FilterPeriod(txs, MonthPeriod(jan))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 || len(out) >= len(txs) {
		t.Fatalf("expected a strict subset of 3, got %d", len(out))
	}
	for _, tx := range out {
		if tx.Month != jan {
			t.Errorf("unexpected month %s", tx.Month.Label())
		}
	}
}

func TestFilterPeriod_UnknownMonth(t *testing.T) {
	feb := core.MonthKey{Year: 2024, Month: time.February}
	_, err := FilterPeriod(sampleTransactions(), MonthPeriod(feb))
	var unknown *core.UnknownPeriodError
	if !errors.As(err, &unknown) || unknown.Label != "Fev/2024" {
		t.Fatalf("expected UnknownPeriodError for Fev/2024, got %v", err)
	}
}

func TestAvailablePeriods(t *testing.T) {
	got := AvailablePeriods(sampleTransactions())
	want := []string{"Dez/2023", "Jan/2024", "Mar/2024"}
	if len(got) != len(want) {
		t.Fatalf("AvailablePeriods() = %v", got)
	}
	for i := range want {
		if got[i].Label() != want[i] {
			t.Errorf("AvailablePeriods()[%d] = %s, want %s", i, got[i].Label(), want[i])
		}
	}
}
