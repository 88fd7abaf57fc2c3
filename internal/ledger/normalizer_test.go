package ledger

import (
	"errors"
	"essenza/internal/core"
	"testing"
	"time"
)

func sampleTable() Table {
	return NewTable([][]string{
		{" Data ", "Valor", "Categoria", "Tipo", "Obs"},
		{"05/01/2024", "-150.0", "Aluguel", "Pago", ""},
		{"10/01/2024", "R$ 2.000,00", "Serviços", "Recebido", "nota"},
		{"32/01/2024", "10", "Aluguel", "Pago"},
		{"12/01/2024", "dez reais", "Mercado", "Pago"},
		{"", "", "", ""},
		{"03/02/2024", "99,90", "  ", "transferência"},
		{"04/02/2024", "50", "Alimentac\u0327a\u0303o", "pago"},
	})
}

func TestNormalize(t *testing.T) {
	n := NewNormalizer(Schema{}, PendingSchema{})
	res, err := n.Normalize(sampleTable())
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if len(res.Transactions) != 4 {
		t.Fatalf("expected 4 transactions, got %d: %+v", len(res.Transactions), res.Transactions)
	}

	first := res.Transactions[0]
	if first.Amount.Cents != 15000 || first.Type != core.Paid || first.Category != "Aluguel" {
		t.Errorf("unexpected first transaction %+v", first)
	}
	if first.Month != (core.MonthKey{Year: 2024, Month: time.January}) {
		t.Errorf("unexpected month %+v", first.Month)
	}

	if got := res.Transactions[1]; got.Amount.Cents != 200000 || got.Type != core.Received {
		t.Errorf("unexpected revenue %+v", got)
	}

	unknown := res.Transactions[2]
	if unknown.Type != core.Unknown {
		t.Errorf("expected unknown type to be kept, got %s", unknown.Type)
	}
	if unknown.Category != UncategorizedLabel {
		t.Errorf("blank category = %q, want %q", unknown.Category, UncategorizedLabel)
	}

	if got := res.Transactions[3].Category; got != "Alimenta\u00e7\u00e3o" {
		t.Errorf("category not NFC-normalized: %q", got)
	}

	if len(res.Rejected) != 2 {
		t.Fatalf("expected 2 rejected rows, got %+v", res.Rejected)
	}
	if res.Rejected[0].Row != 4 || !errors.Is(res.Rejected[0], core.ErrInvalidDate) {
		t.Errorf("unexpected first rejection %+v", res.Rejected[0])
	}
	var amountErr *core.InvalidAmountError
	if !errors.As(res.Rejected[1], &amountErr) || amountErr.Row != 5 || amountErr.Value != "dez reais" {
		t.Errorf("unexpected second rejection %+v", res.Rejected[1])
	}
}

func TestNormalize_DuplicateHeaderKeepsFirstColumn(t *testing.T) {
	n := NewNormalizer(Schema{}, PendingSchema{})
	res, err := n.Normalize(NewTable([][]string{
		{"Data", "Valor", "Categoria", "Tipo", " Valor "},
		{"15/01/2024", "-150", "A", "Pago", "999"},
	}))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(res.Transactions) != 1 || res.Transactions[0].Amount.Cents != 15000 {
		t.Fatalf("expected the first Valor column (15000 cents), got %+v", res.Transactions)
	}
}

func TestNormalize_AmountsAreNeverNegative(t *testing.T) {
	n := NewNormalizer(Schema{}, PendingSchema{})
	res, err := n.Normalize(NewTable([][]string{
		{"Data", "Valor", "Categoria", "Tipo"},
		{"01/01/2024", "-1", "A", "Pago"},
		{"01/01/2024", "(2,50)", "A", "Pago"},
		{"01/01/2024", "R$ -1.234,56", "A", "Recebido"},
	}))
	if err != nil {
		t.Fatal(err)
	}
	for _, tx := range res.Transactions {
		if tx.Amount.Cents < 0 {
			t.Errorf("negative amount %+v", tx)
		}
	}
}

func TestNormalize_MissingColumns(t *testing.T) {
	n := NewNormalizer(Schema{}, PendingSchema{})
	_, err := n.Normalize(NewTable([][]string{
		{"Data", "Valor", "Categorias"},
		{"01/01/2024", "1", "A"},
	}))

	var missing *core.MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
	if len(missing.Columns) != 2 || missing.Columns[0] != "Categoria" || missing.Columns[1] != "Tipo" {
		t.Errorf("unexpected missing columns %v", missing.Columns)
	}
	if missing.Suggestions["Categoria"] != "Categorias" {
		t.Errorf("expected suggestion for Categoria, got %v", missing.Suggestions)
	}
	if !errors.Is(err, core.ErrMissingColumn) {
		t.Errorf("expected errors.Is ErrMissingColumn")
	}
}

func TestNormalize_CustomSchema(t *testing.T) {
	n := NewNormalizer(Schema{Date: "Date", Amount: "Amount"}, PendingSchema{})
	res, err := n.Normalize(NewTable([][]string{
		{"Date", "Amount", "Categoria", "Tipo"},
		{"01/01/2024", "1", "A", "Pago"},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(res.Transactions))
	}
}

func TestNormalizePending(t *testing.T) {
	n := NewNormalizer(Schema{}, PendingSchema{})
	res, err := n.NormalizePending(NewTable([][]string{
		{"Vencimento", "Valor", "Categoria"},
		{"10/06/2024", "100", "Fornecedor"},
		{"sem data", "50", "Fornecedor"},
		{"20/06/2024", "-30,5", ""},
	}), core.Payable)
	if err != nil {
		t.Fatalf("NormalizePending() error = %v", err)
	}
	if len(res.Items) != 2 || len(res.Rejected) != 1 {
		t.Fatalf("expected 2 items and 1 rejection, got %d and %d", len(res.Items), len(res.Rejected))
	}
	for _, it := range res.Items {
		if it.Direction != core.Payable {
			t.Errorf("direction = %s, want payable", it.Direction)
		}
	}
	if res.Items[1].Amount.Cents != 3050 || res.Items[1].Category != UncategorizedLabel {
		t.Errorf("unexpected item %+v", res.Items[1])
	}
}

func TestNormalizePending_Errors(t *testing.T) {
	n := NewNormalizer(Schema{}, PendingSchema{})
	if _, err := n.NormalizePending(Table{}, core.Direction("other")); err == nil {
		t.Error("expected error for unknown direction")
	}
	_, err := n.NormalizePending(NewTable([][]string{{"Valor"}}), core.Receivable)
	if !errors.Is(err, core.ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
}
