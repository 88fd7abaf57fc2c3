package google

import (
	"context"
	"errors"
	"testing"

	"essenza/internal/core"
	ports "essenza/internal/sheets"
)

type fakeAPI struct {
	tabs   map[string][]string
	values map[string][][]interface{} // key: spreadsheetID + range
	err    error
}

func (f *fakeAPI) Values(_ context.Context, id, rng string) ([][]interface{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.values[id+rng], nil
}

func (f *fakeAPI) SheetTitles(_ context.Context, id string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tabs[id], nil
}

func newFake() *fakeAPI {
	return &fakeAPI{
		tabs: map[string][]string{
			"sheet-a": {"Lancamentos", "PAGAR", "RECEBER"},
			"sheet-b": {"Lancamentos"},
			"sheet-c": {"Lancamentos", "pagar"},
		},
		values: map[string][][]interface{}{
			"sheet-a'Lancamentos'": {
				{"Data", "Valor", "Categoria", "Tipo"},
				{45306.0, -1500000.0, "Aluguel", "Pago"},
				{"16/01/2024", "R$ 10,00", nil, "Recebido"},
			},
			"sheet-a'PAGAR'": {
				{"Vencimento", "Valor", "Categoria"},
				{45457.0, 100.0, "Fornecedor"},
			},
			"sheet-a'RECEBER'": {
				{"Vencimento", "Valor", "Categoria"},
			},
		},
	}
}

func TestClient_ListClients(t *testing.T) {
	c := newClient(newFake(), Config{Clients: map[string]string{"padaria_sol": "sheet-a", " loja ": "sheet-b"}})
	clients, err := c.ListClients(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(clients) != 2 || clients[0].ID != "loja" || clients[1].DisplayName != "Padaria Sol" {
		t.Fatalf("unexpected clients %+v", clients)
	}

	empty := newClient(newFake(), Config{})
	if _, err := empty.ListClients(context.Background()); !errors.Is(err, core.ErrNoLedgers) {
		t.Fatalf("expected ErrNoLedgers, got %v", err)
	}
}

func TestClient_ReadLedger(t *testing.T) {
	c := newClient(newFake(), Config{Clients: map[string]string{"a": "sheet-a"}})
	table, err := c.ReadLedger(context.Background(), "a")
	if err != nil {
		t.Fatalf("ReadLedger() error = %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}
	if got := table.Rows[0][0]; got != "45306" {
		t.Errorf("serial date rendered as %q", got)
	}
	if got := table.Rows[0][1]; got != "-1500000" {
		t.Errorf("amount rendered as %q", got)
	}
	if got := table.Rows[1][2]; got != "" {
		t.Errorf("nil cell rendered as %q", got)
	}

	if _, err := c.ReadLedger(context.Background(), "zzz"); !errors.Is(err, core.ErrClientNotFound) {
		t.Errorf("expected ErrClientNotFound, got %v", err)
	}
}

func TestClient_ReadLedger_NamedSheet(t *testing.T) {
	c := newClient(newFake(), Config{Clients: map[string]string{"a": "sheet-a"}, LedgerSheet: "Lancamentos"})
	table, err := c.ReadLedger(context.Background(), "a")
	if err != nil || len(table.Header) != 4 {
		t.Fatalf("unexpected table %+v err=%v", table, err)
	}
}

func TestClient_ReadPending(t *testing.T) {
	c := newClient(newFake(), Config{Clients: map[string]string{"a": "sheet-a", "b": "sheet-b", "c": "sheet-c"}})
	ctx := context.Background()

	p, err := c.ReadPending(ctx, "a")
	if err != nil {
		t.Fatalf("ReadPending() error = %v", err)
	}
	if p.Payable.Len() != 1 || p.Receivable.Len() != 0 {
		t.Errorf("unexpected pending tables %+v", p)
	}

	if _, err := c.ReadPending(ctx, "b"); !errors.Is(err, core.ErrMissingPendingFile) {
		t.Errorf("expected ErrMissingPendingFile, got %v", err)
	}

	_, err = c.ReadPending(ctx, "c")
	var malformed *core.MalformedPendingSheetError
	if !errors.As(err, &malformed) || len(malformed.Missing) != 1 || malformed.Missing[0] != ports.ReceivableSheet {
		t.Errorf("expected MalformedPendingSheetError missing RECEBER, got %v", err)
	}
}

func TestClient_APIErrorsAreWrapped(t *testing.T) {
	api := newFake()
	api.err = errors.New("quota exceeded")
	c := newClient(api, Config{Clients: map[string]string{"a": "sheet-a"}})
	if _, err := c.ReadLedger(context.Background(), "a"); err == nil || !errors.Is(err, api.err) {
		t.Errorf("expected wrapped API error, got %v", err)
	}
}

func TestQuoteSheet(t *testing.T) {
	if got := quoteSheet("Contas d'Água"); got != "'Contas d''Água'" {
		t.Errorf("quoteSheet() = %q", got)
	}
}
