package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"essenza/internal/core"
	"essenza/internal/ledger"
	"essenza/internal/sheets"
)

type entry struct {
	client     sheets.Client
	ledger     ledger.Table
	pending    *sheets.PendingTables
	pendingErr error
}

// Store keeps ledgers in memory. Used by tests and the demo backend.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// AddClient stores (or replaces) a client's ledger.
func (s *Store) AddClient(c sheets.Client, t ledger.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.DisplayName == "" {
		c.DisplayName = c.ID
	}
	e, ok := s.entries[c.ID]
	if !ok {
		e = &entry{}
		s.entries[c.ID] = e
	}
	e.client = c
	e.ledger = t
}

// SetPending attaches a pending file to an existing client.
func (s *Store) SetPending(id string, p sheets.PendingTables) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrClientNotFound, id)
	}
	e.pending = &p
	e.pendingErr = nil
	return nil
}

// SetPendingError makes ReadPending fail with err for id.
func (s *Store) SetPendingError(id string, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrClientNotFound, id)
	}
	e.pending = nil
	e.pendingErr = err
	return nil
}

// ListClients returns clients sorted by ID.
func (s *Store) ListClients(_ context.Context) ([]sheets.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return nil, core.ErrNoLedgers
	}
	out := make([]sheets.Client, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.client)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ReadLedger returns a copy of the client's ledger table.
func (s *Store) ReadLedger(_ context.Context, id string) (ledger.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return ledger.Table{}, fmt.Errorf("%w: %s", core.ErrClientNotFound, id)
	}
	return cloneTable(e.ledger), nil
}

// ReadPending returns the client's pending tables.
func (s *Store) ReadPending(_ context.Context, id string) (sheets.PendingTables, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return sheets.PendingTables{}, fmt.Errorf("%w: %s", core.ErrClientNotFound, id)
	}
	if e.pendingErr != nil {
		return sheets.PendingTables{}, e.pendingErr
	}
	if e.pending == nil {
		return sheets.PendingTables{}, core.ErrMissingPendingFile
	}
	return sheets.PendingTables{
		Payable:    cloneTable(e.pending.Payable),
		Receivable: cloneTable(e.pending.Receivable),
	}, nil
}

func cloneTable(t ledger.Table) ledger.Table {
	out := ledger.Table{Header: append([]string(nil), t.Header...)}
	out.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}

// NewDemo returns a store with one sample client whose pending items are
// placed around today.
func NewDemo(today time.Time) *Store {
	s := New()
	s.AddClient(sheets.Client{ID: "cliente_demo", DisplayName: "Cliente Demo"}, ledger.NewTable([][]string{
		{"Data", "Valor", "Categoria", "Tipo"},
		{"05/01/2024", "-2500,00", "Aluguel", "Pago"},
		{"10/01/2024", "-830,45", "Fornecedores", "Pago"},
		{"15/01/2024", "7200,00", "Serviços", "Recebido"},
		{"05/02/2024", "-2500,00", "Aluguel", "Pago"},
		{"18/02/2024", "-412,90", "Energia", "Pago"},
		{"20/02/2024", "5100,00", "Serviços", "Recebido"},
		{"22/02/2024", "950,00", "Consultoria", "Recebido"},
		{"05/03/2024", "-2500,00", "Aluguel", "Pago"},
		{"28/03/2024", "6400,00", "Serviços", "Recebido"},
	}))

	day := func(offset int) string {
		return today.AddDate(0, 0, offset).Format("02/01/2006")
	}
	_ = s.SetPending("cliente_demo", sheets.PendingTables{
		Payable: ledger.NewTable([][]string{
			{"Vencimento", "Valor", "Categoria"},
			{day(-3), "1200,00", "Fornecedores"},
			{day(0), "310,00", "Energia"},
			{day(5), "2500,00", "Aluguel"},
		}),
		Receivable: ledger.NewTable([][]string{
			{"Vencimento", "Valor", "Categoria"},
			{day(2), "3100,00", "Serviços"},
			{day(20), "950,00", "Consultoria"},
		}),
	})
	return s
}
