package sheets

import (
	"context"
	"essenza/internal/ledger"
)

// Client is one ledger owner as discovered by a source.
type Client struct {
	ID          string
	DisplayName string
}

// PendingTables holds the two tables of a pending file.
type PendingTables struct {
	Payable    ledger.Table // PAGAR
	Receivable ledger.Table // RECEBER
}

// Sheet names inside a pending file.
const (
	PayableSheet    = "PAGAR"
	ReceivableSheet = "RECEBER"
)

// Ports for ledger sources.
type (
	ClientLister interface {
		// ListClients returns clients sorted by ID. It fails with
		// core.ErrNoLedgers when the source holds no ledger at all.
		ListClients(ctx context.Context) ([]Client, error)
	}

	LedgerReader interface {
		// ReadLedger returns the raw ledger table of a client, or an error
		// wrapping core.ErrClientNotFound.
		ReadLedger(ctx context.Context, clientID string) (ledger.Table, error)
	}

	PendingReader interface {
		// ReadPending returns the PAGAR/RECEBER tables. A missing pending file
		// yields core.ErrMissingPendingFile; a file without both sheets yields
		// a *core.MalformedPendingSheetError.
		ReadPending(ctx context.Context, clientID string) (PendingTables, error)
	}

	// Source is everything the report service reads.
	Source interface {
		ClientLister
		LedgerReader
		PendingReader
	}
)

// FindClient looks a client up by ID.
func FindClient(clients []Client, id string) (Client, bool) {
	for _, c := range clients {
		if c.ID == id {
			return c, true
		}
	}
	return Client{}, false
}
