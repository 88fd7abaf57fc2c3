package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"essenza/internal/core"
	"essenza/internal/ledger"
	ports "essenza/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// valuesAPI is the slice of the Sheets API the client needs.
type valuesAPI interface {
	Values(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
	SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
}

// Config lists the spreadsheets to read.
type Config struct {
	// Clients maps client ID to spreadsheet ID.
	Clients map[string]string
	// LedgerSheet is the tab holding the ledger; empty means the first tab.
	LedgerSheet string
}

// Client reads ledgers from Google Sheets. Each client owns one
// spreadsheet; its PAGAR and RECEBER tabs, when present, are the pending file.
type Client struct {
	api         valuesAPI
	clients     map[string]string
	ledgerSheet string
}

// Ensure interface conformance
var _ ports.Source = (*Client)(nil)

// New creates a Sheets client authenticated with service account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if len(cfg.Clients) == 0 {
		return nil, errors.New("no client spreadsheets configured")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(&serviceAPI{svc: svc}, cfg), nil
}

func newClient(api valuesAPI, cfg Config) *Client {
	clients := make(map[string]string, len(cfg.Clients))
	for id, sheet := range cfg.Clients {
		clients[strings.TrimSpace(id)] = strings.TrimSpace(sheet)
	}
	return &Client{api: api, clients: clients, ledgerSheet: strings.TrimSpace(cfg.LedgerSheet)}
}

// newSheetsService initializes a read-only Sheets service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// serviceAPI adapts *gsheet.Service to valuesAPI.
type serviceAPI struct {
	svc *gsheet.Service
}

// Values reads unformatted cells so amounts arrive as numbers and dates as
// serial numbers, independent of the spreadsheet locale.
func (a *serviceAPI) Values(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	resp, err := a.svc.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (a *serviceAPI) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	resp, err := a.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			titles = append(titles, s.Properties.Title)
		}
	}
	return titles, nil
}

// ListClients returns the configured clients sorted by ID.
func (c *Client) ListClients(_ context.Context) ([]ports.Client, error) {
	if len(c.clients) == 0 {
		return nil, core.ErrNoLedgers
	}
	out := make([]ports.Client, 0, len(c.clients))
	for id := range c.clients {
		out = append(out, ports.Client{ID: id, DisplayName: ports.DisplayName(id)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ReadLedger reads the ledger tab of a client's spreadsheet.
func (c *Client) ReadLedger(ctx context.Context, clientID string) (ledger.Table, error) {
	spreadsheetID, ok := c.clients[clientID]
	if !ok {
		return ledger.Table{}, fmt.Errorf("%w: %s", core.ErrClientNotFound, clientID)
	}

	sheet := c.ledgerSheet
	if sheet == "" {
		titles, err := c.api.SheetTitles(ctx, spreadsheetID)
		if err != nil {
			return ledger.Table{}, fmt.Errorf("list tabs of %s: %w", spreadsheetID, err)
		}
		if len(titles) == 0 {
			return ledger.Table{}, fmt.Errorf("spreadsheet %s has no tabs", spreadsheetID)
		}
		sheet = titles[0]
	}

	values, err := c.api.Values(ctx, spreadsheetID, quoteSheet(sheet))
	if err != nil {
		return ledger.Table{}, fmt.Errorf("read %s!%s: %w", spreadsheetID, sheet, err)
	}
	return toTable(values), nil
}

// ReadPending reads the PAGAR and RECEBER tabs. A spreadsheet with neither
// tab has no pending file; one with only one of them is malformed.
func (c *Client) ReadPending(ctx context.Context, clientID string) (ports.PendingTables, error) {
	spreadsheetID, ok := c.clients[clientID]
	if !ok {
		return ports.PendingTables{}, fmt.Errorf("%w: %s", core.ErrClientNotFound, clientID)
	}

	titles, err := c.api.SheetTitles(ctx, spreadsheetID)
	if err != nil {
		return ports.PendingTables{}, fmt.Errorf("list tabs of %s: %w", spreadsheetID, err)
	}
	payable := indexOf(titles, ports.PayableSheet)
	receivable := indexOf(titles, ports.ReceivableSheet)
	switch {
	case payable == -1 && receivable == -1:
		return ports.PendingTables{}, core.ErrMissingPendingFile
	case payable == -1 || receivable == -1:
		var missing []string
		if payable == -1 {
			missing = append(missing, ports.PayableSheet)
		}
		if receivable == -1 {
			missing = append(missing, ports.ReceivableSheet)
		}
		return ports.PendingTables{}, &core.MalformedPendingSheetError{Path: spreadsheetID, Missing: missing}
	}

	var out ports.PendingTables
	for _, tab := range []struct {
		name string
		dst  *ledger.Table
	}{
		{titles[payable], &out.Payable},
		{titles[receivable], &out.Receivable},
	} {
		values, err := c.api.Values(ctx, spreadsheetID, quoteSheet(tab.name))
		if err != nil {
			return ports.PendingTables{}, fmt.Errorf("read %s!%s: %w", spreadsheetID, tab.name, err)
		}
		*tab.dst = toTable(values)
	}
	return out, nil
}
