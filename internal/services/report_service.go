package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"essenza/internal/core"
	"essenza/internal/ledger"
	"essenza/internal/log"
	"essenza/internal/sheets"
)

// Selection is the request-scoped choice of client and month. It is
// passed through every call and never stored on the service.
type Selection struct {
	Client string
	Month  string // month label or "Todos"; empty means all periods
}

// Dashboard holds everything the dashboard, the API and the PDF render.
type Dashboard struct {
	Client  sheets.Client
	Period  Period
	Periods []core.MonthKey

	// Transactions are the period-filtered records, unknown types included.
	Transactions []core.Transaction

	TotalExpenses core.Money
	TotalRevenues core.Money
	Balance       core.Money

	ExpensesByCategory []core.CategoryAmount
	RevenuesByCategory []core.CategoryAmount

	// Evolution covers every record of the ledger regardless of the period.
	Evolution        []core.MonthAmount
	ExpenseEvolution []core.MonthAmount
	RevenueEvolution []core.MonthAmount

	// TopExpense and TopRevenue are nil when the group is empty.
	TopExpense *core.CategoryAmount
	TopRevenue *core.CategoryAmount

	Insights     []string
	Rejected     int
	UnknownTypes int
}

// Empty reports whether the selected period has no expense nor revenue.
func (d Dashboard) Empty() bool {
	return len(d.ExpensesByCategory) == 0 && len(d.RevenuesByCategory) == 0
}

// PendingStatus tells the dashboard whether to show the aging view.
type PendingStatus string

const (
	PendingAvailable   PendingStatus = "available"
	PendingUnavailable PendingStatus = "unavailable" // no pending file
	PendingDisabled    PendingStatus = "disabled"    // pending file is malformed
)

// PendingOverview is the aging view of a client's pending file.
type PendingOverview struct {
	Client      string
	Reference   core.Date
	Status      PendingStatus
	Warning     string
	Payables    AgingReport
	Receivables AgingReport
	Rejected    int
}

// Option configures a ReportService.
type Option func(*ReportService)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *ReportService) { s.now = now }
}

// WithAgingClassifier replaces the standard aging buckets.
func WithAgingClassifier(c *AgingClassifier) Option {
	return func(s *ReportService) { s.aging = c }
}

// ReportService runs the pipeline for one request at a time. It keeps no
// per-request state and is safe for concurrent use.
type ReportService struct {
	source     sheets.Source
	normalizer *ledger.Normalizer
	aging      *AgingClassifier
	now        func() time.Time
	logger     *log.Logger
}

func NewReportService(source sheets.Source, normalizer *ledger.Normalizer, logger *log.Logger, opts ...Option) *ReportService {
	if normalizer == nil {
		normalizer = ledger.NewNormalizer(ledger.Schema{}, ledger.PendingSchema{})
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	s := &ReportService{
		source:     source,
		normalizer: normalizer,
		aging:      NewAgingClassifier(),
		now:        time.Now,
		logger:     logger.WithComponent(log.ComponentReport),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the reference date for aging.
func (s *ReportService) Today() core.Date {
	return core.DateOf(s.now())
}

// ListClients returns every client of the source.
func (s *ReportService) ListClients(ctx context.Context) ([]sheets.Client, error) {
	return s.source.ListClients(ctx)
}

// Client resolves a client ID.
func (s *ReportService) Client(ctx context.Context, id string) (sheets.Client, error) {
	clients, err := s.source.ListClients(ctx)
	if err != nil {
		return sheets.Client{}, err
	}
	c, ok := sheets.FindClient(clients, id)
	if !ok {
		return sheets.Client{}, fmt.Errorf("%w: %s", core.ErrClientNotFound, id)
	}
	return c, nil
}

// LoadTransactions reads and normalizes a client's ledger. Rejected rows
// are logged and counted, never fatal.
func (s *ReportService) LoadTransactions(ctx context.Context, clientID string) (ledger.Result, error) {
	table, err := s.source.ReadLedger(ctx, clientID)
	if err != nil {
		return ledger.Result{}, fmt.Errorf("read ledger %s: %w", clientID, err)
	}
	res, err := s.normalizer.Normalize(table)
	if err != nil {
		return ledger.Result{}, fmt.Errorf("normalize ledger %s: %w", clientID, err)
	}
	for _, rej := range res.Rejected {
		s.logger.WarnContext(ctx, "Ledger row dropped",
			log.FieldClient, clientID,
			log.FieldRow, rej.Row,
			log.FieldError, rej.Err)
	}
	return res, nil
}

// BuildDashboard runs the full pipeline for sel.
func (s *ReportService) BuildDashboard(ctx context.Context, sel Selection) (Dashboard, error) {
	client, err := s.Client(ctx, sel.Client)
	if err != nil {
		return Dashboard{}, err
	}
	period, err := ParsePeriod(sel.Month)
	if err != nil {
		return Dashboard{}, err
	}

	res, err := s.LoadTransactions(ctx, client.ID)
	if err != nil {
		return Dashboard{}, err
	}

	filtered, err := FilterPeriod(res.Transactions, period)
	if err != nil {
		return Dashboard{}, err
	}

	d := Compute(filtered, res.Transactions)
	d.Client = client
	d.Period = period
	d.Periods = AvailablePeriods(res.Transactions)
	d.Rejected = len(res.Rejected)
	d.Insights = Insights(d)

	s.logger.DebugContext(ctx, "Dashboard built",
		log.FieldClient, client.ID,
		log.FieldPeriod, period.Label(),
		log.FieldCount, len(filtered),
		log.FieldRejected, d.Rejected)
	return d, nil
}

// Compute derives every aggregate from the filtered records. The monthly
// evolution is taken from all, the unfiltered ledger.
func Compute(filtered, all []core.Transaction) Dashboard {
	expenses := ByType(filtered, core.Paid)
	revenues := ByType(filtered, core.Received)

	d := Dashboard{
		Period:             AllPeriods,
		Transactions:       filtered,
		TotalExpenses:      Total(expenses),
		TotalRevenues:      Total(revenues),
		ExpensesByCategory: RankByCategory(expenses),
		RevenuesByCategory: RankByCategory(revenues),
		Evolution:          MonthlyEvolution(all),
		ExpenseEvolution:   MonthlyEvolution(ByType(all, core.Paid)),
		RevenueEvolution:   MonthlyEvolution(ByType(all, core.Received)),
		UnknownTypes:       len(filtered) - len(expenses) - len(revenues),
	}
	d.Balance = d.TotalRevenues.Sub(d.TotalExpenses)

	if top, err := TopCategory(expenses); err == nil {
		d.TopExpense = &top
	}
	if top, err := TopCategory(revenues); err == nil {
		d.TopRevenue = &top
	}
	return d
}

// BuildPending classifies a client's payables and receivables on ref. A
// missing or malformed pending file is reported through Status, not as an
// error; only source failures and unknown clients are errors.
func (s *ReportService) BuildPending(ctx context.Context, clientID string, ref core.Date) (PendingOverview, error) {
	client, err := s.Client(ctx, clientID)
	if err != nil {
		return PendingOverview{}, err
	}
	out := PendingOverview{Client: client.ID, Reference: ref}

	tables, err := s.source.ReadPending(ctx, client.ID)
	switch {
	case errors.Is(err, core.ErrMissingPendingFile):
		out.Status = PendingUnavailable
		return out, nil
	case errors.Is(err, core.ErrMalformedPendingSheet):
		return s.disablePending(ctx, out, err), nil
	case err != nil:
		return PendingOverview{}, fmt.Errorf("read pending %s: %w", client.ID, err)
	}

	payables, err := s.normalizer.NormalizePending(tables.Payable, core.Payable)
	if err != nil {
		return s.disablePending(ctx, out, &core.MalformedPendingSheetError{Missing: []string{sheets.PayableSheet}, Err: err}), nil
	}
	receivables, err := s.normalizer.NormalizePending(tables.Receivable, core.Receivable)
	if err != nil {
		return s.disablePending(ctx, out, &core.MalformedPendingSheetError{Missing: []string{sheets.ReceivableSheet}, Err: err}), nil
	}

	for _, rej := range append(payables.Rejected, receivables.Rejected...) {
		s.logger.WarnContext(ctx, "Pending row dropped",
			log.FieldClient, client.ID,
			log.FieldRow, rej.Row,
			log.FieldError, rej.Err)
	}

	out.Status = PendingAvailable
	out.Payables = s.aging.Classify(payables.Items, ref)
	out.Receivables = s.aging.Classify(receivables.Items, ref)
	out.Rejected = len(payables.Rejected) + len(receivables.Rejected)
	return out, nil
}

func (s *ReportService) disablePending(ctx context.Context, out PendingOverview, err error) PendingOverview {
	s.logger.WarnContext(ctx, "Pending view disabled",
		log.FieldClient, out.Client,
		log.FieldError, err)
	out.Status = PendingDisabled
	out.Warning = err.Error()
	return out
}
