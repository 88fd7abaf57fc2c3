package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"essenza/internal/amqp"
	"essenza/internal/core"
	"essenza/internal/export"
	"essenza/internal/log"
	"essenza/internal/report"
	"essenza/internal/services"
	"essenza/internal/storage"

	"github.com/google/uuid"
)

// DashboardBuilder runs the reporting pipeline for one selection.
type DashboardBuilder interface {
	BuildDashboard(ctx context.Context, sel services.Selection) (services.Dashboard, error)
}

// RunRecorder stores report history.
type RunRecorder interface {
	RecordRun(ctx context.Context, run storage.ReportRun) (storage.ReportRun, error)
}

// ReportWorker renders PDFs for queued report requests and delivers them
// to a sink.
type ReportWorker struct {
	builder    DashboardBuilder
	sink       export.Sink
	runs       RunRecorder
	brand      string
	logoPath   string
	now        func() time.Time
	logger     *log.Logger
	structured *log.StructuredLogger
}

// Config carries the report branding.
type Config struct {
	Brand    string
	LogoPath string
}

// NewReportWorker creates a worker. runs may be nil when history is disabled.
func NewReportWorker(builder DashboardBuilder, sink export.Sink, runs RunRecorder, cfg Config, logger *log.Logger) *ReportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ReportWorker{
		builder:    builder,
		sink:       sink,
		runs:       runs,
		brand:      cfg.Brand,
		logoPath:   cfg.LogoPath,
		now:        time.Now,
		logger:     logger.WithComponent(log.ComponentWorker),
		structured: log.NewStructuredLogger(logger),
	}
}

// HandleReportRequest processes a single report request from AMQP. Errors
// no retry can fix are marked permanent so the message is dropped.
func (w *ReportWorker) HandleReportRequest(ctx context.Context, msg *amqp.ReportRequestMessage) error {
	w.logger.InfoContext(ctx, "Processing report request",
		log.FieldReportID, msg.ID,
		log.FieldClient, msg.Client,
		log.FieldPeriod, msg.Month)

	_, err := w.Generate(ctx, msg.ID, services.Selection{Client: msg.Client, Month: msg.Month})
	if err != nil {
		if permanent(err) {
			return amqp.Permanent(err)
		}
		return err
	}
	return nil
}

func permanent(err error) bool {
	return errors.Is(err, core.ErrClientNotFound) ||
		errors.Is(err, core.ErrUnknownPeriod) ||
		errors.Is(err, core.ErrMissingColumn)
}

// Generate builds, renders, delivers and records one report. An empty id
// gets a fresh uuid.
func (w *ReportWorker) Generate(ctx context.Context, id string, sel services.Selection) (storage.ReportRun, error) {
	return w.GenerateTo(ctx, id, sel, w.sink)
}

// GenerateTo is Generate with an explicit sink, used for on-demand
// downloads.
func (w *ReportWorker) GenerateTo(ctx context.Context, id string, sel services.Selection, sink export.Sink) (storage.ReportRun, error) {
	if id == "" {
		id = uuid.NewString()
	}

	d, err := w.builder.BuildDashboard(ctx, sel)
	if err != nil {
		return storage.ReportRun{}, fmt.Errorf("build dashboard: %w", err)
	}

	doc := report.Document{
		Brand:       w.brand,
		LogoPath:    w.logoPath,
		GeneratedAt: w.now(),
		Dashboard:   d,
	}
	var buf bytes.Buffer
	pages, err := report.Render(&buf, doc)
	if err != nil {
		return storage.ReportRun{}, err
	}

	name := export.ObjectName(d.Client.ID, d.Period.Label(), id)
	dest, err := sink.Deliver(ctx, name, &buf)
	if err != nil {
		return storage.ReportRun{}, fmt.Errorf("deliver report: %w", err)
	}

	run := storage.ReportRun{
		ID:            id,
		Client:        d.Client.ID,
		Period:        d.Period.Label(),
		TotalExpenses: d.TotalExpenses,
		TotalRevenues: d.TotalRevenues,
		Balance:       d.Balance,
		RejectedRows:  d.Rejected,
		Pages:         pages,
		Destination:   dest,
		CreatedAt:     doc.GeneratedAt,
	}
	if w.runs != nil {
		if recorded, err := w.runs.RecordRun(ctx, run); err == nil {
			run = recorded
		} else {
			// The PDF is already delivered; history is best effort.
			w.structured.LogError(ctx, "Failed to record report run", err, log.ComponentStorage, log.OpExport,
				log.NewFields().WithReport(id, d.Client.ID, d.Period.Label(), pages))
		}
	}

	w.structured.LogReportGenerated(ctx, id, d.Client.ID, d.Period.Label(), pages, dest)
	return run, nil
}
