// Package storage keeps the history of generated reports in SQLite.
// Ledgers are never stored here; they are always read from their source.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"essenza/internal/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ReportRun is one generated PDF.
type ReportRun struct {
	ID            string
	Client        string
	Period        string
	TotalExpenses core.Money
	TotalRevenues core.Money
	Balance       core.Money
	RejectedRows  int
	Pages         int
	Destination   string
	CreatedAt     time.Time
}

// DefaultListLimit bounds ListRuns when the caller passes zero.
const DefaultListLimit = 50

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// RecordRun stores run, assigning an ID and timestamp when missing.
func (r *SQLiteRepository) RecordRun(ctx context.Context, run ReportRun) (ReportRun, error) {
	if run.Client == "" {
		return ReportRun{}, errors.New("report run without client")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	} else if _, err := uuid.Parse(run.ID); err != nil {
		return ReportRun{}, fmt.Errorf("invalid report id %q: %w", run.ID, err)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = r.now()
	}
	run.CreatedAt = run.CreatedAt.UTC()

	err := r.queries.CreateReportRun(ctx, reportRunRow{
		ID:                 run.ID,
		Client:             run.Client,
		Period:             run.Period,
		TotalExpensesCents: run.TotalExpenses.Cents,
		TotalRevenuesCents: run.TotalRevenues.Cents,
		BalanceCents:       run.Balance.Cents,
		RejectedRows:       int64(run.RejectedRows),
		Pages:              int64(run.Pages),
		Destination:        run.Destination,
		CreatedAt:          run.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return ReportRun{}, fmt.Errorf("create report run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first. An empty client
// lists every client.
func (r *SQLiteRepository) ListRuns(ctx context.Context, client string, limit int) ([]ReportRun, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := r.queries.ListReportRuns(ctx, client, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list report runs: %w", err)
	}

	runs := make([]ReportRun, 0, len(rows))
	for _, row := range rows {
		created, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("report run %s: parse created_at: %w", row.ID, err)
		}
		runs = append(runs, ReportRun{
			ID:            row.ID,
			Client:        row.Client,
			Period:        row.Period,
			TotalExpenses: core.Money{Cents: row.TotalExpensesCents},
			TotalRevenues: core.Money{Cents: row.TotalRevenuesCents},
			Balance:       core.Money{Cents: row.BalanceCents},
			RejectedRows:  int(row.RejectedRows),
			Pages:         int(row.Pages),
			Destination:   row.Destination,
			CreatedAt:     created,
		})
	}
	return runs, nil
}

// CountRuns returns the number of stored runs.
func (r *SQLiteRepository) CountRuns(ctx context.Context) (int64, error) {
	n, err := r.queries.CountReportRuns(ctx)
	if err != nil {
		return 0, fmt.Errorf("count report runs: %w", err)
	}
	return n, nil
}
