package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// reportRunRow mirrors the report_runs table.
type reportRunRow struct {
	ID                 string
	Client             string
	Period             string
	TotalExpensesCents int64
	TotalRevenuesCents int64
	BalanceCents       int64
	RejectedRows       int64
	Pages              int64
	Destination        string
	CreatedAt          string
}

const createReportRun = `
INSERT INTO report_runs (
    id, client, period, total_expenses_cents, total_revenues_cents,
    balance_cents, rejected_rows, pages, destination, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateReportRun(ctx context.Context, arg reportRunRow) error {
	_, err := q.db.ExecContext(ctx, createReportRun,
		arg.ID,
		arg.Client,
		arg.Period,
		arg.TotalExpensesCents,
		arg.TotalRevenuesCents,
		arg.BalanceCents,
		arg.RejectedRows,
		arg.Pages,
		arg.Destination,
		arg.CreatedAt,
	)
	return err
}

const listReportRuns = `
SELECT id, client, period, total_expenses_cents, total_revenues_cents,
       balance_cents, rejected_rows, pages, destination, created_at
FROM report_runs
WHERE (?1 = '' OR client = ?1)
ORDER BY created_at DESC, id
LIMIT ?2
`

func (q *Queries) ListReportRuns(ctx context.Context, client string, limit int64) ([]reportRunRow, error) {
	rows, err := q.db.QueryContext(ctx, listReportRuns, client, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []reportRunRow
	for rows.Next() {
		var i reportRunRow
		if err := rows.Scan(
			&i.ID,
			&i.Client,
			&i.Period,
			&i.TotalExpensesCents,
			&i.TotalRevenuesCents,
			&i.BalanceCents,
			&i.RejectedRows,
			&i.Pages,
			&i.Destination,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countReportRuns = `SELECT COUNT(*) FROM report_runs`

func (q *Queries) CountReportRuns(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countReportRuns).Scan(&n)
	return n, err
}
