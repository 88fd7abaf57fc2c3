package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"essenza/internal/core"

	"github.com/google/uuid"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "essenza.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRecordRun_AssignsIDAndTimestamp(t *testing.T) {
	repo := newTestRepo(t)
	fixed := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	run, err := repo.RecordRun(context.Background(), ReportRun{
		Client:        "padaria_sol",
		Period:        "Todos",
		TotalExpenses: core.Money{Cents: 28000},
		TotalRevenues: core.Money{Cents: 90000},
		Balance:       core.Money{Cents: 62000},
		Pages:         7,
		Destination:   "/tmp/r.pdf",
	})
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if _, err := uuid.Parse(run.ID); err != nil {
		t.Errorf("ID %q is not a uuid", run.ID)
	}
	if !run.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", run.CreatedAt, fixed)
	}

	runs, err := repo.ListRuns(context.Background(), "padaria_sol", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("ListRuns() = %+v", runs)
	}
	got := runs[0]
	if got.ID != run.ID || got.Balance != run.Balance || got.Pages != 7 || !got.CreatedAt.Equal(fixed) {
		t.Errorf("ListRuns()[0] = %+v, want %+v", got, run)
	}
}

func TestListRuns_FilterAndOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, client := range []string{"a", "b", "a", "a"} {
		if _, err := repo.RecordRun(ctx, ReportRun{Client: client, Period: "Todos", CreatedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := repo.ListRuns(ctx, "a", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || !runs[0].CreatedAt.After(runs[1].CreatedAt) {
		t.Fatalf("expected the two newest runs of a, got %+v", runs)
	}
	for _, r := range runs {
		if r.Client != "a" {
			t.Errorf("unexpected client %q", r.Client)
		}
	}

	all, err := repo.ListRuns(ctx, "", 10)
	if err != nil || len(all) != 4 {
		t.Fatalf("ListRuns(all) = %d, %v", len(all), err)
	}
	if n, err := repo.CountRuns(ctx); err != nil || n != 4 {
		t.Errorf("CountRuns() = %d, %v", n, err)
	}
}

func TestRecordRun_Validation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if _, err := repo.RecordRun(ctx, ReportRun{}); err == nil {
		t.Error("expected error for missing client")
	}
	if _, err := repo.RecordRun(ctx, ReportRun{ID: "not-a-uuid", Client: "a"}); err == nil {
		t.Error("expected error for malformed id")
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "essenza.db")
	for i := 0; i < 2; i++ {
		repo, err := NewSQLiteRepository(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		repo.Close()
	}
}
