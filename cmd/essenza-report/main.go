// Command essenza-report prints dashboards and pending views in the
// terminal and writes PDF reports without the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"essenza/internal/cli"
	"essenza/internal/core"
	"essenza/internal/export"
	"essenza/internal/log"
	"essenza/internal/services"
	"essenza/internal/worker"
)

const usage = `usage: essenza-report <command> [flags]

commands:
  list                              list the clients with a ledger
  summary -client ID [-month M]     print the dashboard of a period
  pending -client ID [-today D]     print the aging of the pending file
  pdf -client ID [-month M] -out F  write the PDF report to F
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cli.LoadEnvFile()
	// Logs go to stderr, warn and above unless LOG_LEVEL says otherwise.
	level := slog.LevelWarn
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level = log.ParseLevel(v)
	}
	logger := log.New(log.Config{
		Level:   level,
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	})
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if res.Cleanup != nil {
			_ = res.Cleanup()
		}
	}()
	reports := services.NewReportService(res.Backend, cli.NewNormalizer(cfg), logger)

	app := &app{reports: reports, out: os.Stdout, styles: newStyles()}
	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "list":
		err = app.list(ctx)
	case "summary":
		err = app.summary(ctx, args)
	case "pending":
		err = app.pending(ctx, args)
	case "pdf":
		var runs worker.RunRecorder
		if repo := cli.InitSQLite(logger, cfg.SQLiteDBPath); repo != nil {
			defer repo.Close()
			runs = repo
		}
		err = app.pdf(ctx, args, runs, worker.Config{Brand: cfg.ReportBrand, LogoPath: cfg.ReportLogoPath}, logger)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, app.styles.errorText.Render("erro: "+err.Error()))
		os.Exit(1)
	}
}

type app struct {
	reports *services.ReportService
	out     io.Writer
	styles  styles
}

func (a *app) list(ctx context.Context) error {
	clients, err := a.reports.ListClients(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.styles.clientList(clients))
	return nil
}

func (a *app) summary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	client := fs.String("client", "", "client ID")
	month := fs.String("month", "", `month label (Jan/2024) or "Todos"`)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *client == "" {
		return fmt.Errorf("-client is required")
	}

	d, err := a.reports.BuildDashboard(ctx, services.Selection{Client: *client, Month: *month})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.styles.dashboard(d))
	return nil
}

func (a *app) pending(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pending", flag.ContinueOnError)
	client := fs.String("client", "", "client ID")
	today := fs.String("today", "", "reference date YYYY-MM-DD (default: today)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *client == "" {
		return fmt.Errorf("-client is required")
	}

	ref := a.reports.Today()
	if *today != "" {
		t, err := time.Parse(time.DateOnly, *today)
		if err != nil {
			return fmt.Errorf("-today: %w", err)
		}
		ref = core.DateOf(t)
	}

	overview, err := a.reports.BuildPending(ctx, *client, ref)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.styles.pending(overview))
	return nil
}

func (a *app) pdf(ctx context.Context, args []string, runs worker.RunRecorder, cfg worker.Config, logger *log.Logger) error {
	fs := flag.NewFlagSet("pdf", flag.ContinueOnError)
	client := fs.String("client", "", "client ID")
	month := fs.String("month", "", `month label (Jan/2024) or "Todos"`)
	out := fs.String("out", "", "output file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *client == "" || *out == "" {
		return fmt.Errorf("-client and -out are required")
	}

	sink := export.NewMemorySink("file")
	w := worker.NewReportWorker(a.reports, sink, runs, cfg, logger)
	run, err := w.Generate(ctx, uuid.NewString(), services.Selection{Client: *client, Month: *month})
	if err != nil {
		return err
	}
	data, ok := sink.Object(export.ObjectName(run.Client, run.Period, run.ID))
	if !ok {
		return fmt.Errorf("report %s was not rendered", run.ID)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}

	fmt.Fprintln(a.out, a.styles.ok.Render(fmt.Sprintf("%s: %d páginas, %s", *out, run.Pages, run.Period)))
	return nil
}
