// Package cli provides common initialization shared by cmd/essenza,
// cmd/essenza-worker and cmd/essenza-report.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"essenza/internal/backend"
	"essenza/internal/config"
	"essenza/internal/export"
	"essenza/internal/ledger"
	"essenza/internal/log"
	"essenza/internal/storage"

	"github.com/joho/godotenv"
)

// SetupLogger initializes structured logging at the LOG_LEVEL level and
// sets it as the default logger.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// NewNormalizer builds the ledger normalizer from the configured column names.
func NewNormalizer(cfg *config.Config) *ledger.Normalizer {
	return ledger.NewNormalizer(
		ledger.Schema{
			Date:     cfg.DateColumn,
			Amount:   cfg.AmountColumn,
			Category: cfg.CategoryColumn,
			Type:     cfg.TypeColumn,
		},
		ledger.PendingSchema{
			DueDate:  cfg.PendingDueDateColumn,
			Amount:   cfg.PendingAmountColumn,
			Category: cfg.PendingCategoryColumn,
		},
	)
}

// InitBackend creates the ledger source. A source without ledgers is fatal.
func InitBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	return res
}

// InitSQLite opens the report history. An empty path disables it and
// returns nil.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	if dbPath == "" {
		logger.Info("Report history disabled (SQLITE_DB_PATH not set)")
		return nil
	}
	sqliteRepo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return sqliteRepo
}

// InitSink picks the GCS bucket when REPORT_BUCKET is set and the local
// report directory otherwise. The returned cleanup is never nil.
func InitSink(ctx context.Context, logger *log.Logger, cfg *config.Config) (export.Sink, func() error) {
	if cfg.ReportBucket != "" {
		sink, err := export.NewGCSSink(ctx, cfg.ReportBucket)
		if err != nil {
			logger.Error("Failed to initialize GCS sink", log.FieldError, err, log.FieldDestination, cfg.ReportBucket)
			os.Exit(1)
		}
		logger.Info("Reports delivered to GCS", log.FieldDestination, cfg.ReportBucket)
		return sink, sink.Close
	}
	sink, err := export.NewLocalSink(cfg.ReportOutputDir)
	if err != nil {
		logger.Error("Failed to initialize report directory", log.FieldError, err, log.FieldDestination, cfg.ReportOutputDir)
		os.Exit(1)
	}
	logger.Info("Reports delivered to local directory", log.FieldDestination, cfg.ReportOutputDir)
	return sink, func() error { return nil }
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		cancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup()
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-time.After(timeout):
			logger.Warn("Shutdown timeout reached")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
