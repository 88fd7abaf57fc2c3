package backend

import (
	"context"
	"fmt"
	"time"

	"essenza/internal/log"
	gsheet "essenza/internal/sheets/google"
	"essenza/internal/sheets/memory"
	"essenza/internal/sheets/xlsx"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	now    func() time.Time
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		now:    time.Now,
	}
}

// CreateBackend builds the configured source. An xlsx directory without
// any ledger is an error: there is nothing to report on.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case XLSXBackend:
		return f.createXLSXBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createXLSXBackend(config Config) (*BackendResult, error) {
	src := xlsx.New(xlsx.Config{
		Dir:           config.LedgerDir,
		Extension:     config.Extension,
		PendingSuffix: config.PendingSuffix,
		ReservedFile:  config.ReservedFile,
		CacheSize:     config.CacheSize,
		CacheTTL:      config.CacheTTL,
	}, f.logger)

	ids, err := src.Discover()
	if err != nil {
		return nil, err
	}

	f.logger.Info("Initialized xlsx backend",
		"ledger_dir", config.LedgerDir,
		log.FieldCount, len(ids),
		"cache_size", config.CacheSize)

	return &BackendResult{Backend: src, Cache: src.Cache()}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Config{
		Clients:     config.GoogleClientSheets,
		LedgerSheet: config.GoogleLedgerSheet,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", log.FieldCount, len(config.GoogleClientSheets))

	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	store := memory.NewDemo(f.now())

	f.logger.Info("Initialized memory backend with demo data")

	return &BackendResult{Backend: store}, nil
}
