package backend

import (
	"context"
	"time"

	"essenza/internal/cache"
	"essenza/internal/sheets"
)

// Backend provides every source operation the report pipeline needs.
type Backend interface {
	sheets.ClientLister
	sheets.LedgerReader
	sheets.PendingReader
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	// Cache is the backend's table cache, nil when it has none.
	Cache   cache.Cleaner
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// xlsx specific
	LedgerDir     string
	Extension     string
	PendingSuffix string
	ReservedFile  string
	CacheSize     int
	CacheTTL      time.Duration

	// Google Sheets specific
	GoogleClientSheets map[string]string
	GoogleLedgerSheet  string
}

// BackendType represents the type of backend
type BackendType string

const (
	XLSXBackend   BackendType = "xlsx"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case XLSXBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
