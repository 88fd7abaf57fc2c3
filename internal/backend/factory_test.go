package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"essenza/internal/config"
	"essenza/internal/core"
	"essenza/internal/log"
)

func quietFactory() *DefaultFactory {
	f := NewFactory(log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)}))
	f.now = func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) }
	return f
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sqlite"}); err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:    "xlsx",
		LedgerDir:      "/data",
		PendingSuffix:  "_p",
		TableCacheSize: 3,
		TableCacheTTL:  time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != XLSXBackend || cfg.LedgerDir != "/data" || cfg.PendingSuffix != "_p" || cfg.CacheSize != 3 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"xlsx ok", Config{Type: XLSXBackend, LedgerDir: "."}, false},
		{"xlsx without dir", Config{Type: XLSXBackend}, true},
		{"sheets without clients", Config{Type: SheetsBackend}, true},
		{"sheets ok", Config{Type: SheetsBackend, GoogleClientSheets: map[string]string{"a": "b"}}, false},
		{"memory ok", Config{Type: MemoryBackend}, false},
		{"unknown", Config{Type: "sqlite"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend_Memory(t *testing.T) {
	res, err := quietFactory().CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	clients, err := res.Backend.ListClients(context.Background())
	if err != nil || len(clients) == 0 {
		t.Fatalf("demo store has no clients: %v", err)
	}
	if res.Cache != nil {
		t.Error("memory backend has no cache")
	}
}

func TestCreateBackend_XLSXWithoutLedgers(t *testing.T) {
	_, err := quietFactory().CreateBackend(context.Background(), Config{Type: XLSXBackend, LedgerDir: t.TempDir()})
	if !errors.Is(err, core.ErrNoLedgers) {
		t.Fatalf("expected ErrNoLedgers, got %v", err)
	}
}
