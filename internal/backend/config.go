package backend

import (
	"fmt"

	"essenza/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		LedgerDir:     appConfig.LedgerDir,
		Extension:     appConfig.LedgerExtension,
		PendingSuffix: appConfig.PendingSuffix,
		ReservedFile:  appConfig.ReservedFile,
		CacheSize:     appConfig.TableCacheSize,
		CacheTTL:      appConfig.TableCacheTTL,

		GoogleClientSheets: appConfig.GoogleClientSheets,
		GoogleLedgerSheet:  appConfig.GoogleLedgerSheet,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case XLSXBackend:
		if c.LedgerDir == "" {
			return fmt.Errorf("ledger directory is required for xlsx backend")
		}
	case SheetsBackend:
		if len(c.GoogleClientSheets) == 0 {
			return fmt.Errorf("at least one client spreadsheet is required for sheets backend")
		}
	case MemoryBackend:
		// demo data, nothing to check
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{XLSXBackend, SheetsBackend, MemoryBackend}
}
