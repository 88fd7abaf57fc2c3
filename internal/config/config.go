package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Backend selection: xlsx, sheets or memory
	DataBackend string

	// Ledger files
	LedgerDir       string
	LedgerExtension string
	PendingSuffix   string
	ReservedFile    string

	// Column names
	DateColumn            string
	AmountColumn          string
	CategoryColumn        string
	TypeColumn            string
	PendingDueDateColumn  string
	PendingAmountColumn   string
	PendingCategoryColumn string

	// Parsed workbook cache
	TableCacheSize int
	TableCacheTTL  time.Duration

	// Report history; empty disables it
	SQLiteDBPath string

	// AMQP; empty URL disables async reports
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// PDF reports
	ReportOutputDir string
	ReportBucket    string
	ReportLogoPath  string
	ReportBrand     string

	// Google Sheets
	GoogleClientSheets map[string]string
	GoogleLedgerSheet  string

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		DataBackend: getEnv("DATA_BACKEND", "xlsx"),

		LedgerDir:       getEnv("LEDGER_DIR", "./data"),
		LedgerExtension: getEnv("LEDGER_EXTENSION", ".xlsx"),
		PendingSuffix:   getEnv("PENDING_SUFFIX", "_pendencias"),
		ReservedFile:    getEnv("RESERVED_FILE", "config.xlsx"),

		DateColumn:            getEnv("LEDGER_DATE_COLUMN", "Data"),
		AmountColumn:          getEnv("LEDGER_AMOUNT_COLUMN", "Valor"),
		CategoryColumn:        getEnv("LEDGER_CATEGORY_COLUMN", "Categoria"),
		TypeColumn:            getEnv("LEDGER_TYPE_COLUMN", "Tipo"),
		PendingDueDateColumn:  getEnv("PENDING_DUE_DATE_COLUMN", "Vencimento"),
		PendingAmountColumn:   getEnv("PENDING_AMOUNT_COLUMN", "Valor"),
		PendingCategoryColumn: getEnv("PENDING_CATEGORY_COLUMN", "Categoria"),

		TableCacheSize: getEnvInt("TABLE_CACHE_SIZE", 32),
		TableCacheTTL:  getEnvDuration("TABLE_CACHE_TTL", 10*time.Minute),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "essenza"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "report_requests"),

		ReportOutputDir: getEnv("REPORT_OUTPUT_DIR", "./reports"),
		ReportBucket:    getEnv("REPORT_BUCKET", ""),
		ReportLogoPath:  getEnv("REPORT_LOGO_PATH", ""),
		ReportBrand:     getEnv("REPORT_BRAND", "Essenza"),

		GoogleClientSheets: parsePairs(os.Getenv("GOOGLE_CLIENT_SHEETS")),
		GoogleLedgerSheet:  getEnv("GOOGLE_LEDGER_SHEET", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// ValidBackends lists the accepted DATA_BACKEND values.
var ValidBackends = []string{"xlsx", "sheets", "memory"}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	isValidBackend := false
	for _, backend := range ValidBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, ValidBackends))
	}

	if c.DataBackend == "xlsx" {
		if c.LedgerDir == "" {
			errors = append(errors, "ledger directory cannot be empty when using xlsx backend")
		} else if info, err := os.Stat(c.LedgerDir); err != nil {
			errors = append(errors, fmt.Sprintf("ledger directory '%s' is not accessible: %v", c.LedgerDir, err))
		} else if !info.IsDir() {
			errors = append(errors, fmt.Sprintf("ledger directory '%s' is not a directory", c.LedgerDir))
		}
		if c.PendingSuffix == "" {
			errors = append(errors, "pending suffix cannot be empty")
		}
	}

	if c.DataBackend == "sheets" && len(c.GoogleClientSheets) == 0 {
		errors = append(errors, "GOOGLE_CLIENT_SHEETS must list at least one name=spreadsheetID pair for sheets backend")
	}

	columns := map[string]string{
		"LEDGER_DATE_COLUMN":      c.DateColumn,
		"LEDGER_AMOUNT_COLUMN":    c.AmountColumn,
		"LEDGER_CATEGORY_COLUMN":  c.CategoryColumn,
		"LEDGER_TYPE_COLUMN":      c.TypeColumn,
		"PENDING_DUE_DATE_COLUMN": c.PendingDueDateColumn,
		"PENDING_AMOUNT_COLUMN":   c.PendingAmountColumn,
		"PENDING_CATEGORY_COLUMN": c.PendingCategoryColumn,
	}
	var blank []string
	for name, value := range columns {
		if strings.TrimSpace(value) == "" {
			blank = append(blank, name)
		}
	}
	sort.Strings(blank)
	for _, name := range blank {
		errors = append(errors, fmt.Sprintf("%s cannot be empty", name))
	}

	if c.TableCacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid table cache size %d: must not be negative", c.TableCacheSize))
	}
	if c.TableCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid table cache TTL %v: must not be negative", c.TableCacheTTL))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if c.SQLiteDBPath != "" {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ReportBucket == "" && c.ReportOutputDir == "" {
		errors = append(errors, "either REPORT_BUCKET or REPORT_OUTPUT_DIR must be set")
	}
	if c.ReportLogoPath != "" {
		if _, err := os.Stat(c.ReportLogoPath); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("report logo does not exist: %s", c.ReportLogoPath))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// parsePairs reads "name=id,name2=id2". Entries without '=' are ignored.
func parsePairs(raw string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		name, id, ok := strings.Cut(part, "=")
		name, id = strings.TrimSpace(name), strings.TrimSpace(id)
		if !ok || name == "" || id == "" {
			continue
		}
		out[name] = id
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
