// Package xlsx discovers client ledgers in a directory of .xlsx workbooks.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"essenza/internal/cache"
	"essenza/internal/core"
	"essenza/internal/ledger"
	"essenza/internal/log"
	ports "essenza/internal/sheets"

	"github.com/xuri/excelize/v2"
)

// Config describes the file naming conventions of a ledger directory.
type Config struct {
	Dir           string
	Extension     string // default ".xlsx"
	PendingSuffix string // default "_pendencias"
	ReservedFile  string // default "config.xlsx"

	// CacheSize bounds the parsed-workbook cache; zero disables it.
	CacheSize int
	CacheTTL  time.Duration
}

func (c Config) withDefaults() Config {
	if c.Dir == "" {
		c.Dir = "."
	}
	if c.Extension == "" {
		c.Extension = ".xlsx"
	}
	if !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	if c.PendingSuffix == "" {
		c.PendingSuffix = "_pendencias"
	}
	if c.ReservedFile == "" {
		c.ReservedFile = "config.xlsx"
	}
	return c
}

// workbook is a parsed file: every sheet as a table, in file order.
type workbook struct {
	order  []string
	sheets map[string]ledger.Table
}

func (w *workbook) sheet(name string) (ledger.Table, bool) {
	for _, n := range w.order {
		if strings.EqualFold(strings.TrimSpace(n), name) {
			return w.sheets[n], true
		}
	}
	return ledger.Table{}, false
}

// Source reads ledgers and pending files from disk. Parsed workbooks are
// cached by path, size and modification time, so an edited file is read
// again on the next request.
type Source struct {
	cfg    Config
	tables *cache.LRUCache[*workbook]
	logger *log.Logger
}

var _ ports.Source = (*Source)(nil)

func New(cfg Config, logger *log.Logger) *Source {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	s := &Source{cfg: cfg.withDefaults(), logger: logger.WithComponent(log.ComponentSheets)}
	if cfg.CacheSize > 0 {
		s.tables = cache.NewLRUCache[*workbook](cfg.CacheSize, cfg.CacheTTL)
	}
	return s
}

// Cache returns the workbook cache for periodic cleanup, nil when disabled.
func (s *Source) Cache() cache.Cleaner {
	if s.tables == nil {
		return nil
	}
	return s.tables
}

// Discover lists client IDs in dir: every file with the ledger extension
// except pending files, the reserved file and editor lock files.
func (s *Source) Discover() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("read ledger dir %s: %w", s.cfg.Dir, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, ok := s.clientID(e.Name()); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w in %s", core.ErrNoLedgers, s.cfg.Dir)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Source) clientID(name string) (string, bool) {
	ext := filepath.Ext(name)
	if !strings.EqualFold(ext, s.cfg.Extension) {
		return "", false
	}
	if strings.EqualFold(name, s.cfg.ReservedFile) || strings.HasPrefix(name, "~$") {
		return "", false
	}
	base := strings.TrimSuffix(name, ext)
	if base == "" || strings.HasSuffix(strings.ToLower(base), strings.ToLower(s.cfg.PendingSuffix)) {
		return "", false
	}
	return base, true
}

// ListClients returns the discovered clients with display names.
func (s *Source) ListClients(_ context.Context) ([]ports.Client, error) {
	ids, err := s.Discover()
	if err != nil {
		return nil, err
	}
	out := make([]ports.Client, len(ids))
	for i, id := range ids {
		out[i] = ports.Client{ID: id, DisplayName: ports.DisplayName(id)}
	}
	return out, nil
}

// ReadLedger reads the first worksheet of <dir>/<id><ext>.
func (s *Source) ReadLedger(ctx context.Context, clientID string) (ledger.Table, error) {
	path, err := s.ledgerPath(clientID)
	if err != nil {
		return ledger.Table{}, err
	}
	wb, err := s.load(ctx, path)
	if errors.Is(err, fs.ErrNotExist) {
		return ledger.Table{}, fmt.Errorf("%w: %s", core.ErrClientNotFound, clientID)
	}
	if err != nil {
		return ledger.Table{}, err
	}
	if len(wb.order) == 0 {
		return ledger.Table{}, fmt.Errorf("workbook %s has no sheets", path)
	}
	return wb.sheets[wb.order[0]], nil
}

// ReadPending reads PAGAR and RECEBER from <dir>/<id><suffix><ext>.
func (s *Source) ReadPending(ctx context.Context, clientID string) (ports.PendingTables, error) {
	if _, err := s.ledgerPath(clientID); err != nil {
		return ports.PendingTables{}, err
	}
	path := filepath.Join(s.cfg.Dir, clientID+s.cfg.PendingSuffix+s.cfg.Extension)

	wb, err := s.load(ctx, path)
	if errors.Is(err, fs.ErrNotExist) {
		return ports.PendingTables{}, core.ErrMissingPendingFile
	}
	if err != nil {
		return ports.PendingTables{}, &core.MalformedPendingSheetError{Path: path, Err: err}
	}

	payable, okP := wb.sheet(ports.PayableSheet)
	receivable, okR := wb.sheet(ports.ReceivableSheet)
	if !okP || !okR {
		var missing []string
		if !okP {
			missing = append(missing, ports.PayableSheet)
		}
		if !okR {
			missing = append(missing, ports.ReceivableSheet)
		}
		return ports.PendingTables{}, &core.MalformedPendingSheetError{Path: path, Missing: missing}
	}
	return ports.PendingTables{Payable: payable, Receivable: receivable}, nil
}

// ledgerPath rejects IDs that are not plain discoverable file names.
func (s *Source) ledgerPath(clientID string) (string, error) {
	if clientID == "" || clientID != filepath.Base(clientID) || strings.ContainsAny(clientID, `/\`) {
		return "", fmt.Errorf("%w: %q", core.ErrClientNotFound, clientID)
	}
	if _, ok := s.clientID(clientID + s.cfg.Extension); !ok {
		return "", fmt.Errorf("%w: %q", core.ErrClientNotFound, clientID)
	}
	return filepath.Join(s.cfg.Dir, clientID+s.cfg.Extension), nil
}

func (s *Source) load(ctx context.Context, path string) (*workbook, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := path + "|" + strconv.FormatInt(info.Size(), 10) + "|" + strconv.FormatInt(info.ModTime().UnixNano(), 10)
	if s.tables != nil {
		if wb, ok := s.tables.Get(key); ok {
			return wb, nil
		}
	}

	wb, err := readWorkbook(path)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "Workbook parsed", log.FieldFile, path, log.FieldCount, len(wb.order))
	if s.tables != nil {
		s.tables.Set(key, wb)
	}
	return wb, nil
}

// readWorkbook reads raw cell values: numbers stay unformatted and dates
// come back as serial numbers.
func readWorkbook(path string) (*workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	wb := &workbook{sheets: make(map[string]ledger.Table)}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %s of %s: %w", name, path, err)
		}
		wb.order = append(wb.order, name)
		wb.sheets[name] = ledger.NewTable(rows)
	}
	return wb, nil
}
