// Package export delivers rendered PDFs to a local directory or a Google
// Cloud Storage bucket.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// Sink stores one report and returns where it went.
type Sink interface {
	Deliver(ctx context.Context, name string, r io.Reader) (string, error)
}

// ObjectName builds "<client>/<period>/<id>.pdf". Month labels contain a
// slash, so "Jan/2024" becomes "Jan-2024".
func ObjectName(client, period, id string) string {
	return path.Join(segment(client), segment(period), segment(id)+".pdf")
}

func segment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("/", "-", `\`, "-", "..", "-").Replace(s)
	if s == "" || s == "." {
		return "_"
	}
	return s
}

// LocalSink writes reports under Dir.
type LocalSink struct {
	Dir string
}

func NewLocalSink(dir string) (*LocalSink, error) {
	if dir == "" {
		return nil, fmt.Errorf("local sink: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	return &LocalSink{Dir: dir}, nil
}

// Deliver writes through a temporary file and renames it, so readers never
// see a partial PDF.
func (s *LocalSink) Deliver(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dest := filepath.Join(s.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".report-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("rename %s: %w", dest, err)
	}
	return dest, nil
}

// MemorySink keeps delivered reports in memory. Destinations read
// "<scheme>://<name>".
type MemorySink struct {
	scheme  string
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemorySink(scheme string) *MemorySink {
	return &MemorySink{scheme: scheme, objects: make(map[string][]byte)}
}

func (s *MemorySink) Deliver(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read report %s: %w", name, err)
	}
	s.mu.Lock()
	s.objects[name] = data
	s.mu.Unlock()
	return s.scheme + "://" + name, nil
}

// Object returns a delivered report by name.
func (s *MemorySink) Object(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[name]
	return data, ok
}
