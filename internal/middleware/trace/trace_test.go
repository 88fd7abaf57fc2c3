package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"essenza/internal/log"
)

func TestMiddleware_LogsAndCounts(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
	m := NewMiddleware(func(*http.Request) string { return "192.0.2.1" }, log.NewStructuredLogger(logger))

	ok := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	fail := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	fail.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	got := m.GetMetrics()
	if got.TotalRequests != 2 || got.ServerErrors != 1 {
		t.Errorf("metrics = %+v", got)
	}

	out := buf.String()
	for _, want := range []string{"HTTP request started", "status_code=200", "status_code=500", "client_ip=192.0.2.1", "level=ERROR"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
