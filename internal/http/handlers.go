package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"essenza/internal/core"
	"essenza/internal/log"
	"essenza/internal/services"
	"essenza/internal/sheets"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.uptime).Round(time.Second).String(),
	})
}

// handleReady checks templates and the ledger source.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)
	fail := func(name string, err error) {
		checks[name] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	if s.templates == nil {
		fail("templates", errors.New("templates not loaded"))
	} else {
		checks["templates"] = "ok"
	}

	if clients, err := s.reports.ListClients(ctx); err != nil {
		fail("ledgers", err)
	} else {
		checks["ledgers"] = map[string]any{"status": "ok", "clients": len(clients)}
	}

	checks["report_queue"] = optional(s.publisher != nil)
	checks["report_history"] = optional(s.runs != nil)
	checks["rate_limiter"] = map[string]any{"status": "ok", "active_clients": s.limiter.ActiveClients()}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func optional(enabled bool) string {
	if enabled {
		return "ok"
	}
	return "disabled"
}

// handleMetrics exposes request and security counters in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	tm := s.tracer.GetMetrics()

	metrics := []struct {
		name, help, kind string
		value            int64
	}{
		{"http_requests_total", "Total number of HTTP requests", "counter", tm.TotalRequests},
		{"http_server_errors_total", "Total number of 5xx responses", "counter", tm.ServerErrors},
		{"http_last_request_duration_ms", "Duration of the latest request", "gauge", tm.LastDurationMs},
		{"suspicious_requests_total", "Total suspicious requests blocked", "counter", s.detector.SuspiciousCount()},
		{"active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", int64(s.limiter.ActiveClients())},
		{"uptime_seconds", "Seconds since the server started", "gauge", int64(time.Since(s.uptime).Seconds())},
	}
	for _, m := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %d\n\n", m.name, m.help, m.name, m.kind, m.name, m.value)
	}
}

// indexPage is the data of templates/index.html.
type indexPage struct {
	Brand        string
	Clients      []sheets.Client
	Selected     string
	Periods      []string
	Error        string
	Dashboard    *services.Dashboard
	EvolutionMax core.Money
	Pending      *services.PendingOverview
	AsyncReports bool
}

func (s *Server) brandName() string {
	if s.brand == "" {
		return "Essenza"
	}
	return s.brand
}

// handleIndex renders the dashboard for ?client=&month=. Without a client
// the first one is shown.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	sel := parseSelection(r)
	page := indexPage{Brand: s.brandName(), AsyncReports: s.publisher != nil}
	status := http.StatusOK
	logger := log.FromContext(ctx)

	clients, err := s.reports.ListClients(ctx)
	switch {
	case errors.Is(err, core.ErrNoLedgers):
		// Empty state, not an error page.
	case err != nil:
		status, page.Error = statusFor(err), userMessage(err)
		logger.ErrorContext(ctx, "Client list failed", log.FieldError, err)
	default:
		page.Clients = clients
		if sel.Client == "" && len(clients) > 0 {
			sel.Client = clients[0].ID
		}
	}

	if sel.Client != "" && page.Error == "" {
		d, err := s.reports.BuildDashboard(ctx, sel)
		if err != nil {
			status, page.Error = statusFor(err), userMessage(err)
			page.Selected = sel.Client
			logger.WarnContext(ctx, "Dashboard failed", log.FieldClient, sel.Client, log.FieldPeriod, sel.Month, log.FieldError, err)
		} else {
			s.fillDashboard(ctx, &page, d)
		}
	}

	s.render(w, r, status, "index.html", page)
}

func (s *Server) fillDashboard(ctx context.Context, page *indexPage, d services.Dashboard) {
	page.Dashboard = &d
	page.Selected = d.Client.ID
	page.Periods = periodOptions(d.Periods)
	for _, p := range d.Evolution {
		if p.Amount.Cents > page.EvolutionMax.Cents {
			page.EvolutionMax = p.Amount
		}
	}

	pending, err := s.reports.BuildPending(ctx, d.Client.ID, s.reports.Today())
	if err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Pending view failed", log.FieldClient, d.Client.ID, log.FieldError, err)
		return
	}
	page.Pending = &pending
}

// render executes a template into a buffer first so a failing template
// yields a clean 500 instead of a truncated page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.structured.LogError(r.Context(), "Template execution failed", err, log.ComponentTemplate, log.OpRender, nil)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
