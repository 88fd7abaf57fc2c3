package http

import (
	"context"
	"errors"
	"net/http"

	"essenza/internal/core"
	"essenza/internal/log"
)

// handleClients lists the discovered clients. No ledger at all is an
// empty list, not an error.
func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clients, err := s.reports.ListClients(ctx)
	if err != nil && !errors.Is(err, core.ErrNoLedgers) {
		s.writeError(w, r, err, log.OpList)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clients": clientViews(clients)})
}

// handleDashboard returns the dashboard of ?client=&month=.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	sel := parseSelection(r)
	if sel.Client == "" {
		writeMessage(w, http.StatusBadRequest, "Parâmetro client obrigatório.")
		return
	}

	d, err := s.reports.BuildDashboard(ctx, sel)
	if err != nil {
		s.writeError(w, r, err, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, newDashboardView(d))
}

// handlePending returns the aging view of ?client=, relative to ?today=
// (YYYY-MM-DD) or the current date.
func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	client := sanitizeInput(r.URL.Query().Get("client"))
	if client == "" {
		writeMessage(w, http.StatusBadRequest, "Parâmetro client obrigatório.")
		return
	}
	ref, err := parseReference(r, s.reports.Today())
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Parâmetro today deve ser AAAA-MM-DD.")
		return
	}

	overview, err := s.reports.BuildPending(ctx, client, ref)
	if err != nil {
		s.writeError(w, r, err, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, newPendingView(overview))
}
