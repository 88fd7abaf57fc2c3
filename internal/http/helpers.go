package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"essenza/internal/core"
	"essenza/internal/log"
	"essenza/internal/services"
)

const (
	// requestTimeout bounds a single pipeline run.
	requestTimeout = 15 * time.Second
	maxHistory     = 200
	isoDate        = "2006-01-02"
)

// parseSelection reads client and month from the query string.
func parseSelection(r *http.Request) services.Selection {
	q := r.URL.Query()
	return services.Selection{
		Client: sanitizeInput(q.Get("client")),
		Month:  sanitizeInput(q.Get("month")),
	}
}

// parseReference reads ?today=YYYY-MM-DD, falling back to fallback.
func parseReference(r *http.Request, fallback core.Date) (core.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("today"))
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse(isoDate, raw)
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid today %q: expected YYYY-MM-DD", raw)
	}
	return core.DateOf(t), nil
}

// parseLimit reads ?limit=N, bounded to maxHistory.
func parseLimit(r *http.Request) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("limit")))
	if err != nil || n <= 0 {
		return 0
	}
	if n > maxHistory {
		return maxHistory
	}
	return n
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// statusFor maps pipeline errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrClientNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnknownPeriod):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrMissingColumn):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNoLedgers):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// userMessage is the Portuguese text shown for err. Internal errors are
// never echoed back.
func userMessage(err error) string {
	switch statusFor(err) {
	case http.StatusNotFound:
		return "Cliente não encontrado."
	case http.StatusBadRequest:
		return "Período inválido."
	case http.StatusUnprocessableEntity:
		return "A planilha do cliente não tem as colunas obrigatórias: " + missingColumns(err) + "."
	case http.StatusServiceUnavailable:
		return "Nenhuma planilha de cliente encontrada."
	case http.StatusGatewayTimeout:
		return "A leitura da planilha demorou demais."
	default:
		return "Erro interno ao gerar o relatório."
	}
}

func missingColumns(err error) string {
	var mc *core.MissingColumnError
	if !errors.As(err, &mc) {
		return "?"
	}
	parts := make([]string, 0, len(mc.Columns))
	for _, c := range mc.Columns {
		if hint := mc.Suggestions[c]; hint != "" {
			c += " (encontrada: " + hint + ")"
		}
		parts = append(parts, c)
	}
	return strings.Join(parts, ", ")
}

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError logs err and writes a JSON error body with its mapped status.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.structured.LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op,
			log.NewFields().WithRequestID(log.RequestID(r.Context())))
	} else {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Request rejected", log.FieldError, err, log.FieldOperation, op)
	}
	writeJSON(w, status, errorResponse{Error: userMessage(err), Status: status})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Status: status})
}

var templateFuncs = template.FuncMap{
	"brl": core.FormatBRL,
	"pct": func(part, total core.Money) int {
		if total.Cents <= 0 {
			return 0
		}
		return int(part.Cents * 100 / total.Cents)
	},
}
