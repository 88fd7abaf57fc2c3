package http

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"essenza/internal/amqp"
	"essenza/internal/export"
	"essenza/internal/log"
	"essenza/internal/services"
	"essenza/internal/storage"
)

type renderedPDF struct {
	run  storage.ReportRun
	data []byte
}

// handleReportPDF renders the PDF of ?client=&month= on demand. Identical
// concurrent requests share one render.
func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Geração de PDF indisponível.")
		return
	}

	sel := parseSelection(r)
	if sel.Client == "" {
		writeMessage(w, http.StatusBadRequest, "Parâmetro client obrigatório.")
		return
	}
	period, err := services.ParsePeriod(sel.Month)
	if err != nil {
		s.writeError(w, r, err, log.OpRender)
		return
	}
	sel.Month = period.Label()

	key := sel.Client + "|" + sel.Month
	v, err, shared := s.pdfs.Do(key, func() (any, error) {
		// The render outlives the request that started it when others share it.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), requestTimeout)
		defer cancel()
		return s.renderPDF(ctx, sel)
	})
	if err != nil {
		s.writeError(w, r, err, log.OpRender)
		return
	}

	pdf := v.(*renderedPDF)
	log.FromContext(r.Context()).DebugContext(r.Context(), "Report served",
		log.FieldReportID, pdf.run.ID,
		log.FieldClient, pdf.run.Client,
		"shared", shared)

	filename := fmt.Sprintf("relatorio-%s-%s.pdf", pdf.run.Client, strings.ReplaceAll(pdf.run.Period, "/", "-"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf.data)))
	w.Header().Set("X-Report-ID", pdf.run.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf.data)
}

func (s *Server) renderPDF(ctx context.Context, sel services.Selection) (*renderedPDF, error) {
	sink := export.NewMemorySink("download")
	run, err := s.generator.GenerateTo(ctx, uuid.NewString(), sel, sink)
	if err != nil {
		return nil, err
	}
	data, ok := sink.Object(export.ObjectName(run.Client, run.Period, run.ID))
	if !ok {
		return nil, fmt.Errorf("report %s was not delivered", run.ID)
	}
	return &renderedPDF{run: run, data: data}, nil
}

type enqueueRequest struct {
	Client string `json:"client"`
	Month  string `json:"month"`
}

// handleEnqueueReport queues a PDF for the worker. The body is JSON
// {"client", "month"} or a form with the same fields.
func (s *Server) handleEnqueueReport(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Fila de relatórios não configurada.")
		return
	}

	var req enqueueRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<14)).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "JSON inválido.")
			return
		}
	} else {
		req = enqueueRequest{Client: r.FormValue("client"), Month: r.FormValue("month")}
	}
	req.Client, req.Month = sanitizeInput(req.Client), sanitizeInput(req.Month)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	// Reject what the worker would drop anyway.
	client, err := s.reports.Client(ctx, req.Client)
	if err != nil {
		s.writeError(w, r, err, log.OpEnqueue)
		return
	}
	period, err := services.ParsePeriod(req.Month)
	if err != nil {
		s.writeError(w, r, err, log.OpEnqueue)
		return
	}

	msg := amqp.NewReportRequestMessage(client.ID, period.Label())
	if err := s.publisher.PublishReportRequest(ctx, msg); err != nil {
		s.structured.LogError(ctx, "Failed to enqueue report", err, log.ComponentAMQP, log.OpEnqueue,
			log.NewFields().WithReport(msg.ID, msg.Client, msg.Month, 0))
		writeMessage(w, http.StatusServiceUnavailable, "Não foi possível enfileirar o relatório.")
		return
	}

	log.FromContext(ctx).InfoContext(ctx, "Report request queued",
		log.FieldReportID, msg.ID,
		log.FieldClient, msg.Client,
		log.FieldPeriod, msg.Month)
	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     msg.ID,
		"client": msg.Client,
		"period": msg.Month,
		"status": "queued",
	})
}

// handleListReports returns the report history, newest first, optionally
// filtered by ?client=.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Histórico de relatórios não configurado.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	client := sanitizeInput(r.URL.Query().Get("client"))
	runs, err := s.runs.ListRuns(ctx, client, parseLimit(r))
	if err != nil {
		s.writeError(w, r, err, log.OpList)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": runViews(runs)})
}
