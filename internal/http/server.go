package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"essenza/internal/amqp"
	"essenza/internal/export"
	"essenza/internal/log"
	"essenza/internal/middleware/ratelimit"
	"essenza/internal/middleware/security"
	"essenza/internal/middleware/trace"
	"essenza/internal/services"
	"essenza/internal/storage"
	appweb "essenza/web"
)

// ReportPublisher enqueues asynchronous report requests.
type ReportPublisher interface {
	PublishReportRequest(ctx context.Context, msg *amqp.ReportRequestMessage) error
}

// ReportGenerator renders a report and delivers it to sink.
type ReportGenerator interface {
	GenerateTo(ctx context.Context, id string, sel services.Selection, sink export.Sink) (storage.ReportRun, error)
}

// RunLister reads the report history.
type RunLister interface {
	ListRuns(ctx context.Context, client string, limit int) ([]storage.ReportRun, error)
}

// Options wires the server. Publisher and Runs are optional: the routes
// that need them answer 503 when they are nil.
type Options struct {
	Addr               string
	Reports            *services.ReportService
	Generator          ReportGenerator
	Publisher          ReportPublisher
	Runs               RunLister
	Brand              string
	RateLimitPerMinute int
	Logger             *log.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	reports   *services.ReportService
	generator ReportGenerator
	publisher ReportPublisher
	runs      RunLister
	brand     string

	logger     *log.Logger
	structured *log.StructuredLogger
	limiter    *ratelimit.Limiter
	detector   *security.Detector
	tracer     *trace.Middleware

	// pdfs collapses concurrent renders of the same client and period.
	pdfs   singleflight.Group
	uptime time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 16,
		},
		reports:    opts.Reports,
		generator:  opts.Generator,
		publisher:  opts.Publisher,
		runs:       opts.Runs,
		brand:      opts.Brand,
		logger:     logger.WithComponent(log.ComponentHTTP),
		structured: log.NewStructuredLogger(logger),
		detector:   security.NewDetector(logger),
		uptime:     time.Now(),
	}
	s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}, logger)
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, s.structured)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Error("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		log.Middleware(s.logger),
		log.RequestIDMiddleware(middleware.GetReqID),
		s.tracer.Middleware,
		middleware.Recoverer,
		s.detector.Middleware,
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
	)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	limited := s.limiter.Middleware(s.detector.ExtractClientIP, nil)

	r.Group(func(r chi.Router) {
		r.Use(security.NoStore)

		r.Get("/", s.handleIndex)
		r.With(limited).Get("/report.pdf", s.handleReportPDF)

		r.Route("/api", func(r chi.Router) {
			r.Get("/clients", s.handleClients)
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/pending", s.handlePending)
			r.Get("/reports", s.handleListReports)
			r.With(limited).Post("/reports", s.handleEnqueueReport)
		})
	})

	return r
}

// Shutdown stops the rate limiter and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
