package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"essenza/internal/amqp"
	"essenza/internal/cache"
	"essenza/internal/cli"
	"essenza/internal/config"
	"essenza/internal/export"
	apphttp "essenza/internal/http"
	"essenza/internal/log"
	"essenza/internal/services"
	"essenza/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	res := cli.InitBackend(ctx, logger, cfg)

	caches := cache.NewManager(logger)
	if res.Cache != nil && cfg.TableCacheTTL > 0 {
		caches.Register("tables", res.Cache)
		caches.StartCleanup(cfg.TableCacheTTL)
	}

	reports := services.NewReportService(res.Backend, cli.NewNormalizer(cfg), logger)
	opts := apphttp.Options{
		Addr:               ":" + cfg.Port,
		Reports:            reports,
		Brand:              cfg.ReportBrand,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	}

	// Interfaces stay nil when a feature is disabled.
	var recorder worker.RunRecorder
	if repo := cli.InitSQLite(logger, cfg.SQLiteDBPath); repo != nil {
		defer repo.Close()
		opts.Runs = repo
		recorder = repo
	}
	opts.Generator = worker.NewReportWorker(reports, export.NewMemorySink("download"), recorder,
		worker.Config{Brand: cfg.ReportBrand, LogoPath: cfg.ReportLogoPath}, logger)

	if client := initPublisher(logger, cfg); client != nil {
		defer client.Close()
		opts.Publisher = client
	}

	srv := apphttp.NewServer(opts)

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting essenza server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		"report_queue", opts.Publisher != nil,
		"report_history", opts.Runs != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}

// initPublisher connects to AMQP when AMQP_URL is set. A broker that is
// down at startup disables async reports instead of failing the server.
func initPublisher(logger *log.Logger, cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		logger.Info("Async reports disabled (AMQP_URL not set)")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Warn("AMQP unavailable, async reports disabled", log.FieldError, err)
		return nil
	}
	return client
}
