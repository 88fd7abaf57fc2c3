package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"essenza/internal/amqp"
	"essenza/internal/cache"
	"essenza/internal/cli"
	"essenza/internal/log"
	"essenza/internal/services"
	"essenza/internal/worker"
)

const restartDelay = 5 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(log.ComponentWorker)
	logger.Info("Starting essenza-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the report worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if res.Cleanup == nil {
			return
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	caches := cache.NewManager(logger)
	if res.Cache != nil && cfg.TableCacheTTL > 0 {
		caches.Register("tables", res.Cache)
		caches.StartCleanup(cfg.TableCacheTTL)
	}
	defer caches.Stop()

	sink, closeSink := cli.InitSink(ctx, logger, cfg)
	defer func() {
		if err := closeSink(); err != nil {
			logger.Error("Sink close failed", log.FieldError, err)
		}
	}()

	var recorder worker.RunRecorder
	if repo := cli.InitSQLite(logger, cfg.SQLiteDBPath); repo != nil {
		defer repo.Close()
		recorder = repo
	}

	reports := services.NewReportService(res.Backend, cli.NewNormalizer(cfg), logger)
	reportWorker := worker.NewReportWorker(reports, sink, recorder,
		worker.Config{Brand: cfg.ReportBrand, LogoPath: cfg.ReportLogoPath}, logger)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consume(gctx, logger, client, reportWorker)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

// consume restarts the consumer after broker failures until ctx ends.
func consume(ctx context.Context, logger *log.Logger, client *amqp.Client, w *worker.ReportWorker) error {
	for {
		err := client.ConsumeReportRequests(ctx, w.HandleReportRequest)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("Report consumer stopped, restarting", log.FieldError, err, "delay", restartDelay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(restartDelay):
		}
	}
}
