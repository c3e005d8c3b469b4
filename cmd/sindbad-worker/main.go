package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"sindbad/internal/amqp"
	"sindbad/internal/backend"
	"sindbad/internal/cache"
	"sindbad/internal/config"
	"sindbad/internal/log"
	"sindbad/internal/notify"
	"sindbad/internal/services"
	ports "sindbad/internal/sheets"
	gsheet "sindbad/internal/sheets/google"
	mem "sindbad/internal/sheets/memory"
	"sindbad/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	level, err := config.ParseLevel(cfg.LogLevel)
	logger := log.Setup(level, log.ComponentWorker)
	if err != nil {
		logger.Warn("Unknown log level, using info", log.FieldError, err)
	}
	logger.Info("Starting sindbad-worker")

	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	// The worker only consumes; it opens its own AMQP client below.
	bcfg.AMQPURL = ""
	be, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer be.Cleanup()

	var writer ports.ReportWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			Sheet:           cfg.GoogleReportSheet,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleReportSheet)
		writer = client
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, rows kept in memory")
		writer = mem.New()
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logger.Error("Failed to initialize Telegram bot", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Telegram summaries enabled", "chat_id", cfg.TelegramChatID)
		notifier = tg
	}

	reports := services.NewReportService(be.Repository, cfg.Location(), nil)
	exporter := worker.NewExportWorker(reports, writer, notifier)

	caches := cache.NewManager()
	caches.Register(exporter.Dedup())
	caches.StartCleanup(30 * time.Minute)
	defer caches.Stop()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		g.Go(func() error {
			return client.ConsumeRecordEvents(gctx, exporter.HandleRecordEvent)
		})
	} else {
		logger.Info("Skipping AMQP message consumption - no AMQP_URL provided")
	}

	g.Go(func() error {
		// Refresh today's row once at startup so a restart does not wait a full interval.
		if err := exporter.RunDailyExport(gctx, cfg.DefaultOwnerID); err != nil {
			logger.Error("Startup export failed", log.FieldError, err, log.FieldOwner, cfg.DefaultOwnerID)
		}
		return exporter.RunPeriodic(gctx, cfg.DefaultOwnerID, cfg.ExportInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
