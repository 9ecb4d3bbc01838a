package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"propsearch/server/config"
	"propsearch/server/internal/database"
	"propsearch/server/internal/ingest"
	"propsearch/server/internal/processor"
	"propsearch/server/internal/queue"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin))
}

// run performs one import and returns the process exit code. It returns
// instead of exiting so the database and feed are always closed.
func run(args []string, stdin io.Reader) int {
	flags := flag.NewFlagSet("importer", flag.ContinueOnError)
	feedPath := flags.String("feed", "", "path of a feed document, or - for standard input")
	stream := flags.Bool("stream", false, "read a line-delimited message stream instead of a single document")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	if *feedPath == "" {
		logger.Error("Missing -feed")
		return 2
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Error("Failed to load configuration")
		return 1
	}
	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	db, err := database.NewDatabase(cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize database")
		return 1
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Error("Failed to run database migrations")
		return 1
	}

	input := stdin
	if *feedPath != "-" {
		f, err := os.Open(*feedPath)
		if err != nil {
			logger.WithError(err).Error("Failed to open feed")
			return 1
		}
		defer f.Close()
		input = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	importQueue := queue.NewImportQueue(cfg.BatchProcessing.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(db.GetDB(), importQueue, cfg, logger)
	batchProcessor.Start()

	importer := ingest.NewImporter(importQueue, cfg.BatchProcessing.MaxBatchSize, logger)
	var summary ingest.Summary
	if *stream {
		summary, err = importer.ImportStream(ctx, input)
	} else {
		summary, err = importer.ImportDocument(ctx, input)
	}

	if ctx.Err() != nil {
		batchProcessor.Abort()
	} else {
		batchProcessor.Stop()
	}
	stats := batchProcessor.Stats()

	fields := logrus.Fields{
		"properties":         summary.Properties,
		"periods":            summary.Periods,
		"dropped_properties": summary.DroppedProperties,
		"dropped_periods":    summary.DroppedPeriods,
		"batches_written":    stats.Batches,
		"batches_failed":     stats.Failed,
	}
	if err != nil {
		logger.WithFields(fields).WithError(err).Error("Import failed")
		return 1
	}
	if stats.Failed > 0 {
		logger.WithFields(fields).Error("Import finished with failed batches")
		return 1
	}
	logger.WithFields(fields).Info("Import finished")
	return 0
}
