package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"trademe-scraper/config"
	"trademe-scraper/scraper/trademe"
	"trademe-scraper/services"
	"trademe-scraper/storage"
	"trademe-scraper/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLoggerWithLevel(utils.ParseLevel(cfg.LogLevel))
	runID := uuid.NewString()

	logger.Info("=== Trade Me Listing Scraper starting (run %s) ===", runID)
	logger.Info("Config — input: %s | output: %s/*.%s | api: %s | timeout: %s",
		cfg.InputFile, cfg.OutputDir, cfg.OutputFormat, cfg.APIBaseURL, cfg.HTTPTimeout)

	urls, err := utils.ReadURLs(cfg.InputFile)
	if err != nil {
		if errors.Is(err, utils.ErrInputNotFound) {
			logger.Error("Error: %s not found", cfg.InputFile)
			return
		}
		logger.Error("Failed to read input: %v", err)
		os.Exit(1)
	}
	if len(urls) == 0 {
		logger.Warn("No URLs found in %s", cfg.InputFile)
		return
	}

	fileWriter, err := storage.NewFileWriter(cfg.OutputFormat, cfg.OutputDir, logger)
	if err != nil {
		logger.Error("Failed to create output writer: %v", err)
		os.Exit(1)
	}
	writers := storage.MultiWriter{fileWriter}

	var pgWriter *storage.PostgresWriter
	if cfg.PostgresEnabled {
		pgWriter, err = storage.NewPostgresWriter(cfg.DSN(), runID)
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			os.Exit(1)
		}
		writers = append(writers, pgWriter)
	}
	defer writers.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := trademe.New(cfg, logger)
	pipeline := services.NewPipeline(client, writers, logger)
	results := pipeline.Run(ctx, urls)

	if pgWriter != nil {
		if n, err := pgWriter.CountRun(); err != nil {
			logger.Warn("Could not count stored rows: %v", err)
		} else {
			logger.Info("PostgreSQL now holds %d rows for run %s (table: listing_records)", n, runID)
		}
	}

	reportSvc := services.NewReportService(logger)
	reportSvc.Print(os.Stdout, reportSvc.Generate(runID, results))
}
