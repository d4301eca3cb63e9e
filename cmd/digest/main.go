// Package main is the entrypoint for the digest job.
//
// The job runs once per invocation under an external scheduler (cron,
// EventBridge): load configuration, open the article store, fetch the
// feed, persist the unseen articles, and, if any were new, render and
// email the digest. It is single-threaded and has no internal
// scheduling, retries, or overlapping-run coordination.
//
// This file handles dependency wiring; the run logic lives in
// internal/pipeline.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"arsdigest/internal/config"
	"arsdigest/internal/delivery"
	"arsdigest/internal/digest"
	"arsdigest/internal/feed"
	"arsdigest/internal/pipeline"
	"arsdigest/internal/store"
	"arsdigest/internal/types"
)

func main() {
	os.Exit(run())
}

// run performs the whole invocation and returns the process exit code.
// Only configuration and storage failures exit non-zero: a failed fetch
// or a failed send is logged and the process still exits 0, so a
// scheduler never sees delivery problems as job failures.
func run() int {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// In non-local environments credentials may live in SSM Parameter
	// Store, referenced via *_SSM_PARAM pointer variables.
	cfg, err := config.Load(config.NewSSMProvider(os.Getenv("AWS_REGION")))
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		return 1
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	articles, err := store.Open(cfg.Store.Path)
	if err != nil {
		logger.Error("failed to open article store",
			"path", cfg.Store.Path,
			"error", err,
		)
		return 1
	}
	defer articles.Close()

	renderer, err := digest.NewRenderer()
	if err != nil {
		logger.Error("failed to initialize digest renderer", "error", err)
		return 1
	}

	httpClient := &http.Client{Timeout: cfg.Feed.HTTPTimeout}

	// Backend selection happens once here. A missing credential is not
	// fatal: the run still fetches and records articles, and the
	// dispatcher logs a configuration error instead of sending.
	provider, err := delivery.NewProviderFromConfig(ctx, cfg.Email, httpClient, logger)
	if err != nil {
		logger.Error("email delivery unavailable", "error", err)
	}

	dispatcher := delivery.NewDispatcher(delivery.DispatcherConfig{
		Provider:  provider,
		Recipient: cfg.Email.Recipient,
		FromAddr:  cfg.Email.FromAddr,
		FromName:  cfg.Email.FromName,
		Subject:   cfg.Email.Subject,
		Logger:    logger,
	})

	runner := pipeline.NewRunner(pipeline.RunnerConfig{
		FeedURL:    cfg.Feed.URL,
		Source:     feed.NewFetcher(httpClient, logger),
		Store:      articles,
		Renderer:   renderer,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	report, err := runner.Run(ctx)
	if err != nil {
		// Fetch and render failures end the run with nothing sent, but
		// are not job failures from the scheduler's point of view. A
		// storage failure mid-run is: durable state is in question.
		logger.Error("digest run aborted", "error", err)
		if types.CodeOf(err) == types.ErrCodeStorageUnavailable {
			return 1
		}
		return 0
	}

	logger.Info("digest run finished",
		"fetched", report.Fetched,
		"new", report.New,
		"delivered", report.Delivered,
	)
	return 0
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
