package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"graphics_feed/internal/config"
	"graphics_feed/internal/fetch"
	"graphics_feed/internal/imagery"
	"graphics_feed/internal/retry"
	"graphics_feed/internal/service"
	"graphics_feed/internal/source"
	"graphics_feed/internal/storage/jsonfile"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	outlet := flag.String("outlet", "", "outlet whose store is backfilled (defaults to backfill.outlet)")
	strategyName := flag.String("strategy", "", "transform, fetch or transform_fetch (defaults to backfill.strategy)")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	if *outlet == "" {
		*outlet = cfg.Backfill.Outlet
	}
	if *strategyName == "" {
		*strategyName = cfg.Backfill.Strategy
	}

	reportPath := cfg.Backfill.ReportPath(*outlet)

	oc, ok := cfg.Outlet(*outlet)
	if !ok {
		logger.Error("unknown outlet", "outlet", *outlet)
		os.Exit(1)
	}

	strategy, err := imagery.ParseStrategy(*strategyName)
	if err != nil {
		logger.Error("invalid strategy", "error", err)
		os.Exit(1)
	}

	var locator imagery.Locator
	if strategy != imagery.StrategyTransform {
		var header http.Header
		if oc.HeadersFile != "" {
			headers, err := config.LoadHeaders(oc.HeadersFile)
			if err != nil {
				logger.Error("failed to load headers", "outlet", *outlet, "error", err)
				os.Exit(1)
			}
			header = source.Header(headers)
		}

		client := fetch.New(fetch.Config{
			Timeout:    cfg.HTTP.Timeout,
			UserAgents: cfg.HTTP.UserAgents,
			// the resolver owns the retries so every attempt gets a new identity
			Retry: retry.Fixed(1, 0),
		}, logger)
		policy := retry.Fixed(cfg.Backfill.MaxAttempts, cfg.Backfill.RetryDelay)
		locator = imagery.NewResolver(client, *outlet, imagery.PageHeader(header), policy, logger)
	}

	worker := imagery.NewWorker(strategy, imagery.DefaultTransform, locator, cfg.Backfill.ArticleDelay, logger)

	svc := service.NewBackfillService(
		jsonfile.NewStore(oc.Output),
		worker,
		jsonfile.NewTextFile(reportPath),
		logger,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting image backfill",
		"outlet", *outlet,
		"strategy", strategy,
		"store", oc.Output,
	)

	report, err := svc.Run(ctx)
	if err != nil {
		logger.Error("backfill failed", "error", err)
		os.Exit(1)
	}

	logger.Info("backfill complete",
		"missing", report.Missing,
		"patched", report.Patched,
		"unresolved", len(report.Unresolved),
		"report", reportPath,
	)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}
