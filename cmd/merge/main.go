package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"graphics_feed/internal/config"
	"graphics_feed/internal/rss"
	"graphics_feed/internal/service"
	"graphics_feed/internal/storage/jsonfile"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	rssOutput := flag.String("rss", "", "also write an RSS document to this path (overrides aggregate.rss_output)")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	if *rssOutput != "" {
		cfg.Aggregate.RSSOutput = *rssOutput
	}

	feeds := make([]service.FeedInput, 0, len(cfg.Aggregate.Feeds))
	for _, f := range cfg.Aggregate.Feeds {
		feeds = append(feeds, service.FeedInput{Medium: f.Medium, Store: jsonfile.NewStore(f.Path)})
	}

	svc := service.NewAggregateService(feeds, jsonfile.NewStore(cfg.Aggregate.Output), cfg.Aggregate.Window, logger)
	if cfg.Aggregate.RSSOutput != "" {
		svc = svc.WithRSS(jsonfile.NewTextFile(cfg.Aggregate.RSSOutput), rss.Channel{
			Title:       cfg.Aggregate.Channel.Title,
			Link:        cfg.Aggregate.Channel.Link,
			Description: cfg.Aggregate.Channel.Description,
			Author:      cfg.Aggregate.Channel.Author,
		})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	articles, err := svc.Run(ctx)
	if err != nil {
		logger.Error("aggregation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("aggregated feed written",
		"articles", len(articles),
		"window", cfg.Aggregate.Window,
		"output", cfg.Aggregate.Output,
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
