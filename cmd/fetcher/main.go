package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"graphics_feed/internal/config"
	"graphics_feed/internal/feed"
	"graphics_feed/internal/fetch"
	"graphics_feed/internal/publisher"
	"graphics_feed/internal/rss"
	"graphics_feed/internal/scheduler"
	"graphics_feed/internal/service"
	"graphics_feed/internal/storage/jsonfile"
	"graphics_feed/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	outlet := flag.String("outlet", "", "sync a single outlet instead of every enabled one")
	watch := flag.Bool("watch", false, "keep running and sync on the configured interval")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	ids := cfg.EnabledOutlets()
	if *outlet != "" {
		if _, ok := cfg.Outlet(*outlet); !ok {
			logger.Error("unknown outlet", "outlet", *outlet)
			os.Exit(1)
		}
		ids = []string{*outlet}
	}
	if len(ids) == 0 {
		logger.Error("no outlets enabled")
		os.Exit(1)
	}

	client := fetch.New(fetch.Config{
		Timeout:    cfg.HTTP.Timeout,
		UserAgents: cfg.HTTP.UserAgents,
		Retry:      cfg.HTTP.Retry.Policy(),
	}, logger)

	browser := fetch.NewBrowser(fetch.BrowserConfig{
		Bin:        cfg.Browser.Bin,
		Headless:   cfg.Browser.Headless,
		Timeout:    cfg.Browser.Timeout,
		UserAgents: cfg.HTTP.UserAgents,
		Retry:      cfg.HTTP.Retry.Policy(),
	}, logger)
	defer browser.Close()

	var archive *service.Archive
	if cfg.Database.Enabled {
		db, err := sqlx.Connect("postgres", cfg.Database.DSN())
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		logger.Info("connected to database")

		archive = &service.Archive{
			Graphics:  postgres.NewGraphicStore(db),
			Credits:   postgres.NewCreditStore(db),
			SyncState: postgres.NewSyncStateStore(db),
			TxManager: postgres.NewTransactionManager(db),
		}
	}

	var pub service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	syncers := make([]*service.SyncService, 0, len(ids))
	for _, id := range ids {
		src, err := buildSource(cfg, id, client, browser, logger)
		if err != nil {
			logger.Error("failed to set up outlet", "outlet", id, "error", err)
			os.Exit(1)
		}

		oc, _ := cfg.Outlet(id)
		precedence, err := feed.ParsePrecedence(oc.MergePrecedence)
		if err != nil {
			logger.Error("invalid merge precedence", "outlet", id, "error", err)
			os.Exit(1)
		}

		syncers = append(syncers, service.NewSyncService(
			src,
			jsonfile.NewStore(oc.Output),
			archive,
			pub,
			precedence,
			logger,
		))
	}

	runner := service.NewRunner(syncers, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if !*watch {
		if err := runner.Run(ctx); err != nil {
			logger.Error("sync finished with errors", "error", err)
			os.Exit(1)
		}
		return
	}

	aggregate := newAggregate(cfg, logger)
	job := scheduler.JobFunc(func(ctx context.Context) error {
		syncErr := runner.Run(ctx)
		_, aggErr := aggregate.Run(ctx)
		return errors.Join(syncErr, aggErr)
	})

	logger.Info("starting graphics fetcher",
		"outlets", ids,
		"interval", cfg.Sync.Interval,
		"database", cfg.Database.Enabled,
		"rabbitmq", cfg.RabbitMQ.Enabled,
	)

	sched := scheduler.NewScheduler(job, cfg.Sync.Interval, 0, logger)
	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func newAggregate(cfg *config.Config, logger *slog.Logger) *service.AggregateService {
	feeds := make([]service.FeedInput, 0, len(cfg.Aggregate.Feeds))
	for _, f := range cfg.Aggregate.Feeds {
		feeds = append(feeds, service.FeedInput{Medium: f.Medium, Store: jsonfile.NewStore(f.Path)})
	}

	agg := service.NewAggregateService(feeds, jsonfile.NewStore(cfg.Aggregate.Output), cfg.Aggregate.Window, logger)
	if cfg.Aggregate.RSSOutput != "" {
		agg = agg.WithRSS(jsonfile.NewTextFile(cfg.Aggregate.RSSOutput), rss.Channel{
			Title:       cfg.Aggregate.Channel.Title,
			Link:        cfg.Aggregate.Channel.Link,
			Description: cfg.Aggregate.Channel.Description,
			Author:      cfg.Aggregate.Channel.Author,
		})
	}
	return agg
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

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
