package main

import (
	"fmt"
	"log/slog"

	"graphics_feed/internal/config"
	"graphics_feed/internal/fetch"
	"graphics_feed/internal/imagery"
	"graphics_feed/internal/pagination"
	"graphics_feed/internal/retry"
	"graphics_feed/internal/service"
	"graphics_feed/internal/source"
	"graphics_feed/internal/source/bloomberg"
	"graphics_feed/internal/source/nyt"
	"graphics_feed/internal/source/pudding"
	"graphics_feed/internal/source/reuters"
	"graphics_feed/internal/source/scmp"
	"graphics_feed/internal/source/wapo"
)

// buildSource creates the adapter for one outlet id from its config.
func buildSource(cfg *config.Config, id string, client *fetch.Client, browser *fetch.Browser, logger *slog.Logger) (service.Source, error) {
	oc, _ := cfg.Outlet(id)
	base, err := sourceConfig(oc)
	if err != nil {
		return nil, err
	}

	switch id {
	case config.OutletNYT:
		if base.Header == nil {
			return nil, fmt.Errorf("nyt requires headers_file")
		}
		strategy, err := imagery.ParseStrategy(cfg.Outlets.NYT.ImageStrategy)
		if err != nil {
			return nil, err
		}
		var locator imagery.Locator
		if strategy != imagery.StrategyTransform {
			pages := fetch.New(fetch.Config{
				Timeout:    cfg.HTTP.Timeout,
				UserAgents: cfg.HTTP.UserAgents,
				Retry:      retry.Fixed(1, 0),
			}, logger)
			policy := retry.Fixed(cfg.Backfill.MaxAttempts, cfg.Backfill.RetryDelay)
			locator = imagery.NewResolver(pages, id, imagery.PageHeader(base.Header), policy, logger)
		}
		return nyt.New(nyt.Config{
			Config:             base,
			CollectionID:       cfg.Outlets.NYT.CollectionID,
			PersistedQueryHash: cfg.Outlets.NYT.PersistedQueryHash,
			ExcludeURLs:        cfg.Outlets.NYT.ExcludeURLs,
			ImageStrategy:      strategy,
			Transform:          imagery.DefaultTransform,
			Concurrency:        cfg.Sync.Concurrency,
		}, client, locator, logger), nil

	case config.OutletReuters:
		var fetcher source.Fetcher = client
		if cfg.Outlets.Reuters.UseBrowser {
			fetcher = browser
		}
		return reuters.New(reuters.Config{
			Config:       base,
			CollectionID: cfg.Outlets.Reuters.CollectionID,
		}, fetcher, logger), nil

	case config.OutletBloomberg:
		return bloomberg.New(bloomberg.Config{
			Config:            base,
			PageID:            cfg.Outlets.Bloomberg.PageID,
			Endpoints:         cfg.Outlets.Bloomberg.Endpoints,
			PaginatedEndpoint: cfg.Outlets.Bloomberg.PaginatedEndpoint,
		}, client, logger), nil

	case config.OutletWaPo:
		authors, err := config.LoadAuthors(cfg.Outlets.WaPo.AuthorsFile)
		if err != nil {
			return nil, err
		}
		if len(authors) == 0 {
			return nil, fmt.Errorf("no authors in %s", cfg.Outlets.WaPo.AuthorsFile)
		}
		return wapo.New(wapo.Config{
			Config:  base,
			Authors: authors,
			From:    cfg.Outlets.WaPo.From,
		}, client, logger), nil

	case config.OutletSCMP:
		return scmp.New(base, client, logger), nil

	case config.OutletPudding:
		return pudding.New(base, client, logger), nil
	}

	return nil, fmt.Errorf("unknown outlet %q", id)
}

func sourceConfig(oc config.OutletConfig) (source.Config, error) {
	base := source.Config{
		BaseURL:  oc.BaseURL,
		PageSize: oc.PageSize,
		Paging: pagination.Options{
			PageDelay: oc.PageDelay,
			MaxPages:  oc.MaxPages,
		},
	}
	if oc.HeadersFile != "" {
		headers, err := config.LoadHeaders(oc.HeadersFile)
		if err != nil {
			return source.Config{}, err
		}
		base.Header = source.Header(headers)
	}
	return base, nil
}
