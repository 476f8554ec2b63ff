package main

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/tmansmann0/capsim-ml/internal/courier"
	"github.com/tmansmann0/capsim-ml/internal/fetcher"
	"github.com/tmansmann0/capsim-ml/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	return st, nil
}

func initExtractor() (*courier.Extractor, error) {
	strategy, err := courier.ParseStrategy(cfg.Extract.Strategy)
	if err != nil {
		return nil, err
	}
	aliases, err := courier.LoadAliases(cfg.Extract.AliasesPath)
	if err != nil {
		return nil, eris.Wrap(err, "load header aliases")
	}
	return courier.New(courier.Options{
		Strategy: strategy,
		Workers:  cfg.Extract.Workers,
		Aliases:  aliases,
	}), nil
}

func initLoader(sheet string) *fetcher.Loader {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
		Rate:       rate.Limit(cfg.Fetch.RateLimit),
	})
	return fetcher.NewLoader(f, os.Stdin, fetcher.XLSXOptions{SheetName: sheet})
}
