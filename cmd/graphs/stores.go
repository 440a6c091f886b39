package main

import (
	"context"
	"fmt"
	"log/slog"

	"portfolio-graphs/internal/cache"
	"portfolio-graphs/internal/config"
	"portfolio-graphs/internal/identity"
	"portfolio-graphs/internal/orchestrator"
	"portfolio-graphs/internal/renderer"
	"portfolio-graphs/internal/storage"
	chstore "portfolio-graphs/internal/storage/clickhouse"
	"portfolio-graphs/internal/storage/memory"
	pgstore "portfolio-graphs/internal/storage/postgres"
	"portfolio-graphs/internal/storage/sqlite"
)

// allStores holds all storage implementations.
type allStores struct {
	userStore       storage.UserStore
	accountStore    storage.AccountStore
	balanceStore    storage.BalanceStore
	summaryStore    storage.SummaryStore
	tickerStore     storage.TickerStore // nil without ClickHouse
	graphCacheStore storage.GraphCacheStore
}

func createStores(ctx context.Context, cfg *config.Config) (*allStores, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	stores := &allStores{}
	var pool *pgstore.Pool
	if cfg.UseMemory {
		stores.userStore = memory.NewUserStore()
		stores.accountStore = memory.NewAccountStore()
		stores.balanceStore = memory.NewBalanceStore()
		stores.summaryStore = memory.NewSummaryStore()
		stores.tickerStore = memory.NewTickerStore()
	} else {
		var err error
		pool, err = pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)

		stores.userStore = pgstore.NewUserStore(pool)
		stores.accountStore = pgstore.NewAccountStore(pool)
		stores.balanceStore = pgstore.NewBalanceStore(pool)
		stores.summaryStore = pgstore.NewSummaryStore(pool)

		if cfg.ClickhouseDSN != "" {
			chConn, err := chstore.NewConn(ctx, cfg.ClickhouseDSN)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
			}
			closers = append(closers, func() { _ = chConn.Close() })
			stores.tickerStore = chstore.NewTickerStore(chConn)
		} else {
			slog.Warn("CLICKHOUSE_DSN not set, ticker graphs are disabled")
		}
	}

	switch cfg.CacheBackend {
	case config.CacheBackendPostgres:
		if pool == nil {
			var err error
			pool, err = pgstore.NewPool(ctx, cfg.PostgresDSN)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("connect to postgres: %w", err)
			}
			closers = append(closers, pool.Close)
		}
		stores.graphCacheStore = pgstore.NewGraphCacheStore(pool)
	case config.CacheBackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })
		stores.graphCacheStore = sqlite.NewGraphCacheStore(db)
	default:
		stores.graphCacheStore = memory.NewGraphCacheStore()
	}

	return stores, cleanup, nil
}

// newOrchestrator wires the render pipeline on top of the stores.
func newOrchestrator(cfg *config.Config, stores *allStores) (*orchestrator.Orchestrator, *cache.Cache, error) {
	hasher, err := identity.NewHasher(cfg.AuthSecret)
	if err != nil {
		return nil, nil, err
	}

	registry := renderer.NewDefaultRegistry(renderer.Deps{
		Users:     stores.userStore,
		Accounts:  stores.accountStore,
		Balances:  stores.balanceStore,
		Summaries: stores.summaryStore,
		Tickers:   stores.tickerStore,
	})
	graphCache := cache.New(cache.Options{Store: stores.graphCacheStore, Logger: slog.Default()})

	orch := orchestrator.New(orchestrator.Options{
		Registry:         registry,
		Users:            identity.NewDirectory(stores.userStore),
		Hasher:           hasher,
		Cache:            graphCache,
		PermittedDays:    cfg.PermittedDays,
		SiteName:         cfg.SiteName,
		Debug:            cfg.Debug,
		TimeDecimals:     cfg.TimeDecimals(),
		DropFirstRow:     cfg.DeltaDropFirstRow,
		AddAccountsURL:   cfg.AddAccountsURL,
		AddCurrenciesURL: cfg.AddCurrenciesURL,
		CacheTTL:         cfg.CacheTTL,
		Logger:           slog.Default(),
	})
	return orch, graphCache, nil
}
