package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"portfolio-graphs/internal/api"
	"portfolio-graphs/internal/cache"
)

type serveCmd struct {
	common     commonFlags
	listenAddr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve graphs over HTTP" }
func (*serveCmd) Usage() string {
	return `graphs serve [-listen <addr>] [-use-memory] [-postgres-dsn <dsn>] [-clickhouse-dsn <dsn>]

  Serves GET /graph/{graph_type}, /health and /metrics, and purges expired
  cache entries every GRAPHS_CACHE_PURGE_INTERVAL.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	c.common.register(f)
	f.StringVar(&c.listenAddr, "listen", "", "HTTP listen address (overrides GRAPHS_LISTEN_ADDR)")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.common.load()
	if err != nil {
		return fail("%v", err)
	}
	if c.listenAddr != "" {
		cfg.ListenAddr = c.listenAddr
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stores, cleanup, err := createStores(ctx, cfg)
	if err != nil {
		return fail("create stores: %v", err)
	}
	defer cleanup()

	orch, graphCache, err := newOrchestrator(cfg, stores)
	if err != nil {
		return fail("%v", err)
	}

	slog.Info("graphs config loaded",
		"listen_addr", cfg.ListenAddr,
		"use_memory", cfg.UseMemory,
		"cache_backend", cfg.CacheBackend,
		"cache_ttl", cfg.CacheTTL,
		"permitted_days", cfg.PermittedDays,
		"debug", cfg.Debug,
	)

	go runPurgeLoop(ctx, graphCache, cfg.CacheTTL, cfg.CachePurgeInterval)

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: api.NewServer(orch), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("graphs listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		return fail("server failed: %v", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// runPurgeLoop deletes entries older than ttl every interval until ctx is done.
func runPurgeLoop(ctx context.Context, c *cache.Cache, ttl, interval time.Duration) {
	if ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := c.Purge(ctx, ttl)
			if err != nil {
				slog.Warn("cache purge failed", "error", err)
				continue
			}
			slog.Debug("cache purged", "removed", removed)
		}
	}
}
