package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"portfolio-graphs/internal/cache"
)

type purgeCmd struct {
	common commonFlags
	maxAge time.Duration
}

func (*purgeCmd) Name() string     { return "purge" }
func (*purgeCmd) Synopsis() string { return "delete expired graph cache entries" }
func (*purgeCmd) Usage() string {
	return `graphs purge [-max-age <duration>] [-cache-backend postgres|sqlite]

  Deletes cache entries older than -max-age (default GRAPHS_CACHE_TTL).
`
}

func (c *purgeCmd) SetFlags(f *flag.FlagSet) {
	c.common.register(f)
	f.DurationVar(&c.maxAge, "max-age", 0, "Delete entries older than this (defaults to the cache TTL)")
}

func (c *purgeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.common.load()
	if err != nil {
		return fail("%v", err)
	}
	maxAge := c.maxAge
	if maxAge == 0 {
		maxAge = cfg.CacheTTL
	}
	if maxAge <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -max-age must be positive when caching is disabled.")
		return subcommands.ExitUsageError
	}

	stores, cleanup, err := createStores(ctx, cfg)
	if err != nil {
		return fail("create stores: %v", err)
	}
	defer cleanup()

	removed, err := cache.New(cache.Options{Store: stores.graphCacheStore}).Purge(ctx, maxAge)
	if err != nil {
		return fail("purge: %v", err)
	}
	fmt.Printf("Removed %d cache entries older than %s\n", removed, maxAge)
	return subcommands.ExitSuccess
}
