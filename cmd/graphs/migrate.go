package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/google/subcommands"

	"portfolio-graphs/internal/config"
	"portfolio-graphs/internal/storage/migrations"
	pgstore "portfolio-graphs/internal/storage/postgres"
	"portfolio-graphs/internal/storage/sqlite"
)

type migrateCmd struct {
	common commonFlags
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply the embedded database migrations" }
func (*migrateCmd) Usage() string {
	return `graphs migrate [-postgres-dsn <dsn>] [-clickhouse-dsn <dsn>] [-cache-backend sqlite -sqlite-path <file>]

  Applies the PostgreSQL migrations, the ClickHouse migrations when a
  ClickHouse DSN is configured, and the SQLite cache schema when the
  sqlite cache backend is selected.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) {
	c.common.register(f)
}

func (c *migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.common.load()
	if err != nil {
		return fail("%v", err)
	}
	if cfg.UseMemory {
		return fail("nothing to migrate with in-memory storage")
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return fail("connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := migrations.RunPostgresMigrations(ctx, pool, slog.Default()); err != nil {
		return fail("postgres migrations: %v", err)
	}
	slog.Info("postgres migrations applied")

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN, slog.Default())
		if err != nil {
			return fail("clickhouse migrations: %v", err)
		}
		_ = conn.Close()
		slog.Info("clickhouse migrations applied")
	}

	if cfg.CacheBackend == config.CacheBackendSQLite {
		// Open applies the schema
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return fail("sqlite migrations: %v", err)
		}
		_ = db.Close()
		slog.Info("sqlite migrations applied", "path", cfg.SQLitePath)
	}

	return subcommands.ExitSuccess
}
