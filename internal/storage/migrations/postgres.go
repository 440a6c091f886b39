package migrations

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"portfolio-graphs/internal/storage/postgres"
)

// RunPostgresMigrations applies every embedded SQL file that has not been recorded in
// schema_migrations yet, each in its own transaction.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	files, err := readMigrations(PostgresFS, "postgres")
	if err != nil {
		return err
	}

	for _, f := range files {
		var applied bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, f.Name,
		).Scan(&applied)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", f.Name, err)
		}
		if applied {
			continue
		}

		err = pool.InTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, f.SQL); err != nil {
				return fmt.Errorf("apply migration %s: %w", f.Name, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, f.Name); err != nil {
				return fmt.Errorf("record migration %s: %w", f.Name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		log.Info("applied migration", "db", "postgres", "file", f.Name)
	}

	return nil
}
