// Command graphs serves and renders portfolio graphs.
//
//	graphs serve    run the HTTP API and the periodic cache purge
//	graphs render   render one graph to stdout
//	graphs migrate  apply the embedded database migrations
//	graphs purge    delete expired cache entries
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/subcommands"
	"gopkg.in/natefinch/lumberjack.v2"

	"portfolio-graphs/internal/config"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, "graphs")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&serveCmd{}, "")
	commander.Register(&renderCmd{}, "")
	commander.Register(&migrateCmd{}, "")
	commander.Register(&purgeCmd{}, "")
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// commonFlags override the environment configuration for every subcommand.
type commonFlags struct {
	postgresDSN   string
	clickhouseDSN string
	useMemory     bool
	cacheBackend  string
	sqlitePath    string
	logLevel      string
}

func (c *commonFlags) register(f *flag.FlagSet) {
	f.StringVar(&c.postgresDSN, "postgres-dsn", "", "PostgreSQL connection string (overrides POSTGRES_DSN)")
	f.StringVar(&c.clickhouseDSN, "clickhouse-dsn", "", "ClickHouse connection string (overrides CLICKHOUSE_DSN)")
	f.BoolVar(&c.useMemory, "use-memory", false, "Use in-memory storage instead of PostgreSQL")
	f.StringVar(&c.cacheBackend, "cache-backend", "", "Graph cache backend: memory, postgres or sqlite")
	f.StringVar(&c.sqlitePath, "sqlite-path", "", "SQLite graph cache file")
	f.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn or error")
}

// load reads the configuration, applies the flags and installs the logger.
func (c *commonFlags) load() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.postgresDSN != "" {
		cfg.PostgresDSN = c.postgresDSN
	}
	if c.clickhouseDSN != "" {
		cfg.ClickhouseDSN = c.clickhouseDSN
	}
	if c.useMemory {
		cfg.UseMemory = true
	}
	if c.cacheBackend != "" {
		cfg.CacheBackend = c.cacheBackend
	}
	if c.sqlitePath != "" {
		cfg.SQLitePath = c.sqlitePath
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("logger setup: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger writes text logs to stdout and, when filename is set, to a rotated file.
func setupLogger(level, filename string) error {
	var slogLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if filename != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    25,
			MaxBackups: 10,
			MaxAge:     14,
			Compress:   true,
		})
	}

	h := slog.NewTextHandler(out, &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}

func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}
