// Package config loads service configuration from the environment and an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Cache backends
const (
	CacheBackendMemory   = "memory"
	CacheBackendPostgres = "postgres"
	CacheBackendSQLite   = "sqlite"
)

// Config holds all configuration for the graph service.
type Config struct {
	// HTTP
	ListenAddr string

	// Rendering
	SiteName          string
	PermittedDays     []int
	DeltaDropFirstRow bool
	Debug             bool

	// Call-to-action links of no-data results
	AddAccountsURL   string
	AddCurrenciesURL string

	// Cache
	CacheTTL           time.Duration
	CacheBackend       string
	CachePurgeInterval time.Duration
	SQLitePath         string

	// Storage
	PostgresDSN   string
	ClickhouseDSN string
	UseMemory     bool

	// Identity
	AuthSecret string

	// Logging
	LogLevel string
	LogFile  string
}

// DefaultPermittedDays are the day windows a request may ask for besides the max sentinel.
var DefaultPermittedDays = []int{7, 14, 30, 45, 60, 90, 180}

// Load reads configuration from environment variables and optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	days, err := getEnvIntListOrDefault("GRAPHS_PERMITTED_DAYS", DefaultPermittedDays)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ListenAddr:         getEnvOrDefault("GRAPHS_LISTEN_ADDR", ":8080"),
		SiteName:           getEnvOrDefault("GRAPHS_SITE_NAME", "Portfolio Graphs"),
		PermittedDays:      days,
		DeltaDropFirstRow:  getEnvBoolOrDefault("GRAPHS_DELTA_DROP_FIRST_ROW", true),
		Debug:              getEnvBoolOrDefault("GRAPHS_DEBUG", false),
		AddAccountsURL:     getEnvOrDefault("GRAPHS_ADD_ACCOUNTS_URL", "/wizard/accounts"),
		AddCurrenciesURL:   getEnvOrDefault("GRAPHS_ADD_CURRENCIES_URL", "/wizard/currencies"),
		CacheTTL:           getEnvDurationOrDefault("GRAPHS_CACHE_TTL", time.Hour),
		CacheBackend:       getEnvOrDefault("GRAPHS_CACHE_BACKEND", CacheBackendMemory),
		CachePurgeInterval: getEnvDurationOrDefault("GRAPHS_CACHE_PURGE_INTERVAL", 15*time.Minute),
		SQLitePath:         getEnvOrDefault("GRAPHS_SQLITE_PATH", "./graph_cache.db"),
		PostgresDSN:        os.Getenv("POSTGRES_DSN"),
		ClickhouseDSN:      os.Getenv("CLICKHOUSE_DSN"),
		UseMemory:          getEnvBoolOrDefault("GRAPHS_USE_MEMORY", false),
		AuthSecret:         os.Getenv("GRAPHS_AUTH_SECRET"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:            os.Getenv("LOG_FILE"),
	}

	return cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if len(c.PermittedDays) == 0 {
		return fmt.Errorf("GRAPHS_PERMITTED_DAYS is empty")
	}
	for _, d := range c.PermittedDays {
		if d <= 0 {
			return fmt.Errorf("GRAPHS_PERMITTED_DAYS: day window must be positive, got %d", d)
		}
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("GRAPHS_CACHE_TTL must not be negative")
	}
	switch c.CacheBackend {
	case CacheBackendMemory, CacheBackendSQLite:
	case CacheBackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("GRAPHS_CACHE_BACKEND=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown GRAPHS_CACHE_BACKEND %q", c.CacheBackend)
	}
	if !c.UseMemory && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required unless GRAPHS_USE_MEMORY is set")
	}
	if c.AuthSecret == "" {
		return fmt.Errorf("GRAPHS_AUTH_SECRET is required")
	}
	return nil
}

// TimeDecimals is the number of decimals of the elapsed-time field of results.
func (c *Config) TimeDecimals() int32 {
	if c.Debug {
		return 4
	}
	return 2
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		// bare numbers are seconds
		if s, err := strconv.Atoi(val); err == nil {
			return time.Duration(s) * time.Second
		}
	}
	return defaultVal
}

// getEnvIntListOrDefault parses a comma-separated list of integers, sorted ascending.
func getEnvIntListOrDefault(key string, defaultVal []int) ([]int, error) {
	val := os.Getenv(key)
	if val == "" {
		return append([]int(nil), defaultVal...), nil
	}
	var out []int
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", key, err)
		}
		out = append(out, i)
	}
	sort.Ints(out)
	return out, nil
}
