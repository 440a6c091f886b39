package domain

import "time"

// Account is an exchange account or address a user tracks.
type Account struct {
	ID        int64
	UserID    int64
	Exchange  string // e.g. "bitstamp", "blockchain"
	Label     string
	CreatedAt time.Time
}

// BalancePoint is one fetched balance of an account currency.
// Corresponds to the balances table.
type BalancePoint struct {
	UserID    int64
	Exchange  string
	Currency  string // e.g. "btc", "usd"
	Balance   float64
	CreatedAt time.Time
}

// SummaryInstance marks a summary type a user has enabled (e.g. "totalbtc", "crypto2usd").
type SummaryInstance struct {
	UserID      int64
	SummaryType string
	CreatedAt   time.Time
}

// SummaryPoint is one computed converted total for a summary type.
type SummaryPoint struct {
	UserID      int64
	SummaryType string
	Balance     float64
	CreatedAt   time.Time
}

// TickerPoint is one exchange quote for a currency pair.
// Corresponds to the ticker_timeseries table in ClickHouse.
type TickerPoint struct {
	Exchange  string
	Pair      string // e.g. "usdbtc"
	Bid       float64
	Ask       float64
	Volume    float64
	CreatedAt time.Time
}

// DailyCount is a per-day counter value.
type DailyCount struct {
	Day   time.Time
	Count int64
}

// CacheEntry is one serialized render result. Entries are written whole and never patched.
type CacheEntry struct {
	Namespace string
	Hash      string
	Data      []byte
	CreatedAt time.Time
}
