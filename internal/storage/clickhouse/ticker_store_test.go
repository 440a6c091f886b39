package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/storage"
)

func TestParseDSN(t *testing.T) {
	opts, err := parseDSN("clickhouse://user:pw@db.local/graphs?dial_timeout=3s")
	require.NoError(t, err)
	assert.Equal(t, []string{"db.local:9000"}, opts.Addr)
	assert.Equal(t, "user", opts.Auth.Username)
	assert.Equal(t, "pw", opts.Auth.Password)
	assert.Equal(t, "graphs", opts.Auth.Database)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)
	assert.Nil(t, opts.Compression)

	opts, err = parseDSN("tcp://a,b:9441/ticks?compress=lz4&read_timeout=1m&max_open_conns=4")
	require.NoError(t, err)
	assert.Equal(t, []string{"a:9000", "b:9441"}, opts.Addr)
	require.NotNil(t, opts.Compression)
	assert.Equal(t, clickhouse.CompressionLZ4, opts.Compression.Method)
	assert.Equal(t, time.Minute, opts.ReadTimeout)
	assert.Equal(t, 4, opts.MaxOpenConns)

	for _, bad := range []string{
		"postgres://localhost/x",
		"clickhouse:///x",
		"clickhouse://h/x?compress=gzip",
		"clickhouse://h/x?max_open_conns=0",
		"clickhouse://h/x?dial_timeout=soon",
	} {
		_, err := parseDSN(bad)
		assert.Error(t, err, bad)
	}
}

func TestTickerStore(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTickerStore(conn)
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	points := []*domain.TickerPoint{
		{Exchange: "bitstamp", Pair: "usdbtc", Bid: 100, Ask: 101, Volume: 5, CreatedAt: t0},
		{Exchange: "bitstamp", Pair: "usdbtc", Bid: 102, Ask: 103, Volume: 6, CreatedAt: t0.Add(time.Hour)},
		{Exchange: "bitstamp", Pair: "usdltc", Bid: 1, Ask: 2, Volume: 1, CreatedAt: t0},
	}
	require.NoError(t, store.InsertBulk(ctx, points))

	t.Run("duplicate against stored rows", func(t *testing.T) {
		err := store.InsertBulk(ctx, points[:1])
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	})

	t.Run("duplicate within batch", func(t *testing.T) {
		p := &domain.TickerPoint{Exchange: "x", Pair: "y", CreatedAt: t0}
		err := store.InsertBulk(ctx, []*domain.TickerPoint{p, p})
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	})

	t.Run("get since", func(t *testing.T) {
		got, err := store.GetSince(ctx, "bitstamp", "usdbtc", t0)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 100.0, got[0].Bid)
		assert.True(t, got[1].CreatedAt.Equal(t0.Add(time.Hour)))

		got, err = store.GetSince(ctx, "bitstamp", "usdbtc", t0.Add(time.Minute))
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}
