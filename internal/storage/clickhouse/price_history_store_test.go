package clickhouse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-desk/internal/domain"
	"trading-desk/internal/storage"
	chstore "trading-desk/internal/storage/clickhouse"
)

func TestPriceHistoryStore_InsertBulk(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewPriceHistoryStore(conn)
	ctx := context.Background()

	// Empty batch is a no-op.
	require.NoError(t, store.InsertBulk(ctx, nil))

	ticks := []*domain.PriceTick{
		{Asset: "BTC", Price: 65000, TimestampMs: 1_000, Source: domain.TickSourcePoller},
		{Asset: "BTC", Price: 66000, TimestampMs: 2_000, Source: domain.TickSourceStream},
		{Asset: "ETH", Price: 3500, TimestampMs: 1_500, Source: domain.TickSourcePoller},
	}
	require.NoError(t, store.InsertBulk(ctx, ticks))

	latest, err := store.Latest(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, "BTC", latest.Asset)
	assert.Equal(t, 66000.0, latest.Price)
	assert.Equal(t, int64(2_000), latest.TimestampMs)
	assert.Equal(t, domain.TickSourceStream, latest.Source)
}

func TestPriceHistoryStore_InsertBulkInvalidTick(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewPriceHistoryStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.PriceTick{
		{Asset: "", Price: 1, TimestampMs: 1_000, Source: domain.TickSourcePoller},
	})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestPriceHistoryStore_AveragePrice(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewPriceHistoryStore(conn)
	ctx := context.Background()

	ticks := []*domain.PriceTick{
		{Asset: "SOL", Price: 140, TimestampMs: 1_000, Source: domain.TickSourcePoller},
		{Asset: "SOL", Price: 160, TimestampMs: 2_000, Source: domain.TickSourcePoller},
		// Outside the queried window.
		{Asset: "SOL", Price: 900, TimestampMs: 9_000, Source: domain.TickSourcePoller},
		// Different asset inside the window.
		{Asset: "BTC", Price: 65000, TimestampMs: 1_500, Source: domain.TickSourcePoller},
	}
	require.NoError(t, store.InsertBulk(ctx, ticks))

	avg, err := store.AveragePrice(ctx, "SOL", 1_000, 2_000)
	require.NoError(t, err)
	assert.InDelta(t, 150.0, avg, 1e-9)
}

func TestPriceHistoryStore_AveragePriceEmptyWindow(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewPriceHistoryStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.PriceTick{
		{Asset: "SOL", Price: 140, TimestampMs: 1_000, Source: domain.TickSourcePoller},
	}))

	_, err := store.AveragePrice(ctx, "SOL", 5_000, 6_000)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.Latest(ctx, "DOGE")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
