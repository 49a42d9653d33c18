package market

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"trading-desk/internal/storage"
)

// HistoryOracle answers average-price queries from recorded price
// history.
type HistoryOracle struct {
	store storage.PriceHistoryStore
}

// NewHistoryOracle creates an oracle backed by a price history store.
func NewHistoryOracle(store storage.PriceHistoryStore) *HistoryOracle {
	return &HistoryOracle{store: store}
}

// AveragePrice returns the mean recorded price over the window.
func (o *HistoryOracle) AveragePrice(ctx context.Context, asset string, start, end time.Time) (float64, error) {
	return o.store.AveragePrice(ctx, asset, start.UnixMilli(), end.UnixMilli())
}

// SimulatedOracle approximates a historical average from the current
// cached price with bounded noise, for running without a history
// backend. The jitter stays within ±5% of the reference price.
type SimulatedOracle struct {
	cache *Cache

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedOracle creates a simulated oracle. The seed makes the
// jitter reproducible.
func NewSimulatedOracle(cache *Cache, seed int64) *SimulatedOracle {
	return &SimulatedOracle{
		cache: cache,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// AveragePrice returns the cached price perturbed by up to ±5%.
func (o *SimulatedOracle) AveragePrice(_ context.Context, asset string, _, _ time.Time) (float64, error) {
	base, err := o.cache.Get(asset)
	if err != nil {
		return 0, err
	}

	o.mu.Lock()
	jitter := (o.rng.Float64() - 0.5) * 0.1
	o.mu.Unlock()

	return base * (1 + jitter), nil
}
