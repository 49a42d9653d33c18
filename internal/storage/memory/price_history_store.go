package memory

import (
	"context"
	"sync"

	"trading-desk/internal/domain"
	"trading-desk/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of
// storage.PriceHistoryStore. Ticks are kept per asset in arrival order.
type PriceHistoryStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.PriceTick // keyed by asset
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{
		data: make(map[string][]*domain.PriceTick),
	}
}

// InsertBulk adds multiple price ticks.
func (s *PriceHistoryStore) InsertBulk(_ context.Context, ticks []*domain.PriceTick) error {
	if len(ticks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tick := range ticks {
		if tick == nil || tick.Asset == "" {
			return storage.ErrInvalidInput
		}
		copy := *tick
		s.data[tick.Asset] = append(s.data[tick.Asset], &copy)
	}
	return nil
}

// AveragePrice returns the mean price over [startMs, endMs] inclusive.
func (s *PriceHistoryStore) AveragePrice(_ context.Context, asset string, startMs, endMs int64) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum float64
	var n int
	for _, tick := range s.data[asset] {
		if tick.TimestampMs >= startMs && tick.TimestampMs <= endMs {
			sum += tick.Price
			n++
		}
	}
	if n == 0 {
		return 0, storage.ErrNotFound
	}
	return sum / float64(n), nil
}

// Latest returns the most recent tick for an asset.
func (s *PriceHistoryStore) Latest(_ context.Context, asset string) (*domain.PriceTick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ticks := s.data[asset]
	if len(ticks) == 0 {
		return nil, storage.ErrNotFound
	}

	latest := ticks[0]
	for _, tick := range ticks[1:] {
		if tick.TimestampMs >= latest.TimestampMs {
			latest = tick
		}
	}

	copy := *latest
	return &copy, nil
}

var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)
