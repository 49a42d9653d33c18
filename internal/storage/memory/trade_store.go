package memory

import (
	"context"
	"sort"
	"sync"

	"trading-desk/internal/domain"
	"trading-desk/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ExecutedTrade // keyed by trade_id
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]*domain.ExecutedTrade),
	}
}

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(_ context.Context, t *domain.ExecutedTrade) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TradeID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[t.TradeID] = copyTrade(t)
	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(_ context.Context, tradeID string) (*domain.ExecutedTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[tradeID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return copyTrade(t), nil
}

// GetAll retrieves all trades ordered by entry timestamp DESC.
func (s *TradeStore) GetAll(_ context.Context) ([]*domain.ExecutedTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.ExecutedTrade, 0, len(s.data))
	for _, t := range s.data {
		result = append(result, copyTrade(t))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].EntryTimestamp.Equal(result[j].EntryTimestamp) {
			return result[i].TradeID > result[j].TradeID
		}
		return result[i].EntryTimestamp.After(result[j].EntryTimestamp)
	})

	return result, nil
}

// Close sets the exit fields and P&L atomically, only from OPEN.
func (s *TradeStore) Close(_ context.Context, tradeID string, c *domain.TradeClose) error {
	if c == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.data[tradeID]
	if !exists {
		return storage.ErrNotFound
	}
	if t.Status != domain.TradeStatusOpen {
		return storage.ErrConflict
	}

	exitPrice := c.ExitPrice
	exitTime := c.ExitTimestamp
	pnl := c.ProfitAndLoss
	t.ExitPrice = &exitPrice
	t.ExitTimestamp = &exitTime
	t.ProfitAndLoss = &pnl
	t.Status = domain.TradeStatusClosed
	return nil
}

// SetScore writes the performance score onto a trade.
func (s *TradeStore) SetScore(_ context.Context, tradeID string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.data[tradeID]
	if !exists {
		return storage.ErrNotFound
	}

	t.PerformanceScore = &score
	return nil
}

// copyTrade returns a deep copy so callers cannot mutate stored state.
func copyTrade(t *domain.ExecutedTrade) *domain.ExecutedTrade {
	c := *t
	if t.ExitPrice != nil {
		v := *t.ExitPrice
		c.ExitPrice = &v
	}
	if t.ExitTimestamp != nil {
		v := *t.ExitTimestamp
		c.ExitTimestamp = &v
	}
	if t.ProfitAndLoss != nil {
		v := *t.ProfitAndLoss
		c.ProfitAndLoss = &v
	}
	if t.PerformanceScore != nil {
		v := *t.PerformanceScore
		c.PerformanceScore = &v
	}
	return &c
}

var _ storage.TradeStore = (*TradeStore)(nil)
