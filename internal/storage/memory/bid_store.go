package memory

import (
	"context"
	"sort"
	"sync"

	"trading-desk/internal/domain"
	"trading-desk/internal/storage"
)

// BidStore is an in-memory implementation of storage.BidStore.
type BidStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Bid // keyed by bid_id
}

// NewBidStore creates a new in-memory bid store.
func NewBidStore() *BidStore {
	return &BidStore{
		data: make(map[string]*domain.Bid),
	}
}

// Insert adds a new bid. Returns ErrDuplicateKey if bid_id exists.
func (s *BidStore) Insert(_ context.Context, b *domain.Bid) error {
	if b == nil || b.BidID == "" || b.AuctionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[b.BidID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *b
	s.data[b.BidID] = &copy
	return nil
}

// GetByID retrieves a bid by its ID. Returns ErrNotFound if not exists.
func (s *BidStore) GetByID(_ context.Context, bidID string) (*domain.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, exists := s.data[bidID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *b
	return &copy, nil
}

// GetByAuctionID retrieves all bids for an auction, ordered by
// submission timestamp ASC.
func (s *BidStore) GetByAuctionID(_ context.Context, auctionID string) ([]*domain.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Bid
	for _, b := range s.data {
		if b.AuctionID == auctionID {
			copy := *b
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].BidID < result[j].BidID
		}
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}

var _ storage.BidStore = (*BidStore)(nil)
