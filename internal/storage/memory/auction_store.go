package memory

import (
	"context"
	"sort"
	"sync"

	"trading-desk/internal/domain"
	"trading-desk/internal/storage"
)

// AuctionStore is an in-memory implementation of storage.AuctionStore.
type AuctionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Auction // keyed by auction_id
}

// NewAuctionStore creates a new in-memory auction store.
func NewAuctionStore() *AuctionStore {
	return &AuctionStore{
		data: make(map[string]*domain.Auction),
	}
}

// Insert adds a new auction. Returns ErrDuplicateKey if auction_id exists.
func (s *AuctionStore) Insert(_ context.Context, a *domain.Auction) error {
	if a == nil || a.AuctionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.AuctionID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[a.AuctionID] = copyAuction(a)
	return nil
}

// GetByID retrieves an auction by its ID. Returns ErrNotFound if not exists.
func (s *AuctionStore) GetByID(_ context.Context, auctionID string) (*domain.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[auctionID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return copyAuction(a), nil
}

// GetAll retrieves all auctions ordered by creation time DESC.
func (s *AuctionStore) GetAll(_ context.Context) ([]*domain.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Auction, 0, len(s.data))
	for _, a := range s.data {
		result = append(result, copyAuction(a))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].AuctionID > result[j].AuctionID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// UpdateStatus transitions an auction from one status to another atomically.
func (s *AuctionStore) UpdateStatus(_ context.Context, auctionID string, from, to domain.AuctionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.data[auctionID]
	if !exists {
		return storage.ErrNotFound
	}
	if a.Status != from {
		return storage.ErrConflict
	}

	a.Status = to
	return nil
}

// AppendBid appends a bid ID to the auction's ordered bid list.
func (s *AuctionStore) AppendBid(_ context.Context, auctionID, bidID string) error {
	if bidID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.data[auctionID]
	if !exists {
		return storage.ErrNotFound
	}

	a.BidIDs = append(a.BidIDs, bidID)
	return nil
}

// copyAuction returns a deep copy so callers cannot mutate stored state.
func copyAuction(a *domain.Auction) *domain.Auction {
	c := *a
	c.BidIDs = append([]string(nil), a.BidIDs...)
	return &c
}

var _ storage.AuctionStore = (*AuctionStore)(nil)
