package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trading-desk/internal/domain"
	"trading-desk/internal/storage"
)

// Manager drives the auction lifecycle: PENDING on creation, then
// ACTIVE, then CLOSED or CANCELLED. Status changes go through the
// storage layer's conditional update so concurrent transitions cannot
// both win.
type Manager struct {
	auctions storage.AuctionStore
	locks    *LockTable
	now      func() time.Time
}

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	AuctionStore storage.AuctionStore

	// Locks serializes lifecycle changes with bid settlement. Pass the
	// same table to the Ledger; created when nil.
	Locks *LockTable

	// Now overrides the clock in tests.
	Now func() time.Time
}

// NewManager creates a new auction lifecycle manager.
func NewManager(opts ManagerOptions) *Manager {
	m := &Manager{
		auctions: opts.AuctionStore,
		locks:    opts.Locks,
		now:      opts.Now,
	}
	if m.locks == nil {
		m.locks = NewLockTable()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// CreateParams describes a new auction.
type CreateParams struct {
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	StartPrice  float64
}

// Create stores a new auction in PENDING status and returns it.
func (m *Manager) Create(ctx context.Context, params CreateParams) (*domain.Auction, error) {
	if params.Title == "" {
		return nil, fmt.Errorf("%w: title is required", storage.ErrInvalidInput)
	}
	if !params.EndTime.After(params.StartTime) {
		return nil, fmt.Errorf("%w: end time must be after start time", storage.ErrInvalidInput)
	}
	if params.StartPrice < 0 {
		return nil, fmt.Errorf("%w: start price must not be negative", storage.ErrInvalidInput)
	}

	a := &domain.Auction{
		AuctionID:   uuid.NewString(),
		Title:       params.Title,
		Description: params.Description,
		StartTime:   params.StartTime.UTC(),
		EndTime:     params.EndTime.UTC(),
		StartPrice:  params.StartPrice,
		Status:      domain.AuctionStatusPending,
		BidIDs:      []string{},
		CreatedAt:   m.now().UTC(),
	}

	if err := m.auctions.Insert(ctx, a); err != nil {
		return nil, fmt.Errorf("insert auction: %w", err)
	}
	return a, nil
}

// Get returns a single auction.
func (m *Manager) Get(ctx context.Context, auctionID string) (*domain.Auction, error) {
	return m.auctions.GetByID(ctx, auctionID)
}

// List returns all auctions, newest first.
func (m *Manager) List(ctx context.Context) ([]*domain.Auction, error) {
	return m.auctions.GetAll(ctx)
}

// Activate moves a PENDING auction to ACTIVE.
func (m *Manager) Activate(ctx context.Context, auctionID string) (*domain.Auction, error) {
	return m.transition(ctx, auctionID, domain.AuctionStatusActive,
		domain.AuctionStatusPending)
}

// Close moves an ACTIVE auction to CLOSED. Bids already settling under
// the auction's lock complete first.
func (m *Manager) Close(ctx context.Context, auctionID string) (*domain.Auction, error) {
	return m.transition(ctx, auctionID, domain.AuctionStatusClosed,
		domain.AuctionStatusActive)
}

// Cancel moves a PENDING or ACTIVE auction to CANCELLED.
func (m *Manager) Cancel(ctx context.Context, auctionID string) (*domain.Auction, error) {
	return m.transition(ctx, auctionID, domain.AuctionStatusCancelled,
		domain.AuctionStatusPending, domain.AuctionStatusActive)
}

// transition attempts a conditional status update from each allowed
// source status in turn.
func (m *Manager) transition(ctx context.Context, auctionID string, to domain.AuctionStatus, from ...domain.AuctionStatus) (*domain.Auction, error) {
	unlock := m.locks.Acquire(auctionID)
	defer unlock()

	for _, f := range from {
		err := m.auctions.UpdateStatus(ctx, auctionID, f, to)
		switch {
		case err == nil:
			return m.auctions.GetByID(ctx, auctionID)
		case errors.Is(err, storage.ErrConflict):
			continue
		default:
			return nil, err
		}
	}

	a, err := m.auctions.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: cannot move %s auction to %s", ErrInvalidTransition, a.Status, to)
}
