package auction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"trading-desk/internal/chain"
	"trading-desk/internal/domain"
	"trading-desk/internal/storage"
)

// Ledger settles bids against the collateral contract. A bid is only
// recorded after its collateral transfer confirms: transfer first,
// append second, so the ledger never lists a bid whose collateral did
// not move. The reverse gap (collateral moved, insert failed) is
// surfaced as an error carrying the transaction ID for manual
// reconciliation.
type Ledger struct {
	auctions storage.AuctionStore
	bids     storage.BidStore
	registry *chain.Registry
	locks    *LockTable
	now      func() time.Time

	chainID            string
	collateralContract string
	custodyWallet      string
}

// LedgerOptions contains configuration for creating a Ledger.
type LedgerOptions struct {
	AuctionStore storage.AuctionStore
	BidStore     storage.BidStore
	Registry     *chain.Registry

	// Chain selects the settlement adapter; defaults to ethereum.
	Chain string
	// CollateralContract is the token contract collateral moves on.
	CollateralContract string
	// CustodyWallet receives bid collateral.
	CustodyWallet string

	// Locks serializes settlement with lifecycle changes. Pass the
	// same table to the Manager; created when nil.
	Locks *LockTable

	// Now overrides the clock in tests.
	Now func() time.Time
}

// NewLedger creates a new bid ledger.
func NewLedger(opts LedgerOptions) *Ledger {
	l := &Ledger{
		auctions:           opts.AuctionStore,
		bids:               opts.BidStore,
		registry:           opts.Registry,
		locks:              opts.Locks,
		now:                opts.Now,
		chainID:            opts.Chain,
		collateralContract: opts.CollateralContract,
		custodyWallet:      opts.CustodyWallet,
	}
	if l.locks == nil {
		l.locks = NewLockTable()
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.chainID == "" {
		l.chainID = chain.Ethereum
	}
	return l
}

// DefaultChain returns the settlement chain used when a bid names none.
func (l *Ledger) DefaultChain() string {
	return l.chainID
}

// BidParams describes a bid submission.
type BidParams struct {
	AuctionID string
	Bidder    string
	Amount    float64
	Encrypted bool

	// Chain overrides the ledger's default settlement chain.
	Chain string
}

// PlaceBid settles collateral for a bid and records it. The auction
// must be ACTIVE. Exactly one transfer attempt is made; on failure the
// auction is untouched.
func (l *Ledger) PlaceBid(ctx context.Context, params BidParams) (*domain.Bid, error) {
	if params.Bidder == "" {
		return nil, fmt.Errorf("%w: bidder is required", storage.ErrInvalidInput)
	}
	if params.Amount <= 0 || math.IsNaN(params.Amount) || math.IsInf(params.Amount, 0) {
		return nil, fmt.Errorf("%w: bid amount must be a positive finite number", storage.ErrInvalidInput)
	}

	chainID := params.Chain
	if chainID == "" {
		chainID = l.chainID
	}
	adapter, err := l.registry.Resolve(chainID)
	if err != nil {
		return nil, err
	}

	unlock := l.locks.Acquire(params.AuctionID)
	defer unlock()

	a, err := l.auctions.GetByID(ctx, params.AuctionID)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.AuctionStatusActive {
		return nil, fmt.Errorf("%w: auction %s is %s", ErrAuctionNotActive, a.AuctionID, a.Status)
	}

	tx, err := adapter.Transfer(ctx, l.collateralContract, l.custodyWallet, params.Amount)
	if err != nil {
		if errors.Is(err, chain.ErrNotConfigured) {
			return nil, fmt.Errorf("collateral settlement: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrCollateralTransferFailed, err)
	}

	bid := &domain.Bid{
		BidID:        uuid.NewString(),
		AuctionID:    a.AuctionID,
		Bidder:       params.Bidder,
		Amount:       params.Amount,
		Timestamp:    l.now().UTC(),
		Status:       domain.BidStatusAccepted,
		Encrypted:    params.Encrypted,
		CollateralTx: tx,
	}

	// Collateral already moved past this point; failures below need
	// manual reconciliation against tx.
	if err := l.bids.Insert(ctx, bid); err != nil {
		return nil, fmt.Errorf("record bid after collateral tx %s: %w", tx, err)
	}
	if err := l.auctions.AppendBid(ctx, a.AuctionID, bid.BidID); err != nil {
		return nil, fmt.Errorf("append bid %s after collateral tx %s: %w", bid.BidID, tx, err)
	}

	return bid, nil
}

// Bids returns the bids recorded for an auction in submission order.
func (l *Ledger) Bids(ctx context.Context, auctionID string) ([]*domain.Bid, error) {
	if _, err := l.auctions.GetByID(ctx, auctionID); err != nil {
		return nil, err
	}
	return l.bids.GetByAuctionID(ctx, auctionID)
}

// HighestBid returns the largest accepted bid amount, or the start
// price when no bids have settled.
func (l *Ledger) HighestBid(ctx context.Context, auctionID string) (float64, error) {
	a, err := l.auctions.GetByID(ctx, auctionID)
	if err != nil {
		return 0, err
	}

	bids, err := l.bids.GetByAuctionID(ctx, auctionID)
	if err != nil {
		return 0, err
	}

	highest := a.StartPrice
	for _, b := range bids {
		if b.Status == domain.BidStatusAccepted && b.Amount > highest {
			highest = b.Amount
		}
	}
	return highest, nil
}
