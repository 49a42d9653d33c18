package storage

import (
	"context"

	"trading-desk/internal/domain"
)

// AuctionStore provides access to auctions storage.
//
// Stores guarantee per-entity atomicity: a conditional update observes
// and mutates a single record atomically. They do not provide
// cross-entity transactions; callers achieve cross-entity consistency
// by ordering their operations.
type AuctionStore interface {
	// Insert adds a new auction. Returns ErrDuplicateKey if auction_id exists.
	Insert(ctx context.Context, a *domain.Auction) error

	// GetByID retrieves an auction by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, auctionID string) (*domain.Auction, error)

	// GetAll retrieves all auctions ordered by creation time DESC.
	GetAll(ctx context.Context) ([]*domain.Auction, error)

	// UpdateStatus transitions an auction from one status to another
	// atomically. Returns ErrNotFound if the auction does not exist and
	// ErrConflict if its current status is not `from`.
	UpdateStatus(ctx context.Context, auctionID string, from, to domain.AuctionStatus) error

	// AppendBid appends a bid ID to the auction's ordered bid list.
	// Returns ErrNotFound if the auction does not exist.
	AppendBid(ctx context.Context, auctionID, bidID string) error
}

// BidStore provides access to bids storage.
type BidStore interface {
	// Insert adds a new bid. Returns ErrDuplicateKey if bid_id exists.
	Insert(ctx context.Context, b *domain.Bid) error

	// GetByID retrieves a bid by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, bidID string) (*domain.Bid, error)

	// GetByAuctionID retrieves all bids for an auction, ordered by
	// submission timestamp ASC.
	GetByAuctionID(ctx context.Context, auctionID string) ([]*domain.Bid, error)
}

// TradeStore provides access to executed_trades storage.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.ExecutedTrade) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.ExecutedTrade, error)

	// GetAll retrieves all trades ordered by entry timestamp DESC.
	GetAll(ctx context.Context) ([]*domain.ExecutedTrade, error)

	// Close sets the exit fields and P&L atomically, only if the trade
	// is currently OPEN. Returns ErrNotFound if the trade does not
	// exist and ErrConflict if it is not OPEN.
	Close(ctx context.Context, tradeID string, c *domain.TradeClose) error

	// SetScore writes the performance score onto a trade.
	// Returns ErrNotFound if the trade does not exist.
	SetScore(ctx context.Context, tradeID string, score int) error
}

// PriceHistoryStore provides access to price_history storage.
type PriceHistoryStore interface {
	// InsertBulk adds multiple price ticks.
	InsertBulk(ctx context.Context, ticks []*domain.PriceTick) error

	// AveragePrice returns the mean price of an asset over
	// [startMs, endMs] inclusive. Returns ErrNotFound if the window
	// holds no ticks for the asset.
	AveragePrice(ctx context.Context, asset string, startMs, endMs int64) (float64, error)

	// Latest returns the most recent tick for an asset.
	// Returns ErrNotFound if the asset has no ticks.
	Latest(ctx context.Context, asset string) (*domain.PriceTick, error)
}
