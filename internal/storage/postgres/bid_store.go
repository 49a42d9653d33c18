package postgres

import (
	"context"
	"fmt"

	"trading-desk/internal/domain"
	"trading-desk/internal/storage"
)

// BidStore implements storage.BidStore using PostgreSQL.
type BidStore struct {
	pool *Pool
}

// NewBidStore creates a new BidStore.
func NewBidStore(pool *Pool) *BidStore {
	return &BidStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BidStore = (*BidStore)(nil)

// Insert adds a new bid. Returns ErrDuplicateKey if bid_id exists.
func (s *BidStore) Insert(ctx context.Context, b *domain.Bid) error {
	query := `
		INSERT INTO bids (
			bid_id, auction_id, bidder, amount, submitted_at,
			status, encrypted, collateral_tx
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		b.BidID, b.AuctionID, b.Bidder, b.Amount, b.Timestamp,
		string(b.Status), b.Encrypted, b.CollateralTx,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert bid: %w", err)
	}
	return nil
}

// GetByID retrieves a bid by its ID. Returns ErrNotFound if not exists.
func (s *BidStore) GetByID(ctx context.Context, bidID string) (*domain.Bid, error) {
	query := `
		SELECT bid_id, auction_id, bidder, amount, submitted_at,
		       status, encrypted, collateral_tx
		FROM bids
		WHERE bid_id = $1
	`

	row := s.pool.QueryRow(ctx, query, bidID)
	b, err := scanBid(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get bid by id: %w", err)
	}
	return b, nil
}

// GetByAuctionID retrieves all bids for an auction, ordered by
// submission timestamp ASC.
func (s *BidStore) GetByAuctionID(ctx context.Context, auctionID string) ([]*domain.Bid, error) {
	query := `
		SELECT bid_id, auction_id, bidder, amount, submitted_at,
		       status, encrypted, collateral_tx
		FROM bids
		WHERE auction_id = $1
		ORDER BY submitted_at ASC, bid_id ASC
	`

	rows, err := s.pool.Query(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("get bids by auction id: %w", err)
	}
	defer rows.Close()

	var result []*domain.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func scanBid(row rowScanner) (*domain.Bid, error) {
	var b domain.Bid
	var status string
	err := row.Scan(
		&b.BidID, &b.AuctionID, &b.Bidder, &b.Amount, &b.Timestamp,
		&status, &b.Encrypted, &b.CollateralTx,
	)
	if err != nil {
		return nil, err
	}
	b.Status = domain.BidStatus(status)
	return &b, nil
}
