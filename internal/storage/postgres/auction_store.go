package postgres

import (
	"context"
	"fmt"

	"trading-desk/internal/domain"
	"trading-desk/internal/storage"
)

// AuctionStore implements storage.AuctionStore using PostgreSQL.
type AuctionStore struct {
	pool *Pool
}

// NewAuctionStore creates a new AuctionStore.
func NewAuctionStore(pool *Pool) *AuctionStore {
	return &AuctionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AuctionStore = (*AuctionStore)(nil)

// Insert adds a new auction. Returns ErrDuplicateKey if auction_id exists.
func (s *AuctionStore) Insert(ctx context.Context, a *domain.Auction) error {
	query := `
		INSERT INTO auctions (
			auction_id, title, description, start_time, end_time,
			start_price, status, bid_ids, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		a.AuctionID, a.Title, a.Description, a.StartTime, a.EndTime,
		a.StartPrice, string(a.Status), a.BidIDs, a.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert auction: %w", err)
	}
	return nil
}

// GetByID retrieves an auction by its ID. Returns ErrNotFound if not exists.
func (s *AuctionStore) GetByID(ctx context.Context, auctionID string) (*domain.Auction, error) {
	query := `
		SELECT auction_id, title, description, start_time, end_time,
		       start_price, status, bid_ids, created_at
		FROM auctions
		WHERE auction_id = $1
	`

	row := s.pool.QueryRow(ctx, query, auctionID)
	a, err := scanAuction(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get auction by id: %w", err)
	}
	return a, nil
}

// GetAll retrieves all auctions ordered by creation time DESC.
func (s *AuctionStore) GetAll(ctx context.Context) ([]*domain.Auction, error) {
	query := `
		SELECT auction_id, title, description, start_time, end_time,
		       start_price, status, bid_ids, created_at
		FROM auctions
		ORDER BY created_at DESC, auction_id DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all auctions: %w", err)
	}
	defer rows.Close()

	var result []*domain.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan auction: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// UpdateStatus transitions an auction from one status to another
// atomically. The guard on the current status is evaluated inside the
// UPDATE so concurrent transitions cannot both succeed.
func (s *AuctionStore) UpdateStatus(ctx context.Context, auctionID string, from, to domain.AuctionStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE auctions SET status = $1 WHERE auction_id = $2 AND status = $3`,
		string(to), auctionID, string(from),
	)
	if err != nil {
		return fmt.Errorf("update auction status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Distinguish a missing auction from a status mismatch.
	var exists bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM auctions WHERE auction_id = $1)`, auctionID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check auction exists: %w", err)
	}
	if !exists {
		return storage.ErrNotFound
	}
	return storage.ErrConflict
}

// AppendBid appends a bid ID to the auction's ordered bid list.
func (s *AuctionStore) AppendBid(ctx context.Context, auctionID, bidID string) error {
	if bidID == "" {
		return storage.ErrInvalidInput
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE auctions SET bid_ids = array_append(bid_ids, $1) WHERE auction_id = $2`,
		bidID, auctionID,
	)
	if err != nil {
		return fmt.Errorf("append bid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuction(row rowScanner) (*domain.Auction, error) {
	var a domain.Auction
	var status string
	err := row.Scan(
		&a.AuctionID, &a.Title, &a.Description, &a.StartTime, &a.EndTime,
		&a.StartPrice, &status, &a.BidIDs, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = domain.AuctionStatus(status)
	return &a, nil
}
