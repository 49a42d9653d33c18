package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-desk/internal/domain"
	"trading-desk/internal/storage"
	pgstore "trading-desk/internal/storage/postgres"
)

// seedAuction inserts the parent auction the bids foreign key requires.
func seedAuction(t *testing.T, pool *pgstore.Pool, auctionID string) {
	t.Helper()
	store := pgstore.NewAuctionStore(pool)
	require.NoError(t, store.Insert(context.Background(), testAuction(auctionID, time.Now().UTC())))
}

func testBid(bidID, auctionID string, amount float64, submitted time.Time) *domain.Bid {
	return &domain.Bid{
		BidID:        bidID,
		AuctionID:    auctionID,
		Bidder:       "0xBidderWallet",
		Amount:       amount,
		Timestamp:    submitted,
		Status:       domain.BidStatusAccepted,
		Encrypted:    false,
		CollateralTx: "0xcollateral-" + bidID,
	}
}

func TestBidStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedAuction(t, pool, "auction-b1")
	store := pgstore.NewBidStore(pool)
	ctx := context.Background()

	submitted := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	bid := testBid("bid-001", "auction-b1", 150.5, submitted)
	bid.Encrypted = true

	require.NoError(t, store.Insert(ctx, bid))

	retrieved, err := store.GetByID(ctx, "bid-001")
	require.NoError(t, err)

	assert.Equal(t, bid.BidID, retrieved.BidID)
	assert.Equal(t, bid.AuctionID, retrieved.AuctionID)
	assert.Equal(t, bid.Bidder, retrieved.Bidder)
	assert.Equal(t, bid.Amount, retrieved.Amount)
	assert.Equal(t, domain.BidStatusAccepted, retrieved.Status)
	assert.True(t, retrieved.Encrypted)
	assert.Equal(t, bid.CollateralTx, retrieved.CollateralTx)
	require.WithinDuration(t, submitted, retrieved.Timestamp, time.Millisecond)
}

func TestBidStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedAuction(t, pool, "auction-b2")
	store := pgstore.NewBidStore(pool)
	ctx := context.Background()

	bid := testBid("bid-dup", "auction-b2", 10, time.Now().UTC())
	require.NoError(t, store.Insert(ctx, bid))

	err := store.Insert(ctx, bid)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestBidStore_GetByIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewBidStore(pool)

	_, err := store.GetByID(context.Background(), "no-such-bid")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBidStore_GetByAuctionIDSubmissionOrder(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedAuction(t, pool, "auction-b3")
	seedAuction(t, pool, "auction-other")
	store := pgstore.NewBidStore(pool)
	ctx := context.Background()

	base := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	require.NoError(t, store.Insert(ctx, testBid("bid-late", "auction-b3", 300, base.Add(2*time.Second))))
	require.NoError(t, store.Insert(ctx, testBid("bid-early", "auction-b3", 100, base)))
	require.NoError(t, store.Insert(ctx, testBid("bid-middle", "auction-b3", 200, base.Add(time.Second))))
	require.NoError(t, store.Insert(ctx, testBid("bid-elsewhere", "auction-other", 500, base)))

	bids, err := store.GetByAuctionID(ctx, "auction-b3")
	require.NoError(t, err)
	require.Len(t, bids, 3)

	assert.Equal(t, "bid-early", bids[0].BidID)
	assert.Equal(t, "bid-middle", bids[1].BidID)
	assert.Equal(t, "bid-late", bids[2].BidID)
}

func TestBidStore_GetByAuctionIDEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedAuction(t, pool, "auction-b4")
	store := pgstore.NewBidStore(pool)

	bids, err := store.GetByAuctionID(context.Background(), "auction-b4")
	require.NoError(t, err)
	assert.Empty(t, bids)
}
