package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"trading-desk/internal/domain"
	"trading-desk/internal/storage"
)

func TestBidStore_InsertAndGet(t *testing.T) {
	store := NewBidStore()
	ctx := context.Background()

	bid := &domain.Bid{
		BidID:     "b1",
		AuctionID: "a1",
		Bidder:    "alice",
		Amount:    12,
		Timestamp: time.Now(),
		Status:    domain.BidStatusAccepted,
	}

	if err := store.Insert(ctx, bid); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "b1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Amount != 12 || got.Bidder != "alice" {
		t.Errorf("Bid mismatch: %+v", got)
	}

	if err := store.Insert(ctx, bid); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestBidStore_GetByAuctionIDOrdered(t *testing.T) {
	store := NewBidStore()
	ctx := context.Background()

	base := time.Now()
	bids := []*domain.Bid{
		{BidID: "b2", AuctionID: "a1", Bidder: "bob", Amount: 15, Timestamp: base.Add(time.Minute), Status: domain.BidStatusAccepted},
		{BidID: "b1", AuctionID: "a1", Bidder: "alice", Amount: 12, Timestamp: base, Status: domain.BidStatusAccepted},
		{BidID: "b3", AuctionID: "other", Bidder: "carol", Amount: 99, Timestamp: base, Status: domain.BidStatusAccepted},
	}
	for _, b := range bids {
		if err := store.Insert(ctx, b); err != nil {
			t.Fatalf("Insert(%s) failed: %v", b.BidID, err)
		}
	}

	got, err := store.GetByAuctionID(ctx, "a1")
	if err != nil {
		t.Fatalf("GetByAuctionID failed: %v", err)
	}
	if len(got) != 2 || got[0].BidID != "b1" || got[1].BidID != "b2" {
		t.Errorf("Expected [b1 b2] by timestamp, got %+v", got)
	}
}

func TestBidStore_MissingBid(t *testing.T) {
	store := NewBidStore()
	ctx := context.Background()

	if _, err := store.GetByID(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	got, err := store.GetByAuctionID(ctx, "empty")
	if err != nil {
		t.Fatalf("GetByAuctionID failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no bids, got %d", len(got))
	}
}
