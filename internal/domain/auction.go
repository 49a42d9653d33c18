package domain

import "time"

// AuctionStatus is the lifecycle state of an auction.
type AuctionStatus string

// Auction lifecycle states. Transitions are monotonic:
// PENDING → ACTIVE → CLOSED, with CANCELLED reachable from
// PENDING or ACTIVE only. CLOSED and CANCELLED are terminal.
const (
	AuctionStatusPending   AuctionStatus = "PENDING"
	AuctionStatusActive    AuctionStatus = "ACTIVE"
	AuctionStatusClosed    AuctionStatus = "CLOSED"
	AuctionStatusCancelled AuctionStatus = "CANCELLED"
)

// Auction is a timed sale process accepting bids while ACTIVE.
// Corresponds to the auctions table. Auctions are never deleted;
// terminal auctions are archived in place.
type Auction struct {
	AuctionID   string        `json:"auctionId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	StartTime   time.Time     `json:"startTime"`
	EndTime     time.Time     `json:"endTime"`
	StartPrice  float64       `json:"startPrice"` // chain-native unit
	Status      AuctionStatus `json:"status"`
	BidIDs      []string      `json:"bids"` // insertion order = submission order
	CreatedAt   time.Time     `json:"createdAt"`
}

// Terminal reports whether the auction is in a terminal state.
func (s AuctionStatus) Terminal() bool {
	return s == AuctionStatusClosed || s == AuctionStatusCancelled
}
