package domain

import "time"

// BidStatus is the acceptance state of a bid.
type BidStatus string

// Bid states. Bids created through the ledger are ACCEPTED once the
// collateral transfer has settled; PENDING and REJECTED exist for
// sealed-bid flows where acceptance is deferred.
const (
	BidStatusPending  BidStatus = "PENDING"
	BidStatusAccepted BidStatus = "ACCEPTED"
	BidStatusRejected BidStatus = "REJECTED"
)

// Bid is a claim of value by a bidder against an auction, backed by a
// collateral transfer to the custody wallet. A bid may only be created
// while its auction is ACTIVE; once created its amount is immutable.
type Bid struct {
	BidID     string    `json:"bidId"`
	AuctionID string    `json:"auctionId"`
	Bidder    string    `json:"bidder"`
	Amount    float64   `json:"amount"` // chain-native unit
	Timestamp time.Time `json:"timestamp"`
	Status    BidStatus `json:"status"`
	Encrypted bool      `json:"isEncrypted"` // reserved for sealed-bid auctions

	// CollateralTx is the chain transaction id of the collateral
	// transfer that backed this bid. Observability only; there is no
	// reconciliation path from a transfer back to a bid.
	CollateralTx string `json:"collateralTx,omitempty"`
}
