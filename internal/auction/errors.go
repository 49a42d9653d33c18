package auction

import "errors"

var (
	// ErrAuctionNotActive is returned when a bid targets an auction
	// that is not accepting bids.
	ErrAuctionNotActive = errors.New("auction is not active")

	// ErrInvalidTransition is returned when a lifecycle operation is
	// not valid from the auction's current status.
	ErrInvalidTransition = errors.New("invalid auction status transition")

	// ErrCollateralTransferFailed is returned when the on-chain
	// collateral movement fails. No bid is recorded in that case.
	ErrCollateralTransferFailed = errors.New("collateral transfer failed")
)
