// Package chain isolates per-blockchain signing and RPC semantics
// behind one value-transfer capability set, so settlement code never
// branches on chain type.
package chain

import "context"

// Status reports an adapter's configuration state. Address is empty
// until the adapter knows its custody account.
type Status struct {
	Configured bool   `json:"isConfigured"`
	Address    string `json:"address,omitempty"`
}

// Adapter is a per-blockchain implementation of the value-transfer
// capability set.
//
// GetStatus never blocks and never fails. Configure degrades to an
// unconfigured status on malformed input instead of returning an
// error; subsequent remote calls then fail with ErrNotConfigured.
//
// Approve and Transfer are NOT idempotent: each call is at most one
// remote attempt, and the caller must not re-issue on ambiguous
// failure.
type Adapter interface {
	// Name returns the chain identifier this adapter serves.
	Name() string

	// GetStatus reports configuration state and custody address.
	GetStatus() Status

	// Configure replaces the adapter's connection parameters and
	// returns the resulting status.
	Configure(endpoint, credential string) Status

	// GetBalance returns the custody account balance in the chain's
	// native unit.
	GetBalance(ctx context.Context) (float64, error)

	// Approve authorizes a spender for an amount on a token contract
	// and returns the transaction id.
	Approve(ctx context.Context, contract, spender string, amount float64) (string, error)

	// Transfer moves an amount of a token contract's asset to a
	// recipient and returns the transaction id.
	Transfer(ctx context.Context, contract, to string, amount float64) (string, error)
}
