package chain

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"sync"
	"time"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// lamportsPerSOL converts between lamports and the display unit.
const lamportsPerSOL = 1e9

// SolanaAdapter moves SPL-token value through a Solana RPC endpoint
// fronted by a signing relay: the relay builds, signs and submits the
// token transaction and returns its signature. The credential passed
// to Configure is the base58-encoded 32-byte ed25519 seed of the
// custody keypair; only the derived public key ever leaves the adapter.
type SolanaAdapter struct {
	mu         sync.RWMutex
	rpc        *rpcClient
	address    string
	configured bool

	timeout time.Duration
}

// SolanaOption configures a SolanaAdapter.
type SolanaOption func(*SolanaAdapter)

// WithSolanaTimeout sets the remote call timeout.
func WithSolanaTimeout(d time.Duration) SolanaOption {
	return func(a *SolanaAdapter) {
		a.timeout = d
	}
}

// NewSolanaAdapter creates an unconfigured Solana adapter.
func NewSolanaAdapter(opts ...SolanaOption) *SolanaAdapter {
	a := &SolanaAdapter{timeout: DefaultRPCTimeout}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the chain identifier.
func (a *SolanaAdapter) Name() string { return Solana }

// GetStatus reports configuration state. Never blocks.
func (a *SolanaAdapter) GetStatus() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.configured {
		return Status{}
	}
	return Status{Configured: true, Address: a.address}
}

// Configure replaces the connection parameters. Malformed input leaves
// the adapter unconfigured; it does not error.
func (a *SolanaAdapter) Configure(endpoint, credential string) Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	address, err := deriveSolanaAddress(credential)
	if !validEndpoint(endpoint) || err != nil {
		a.rpc = nil
		a.address = ""
		a.configured = false
		return Status{}
	}

	a.rpc = newRPCClient(endpoint, withTimeout(a.timeout))
	a.address = address
	a.configured = true
	return Status{Configured: true, Address: a.address}
}

func (a *SolanaAdapter) connection() (*rpcClient, string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.configured {
		return nil, "", ErrNotConfigured
	}
	return a.rpc, a.address, nil
}

// balanceResult mirrors the getBalance RPC response envelope.
type balanceResult struct {
	Value uint64 `json:"value"`
}

// GetBalance returns the custody account's SOL balance.
func (a *SolanaAdapter) GetBalance(ctx context.Context) (float64, error) {
	rpc, address, err := a.connection()
	if err != nil {
		return 0, err
	}

	var result balanceResult
	if err := rpc.call(ctx, "getBalance", []any{address}, &result); err != nil {
		return 0, fmt.Errorf("%w: getBalance: %v", ErrTransferFailed, err)
	}
	return float64(result.Value) / lamportsPerSOL, nil
}

// Approve delegates spending authority on a token account. One attempt.
func (a *SolanaAdapter) Approve(ctx context.Context, contract, spender string, amount float64) (string, error) {
	return a.relay(ctx, "relayApprove", contract, spender, amount)
}

// Transfer moves token value to a recipient. One attempt.
func (a *SolanaAdapter) Transfer(ctx context.Context, contract, to string, amount float64) (string, error) {
	return a.relay(ctx, "relayTransfer", contract, to, amount)
}

// relay submits a token operation to the signing relay and returns the
// resulting transaction signature.
func (a *SolanaAdapter) relay(ctx context.Context, method, mint, target string, amount float64) (string, error) {
	rpc, address, err := a.connection()
	if err != nil {
		return "", err
	}
	if !validSolanaAddress(mint) || !validSolanaAddress(target) {
		return "", fmt.Errorf("%w: malformed address", ErrTransferFailed)
	}

	params := []any{map[string]any{
		"owner":  address,
		"mint":   mint,
		"target": target,
		"amount": uint64(amount * lamportsPerSOL),
	}}

	var signature string
	if err := rpc.call(ctx, method, params, &signature); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTransferFailed, method, err)
	}
	return signature, nil
}

// deriveSolanaAddress derives the base58 public key from a base58
// 32-byte ed25519 seed.
func deriveSolanaAddress(credential string) (string, error) {
	seed, err := base58.Decode(credential)
	if err != nil {
		return "", fmt.Errorf("decode seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return "", fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	pub := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	return base58.Encode(pub), nil
}

// validSolanaAddress reports whether s decodes to a 32-byte value on
// the ed25519 curve.
func validSolanaAddress(s string) bool {
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != ed25519.PublicKeySize {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}

var _ Adapter = (*SolanaAdapter)(nil)
