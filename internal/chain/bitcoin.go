package chain

import (
	"context"
	"fmt"
	"sync"
)

// BitcoinAdapter is registered so "bitcoin" resolves (keeping
// ErrUnsupportedChain reserved for genuinely unknown chains) but has
// no settlement backend yet: it records the configured endpoint and
// fails every remote call with ErrNotConfigured.
//
// TODO: back with a PSBT signing service once custody supports UTXO
// chains.
type BitcoinAdapter struct {
	mu       sync.RWMutex
	endpoint string
}

// NewBitcoinAdapter creates the placeholder Bitcoin adapter.
func NewBitcoinAdapter() *BitcoinAdapter {
	return &BitcoinAdapter{}
}

// Name returns the chain identifier.
func (a *BitcoinAdapter) Name() string { return Bitcoin }

// GetStatus always reports unconfigured.
func (a *BitcoinAdapter) GetStatus() Status {
	return Status{}
}

// Configure records the endpoint for a future backend; the adapter
// remains unconfigured.
func (a *BitcoinAdapter) Configure(endpoint, _ string) Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	if validEndpoint(endpoint) {
		a.endpoint = endpoint
	}
	return Status{}
}

// GetBalance fails: no settlement backend.
func (a *BitcoinAdapter) GetBalance(_ context.Context) (float64, error) {
	return 0, fmt.Errorf("%w: bitcoin settlement is not available", ErrNotConfigured)
}

// Approve fails: no settlement backend.
func (a *BitcoinAdapter) Approve(_ context.Context, _, _ string, _ float64) (string, error) {
	return "", fmt.Errorf("%w: bitcoin settlement is not available", ErrNotConfigured)
}

// Transfer fails: no settlement backend.
func (a *BitcoinAdapter) Transfer(_ context.Context, _, _ string, _ float64) (string, error) {
	return "", fmt.Errorf("%w: bitcoin settlement is not available", ErrNotConfigured)
}

var _ Adapter = (*BitcoinAdapter)(nil)
