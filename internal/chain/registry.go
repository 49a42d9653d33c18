package chain

import (
	"fmt"
	"sort"
	"sync"
)

// Chain identifiers known at startup.
const (
	Ethereum = "ethereum"
	Solana   = "solana"
	Bitcoin  = "bitcoin"
)

// Registry maps chain identifiers to adapters. The registry is the
// only process-wide lookup; adapters own their connection state.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// DefaultRegistry builds the registry with all supported chains.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewEthereumAdapter())
	r.Register(NewSolanaAdapter())
	r.Register(NewBitcoinAdapter())
	return r
}

// Register adds an adapter under its chain name, replacing any
// previous registration.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Name()] = a
}

// Resolve returns the adapter for a chain identifier. Unknown chains
// fail fast with ErrUnsupportedChain rather than silently defaulting.
func (r *Registry) Resolve(chainID string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[chainID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedChain, chainID)
	}
	return a, nil
}

// Chains returns the registered chain identifiers, sorted.
func (r *Registry) Chains() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
