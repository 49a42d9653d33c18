package chain

import (
	"context"
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"strings"
	"sync"
	"time"
)

// ERC-20 function selectors (first four bytes of the keccak-256 of the
// canonical signatures).
const (
	erc20TransferSelector = "a9059cbb" // transfer(address,uint256)
	erc20ApproveSelector  = "095ea7b3" // approve(address,uint256)
)

// weiPerEther converts between the chain-native display unit and wei.
var weiPerEther = new(big.Float).SetFloat64(1e18)

// EthereumAdapter moves ERC-20 value through an Ethereum JSON-RPC
// node that holds the custody account's key (node-managed signing,
// eth_sendTransaction). The credential passed to Configure is the
// custody account address.
type EthereumAdapter struct {
	mu         sync.RWMutex
	rpc        *rpcClient
	address    string
	configured bool

	timeout time.Duration
}

// EthereumOption configures an EthereumAdapter.
type EthereumOption func(*EthereumAdapter)

// WithEthereumTimeout sets the remote call timeout.
func WithEthereumTimeout(d time.Duration) EthereumOption {
	return func(a *EthereumAdapter) {
		a.timeout = d
	}
}

// NewEthereumAdapter creates an unconfigured Ethereum adapter.
func NewEthereumAdapter(opts ...EthereumOption) *EthereumAdapter {
	a := &EthereumAdapter{timeout: DefaultRPCTimeout}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the chain identifier.
func (a *EthereumAdapter) Name() string { return Ethereum }

// GetStatus reports configuration state. Never blocks.
func (a *EthereumAdapter) GetStatus() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.configured {
		return Status{}
	}
	return Status{Configured: true, Address: a.address}
}

// Configure replaces the connection parameters. Malformed input leaves
// the adapter unconfigured; it does not error.
func (a *EthereumAdapter) Configure(endpoint, credential string) Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !validEndpoint(endpoint) || !validEthereumAddress(credential) {
		a.rpc = nil
		a.address = ""
		a.configured = false
		return Status{}
	}

	a.rpc = newRPCClient(endpoint, withTimeout(a.timeout))
	a.address = strings.ToLower(credential)
	a.configured = true
	return Status{Configured: true, Address: a.address}
}

// connection returns the current client and custody address, or
// ErrNotConfigured.
func (a *EthereumAdapter) connection() (*rpcClient, string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.configured {
		return nil, "", ErrNotConfigured
	}
	return a.rpc, a.address, nil
}

// GetBalance returns the custody account's ether balance.
func (a *EthereumAdapter) GetBalance(ctx context.Context) (float64, error) {
	rpc, address, err := a.connection()
	if err != nil {
		return 0, err
	}

	var hexWei string
	if err := rpc.call(ctx, "eth_getBalance", []any{address, "latest"}, &hexWei); err != nil {
		return 0, fmt.Errorf("%w: eth_getBalance: %v", ErrTransferFailed, err)
	}

	wei, ok := new(big.Int).SetString(strings.TrimPrefix(hexWei, "0x"), 16)
	if !ok {
		return 0, fmt.Errorf("%w: malformed balance %q", ErrTransferFailed, hexWei)
	}

	ether, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), weiPerEther).Float64()
	return ether, nil
}

// Approve authorizes a spender on an ERC-20 contract. One attempt.
func (a *EthereumAdapter) Approve(ctx context.Context, contract, spender string, amount float64) (string, error) {
	return a.sendERC20(ctx, contract, erc20ApproveSelector, spender, amount)
}

// Transfer moves ERC-20 value to a recipient. One attempt.
func (a *EthereumAdapter) Transfer(ctx context.Context, contract, to string, amount float64) (string, error) {
	return a.sendERC20(ctx, contract, erc20TransferSelector, to, amount)
}

// sendERC20 submits an eth_sendTransaction carrying ABI-encoded
// calldata against the token contract.
func (a *EthereumAdapter) sendERC20(ctx context.Context, contract, selector, target string, amount float64) (string, error) {
	rpc, address, err := a.connection()
	if err != nil {
		return "", err
	}
	if !validEthereumAddress(contract) || !validEthereumAddress(target) {
		return "", fmt.Errorf("%w: malformed address", ErrTransferFailed)
	}

	data, err := encodeERC20Call(selector, target, amount)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	tx := map[string]string{
		"from": address,
		"to":   strings.ToLower(contract),
		"data": data,
	}

	var txHash string
	if err := rpc.call(ctx, "eth_sendTransaction", []any{tx}, &txHash); err != nil {
		return "", fmt.Errorf("%w: eth_sendTransaction: %v", ErrTransferFailed, err)
	}
	return txHash, nil
}

// encodeERC20Call packs selector + address + uint256 amount (in wei).
func encodeERC20Call(selector, target string, amount float64) (string, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "", fmt.Errorf("amount is not finite")
	}

	wei, _ := new(big.Float).Mul(new(big.Float).SetFloat64(amount), weiPerEther).Int(nil)
	if wei.Sign() < 0 {
		return "", fmt.Errorf("negative amount")
	}
	if wei.BitLen() > 256 {
		return "", fmt.Errorf("amount exceeds uint256 range")
	}

	addr := strings.TrimPrefix(strings.ToLower(target), "0x")

	var b strings.Builder
	b.WriteString("0x")
	b.WriteString(selector)
	b.WriteString(strings.Repeat("0", 64-len(addr)))
	b.WriteString(addr)

	amt := wei.Text(16)
	b.WriteString(strings.Repeat("0", 64-len(amt)))
	b.WriteString(amt)

	return b.String(), nil
}

// validEthereumAddress reports whether s is 0x + 40 hex characters.
func validEthereumAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(s, "0x") {
		return false
	}
	_, err := hex.DecodeString(s[2:])
	return err == nil
}

var _ Adapter = (*EthereumAdapter)(nil)
