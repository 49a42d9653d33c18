package chain

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mr-tron/base58"
)

// testSolanaSeed returns a deterministic base58 seed and the address
// it derives to.
func testSolanaSeed(t *testing.T) (seed, address string) {
	t.Helper()

	raw := bytes.Repeat([]byte{7}, ed25519.SeedSize)
	pub := ed25519.NewKeyFromSeed(raw).Public().(ed25519.PublicKey)
	return base58.Encode(raw), base58.Encode(pub)
}

func TestDeriveSolanaAddress(t *testing.T) {
	seed, want := testSolanaSeed(t)

	got, err := deriveSolanaAddress(seed)
	if err != nil {
		t.Fatalf("deriveSolanaAddress failed: %v", err)
	}
	if got != want {
		t.Errorf("Address: got %s, want %s", got, want)
	}

	if _, err := deriveSolanaAddress("not-base58-0OIl"); err == nil {
		t.Error("Expected error for malformed base58")
	}
	if _, err := deriveSolanaAddress(base58.Encode([]byte{1, 2, 3})); err == nil {
		t.Error("Expected error for short seed")
	}
}

func TestValidSolanaAddress(t *testing.T) {
	_, address := testSolanaSeed(t)

	if !validSolanaAddress(address) {
		t.Errorf("Derived public key %s should validate", address)
	}
	if validSolanaAddress("tooShort") {
		t.Error("Short value should not validate")
	}
	if validSolanaAddress("not-base58-0OIl") {
		t.Error("Non-base58 value should not validate")
	}
}

func TestSolanaAdapter_Configure(t *testing.T) {
	seed, address := testSolanaSeed(t)
	a := NewSolanaAdapter()

	status := a.Configure("https://api.devnet.solana.com", seed)
	if !status.Configured {
		t.Fatal("Expected configured status")
	}
	if status.Address != address {
		t.Errorf("Address: got %s, want %s", status.Address, address)
	}

	// The seed never appears in status output.
	if status.Address == seed {
		t.Error("Status must expose the public key, not the seed")
	}

	if got := a.Configure("https://api.devnet.solana.com", "bad-seed"); got.Configured {
		t.Error("Bad seed must leave the adapter unconfigured")
	}
	if a.GetStatus().Configured {
		t.Error("GetStatus after bad reconfigure should report unconfigured")
	}
}

func TestSolanaAdapter_GetBalance(t *testing.T) {
	seed, address := testSolanaSeed(t)

	var lastReq rpcRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&lastReq)
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      lastReq.ID,
			"result":  map[string]any{"value": 2_500_000_000},
		})
	}))
	defer server.Close()

	a := NewSolanaAdapter()
	a.Configure(server.URL, seed)

	balance, err := a.GetBalance(context.Background())
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance != 2.5 {
		t.Errorf("Balance: got %v, want 2.5", balance)
	}
	if lastReq.Method != "getBalance" {
		t.Errorf("Method: got %s", lastReq.Method)
	}
	if lastReq.Params[0] != address {
		t.Errorf("Params[0]: got %v, want %s", lastReq.Params[0], address)
	}
}

func TestSolanaAdapter_Transfer(t *testing.T) {
	seed, address := testSolanaSeed(t)
	_, mint := testSolanaSeedVariant(t, 11)
	_, recipient := testSolanaSeedVariant(t, 13)
	signature := "5VERYFAKESIGNATURE"

	var lastReq rpcRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&lastReq)
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      lastReq.ID,
			"result":  signature,
		})
	}))
	defer server.Close()

	a := NewSolanaAdapter()
	a.Configure(server.URL, seed)

	got, err := a.Transfer(context.Background(), mint, recipient, 1.5)
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if got != signature {
		t.Errorf("Signature: got %s, want %s", got, signature)
	}

	if lastReq.Method != "relayTransfer" {
		t.Errorf("Method: got %s", lastReq.Method)
	}
	params, ok := lastReq.Params[0].(map[string]any)
	if !ok {
		t.Fatalf("Params[0] is %T, want object", lastReq.Params[0])
	}
	if params["owner"] != address {
		t.Errorf("owner: got %v", params["owner"])
	}
	if params["mint"] != mint {
		t.Errorf("mint: got %v", params["mint"])
	}
	if params["target"] != recipient {
		t.Errorf("target: got %v", params["target"])
	}
	if params["amount"] != float64(1_500_000_000) {
		t.Errorf("amount: got %v, want 1500000000 lamports", params["amount"])
	}
}

// testSolanaSeedVariant derives an address from a seed filled with b.
func testSolanaSeedVariant(t *testing.T, b byte) (seed, address string) {
	t.Helper()

	raw := bytes.Repeat([]byte{b}, ed25519.SeedSize)
	pub := ed25519.NewKeyFromSeed(raw).Public().(ed25519.PublicKey)
	return base58.Encode(raw), base58.Encode(pub)
}

func TestSolanaAdapter_TransferBadAddresses(t *testing.T) {
	seed, _ := testSolanaSeed(t)
	_, recipient := testSolanaSeedVariant(t, 13)

	a := NewSolanaAdapter()
	a.Configure("https://api.devnet.solana.com", seed)

	if _, err := a.Transfer(context.Background(), "bad-mint", recipient, 1); !errors.Is(err, ErrTransferFailed) {
		t.Errorf("Bad mint: expected ErrTransferFailed, got %v", err)
	}
}

func TestSolanaAdapter_NotConfigured(t *testing.T) {
	a := NewSolanaAdapter()

	if _, err := a.GetBalance(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("GetBalance: expected ErrNotConfigured, got %v", err)
	}
}
