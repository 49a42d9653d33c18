package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"trading-desk/internal/auction"
	"trading-desk/internal/chain"
	"trading-desk/internal/domain"
	"trading-desk/internal/market"
	"trading-desk/internal/rating"
	"trading-desk/internal/storage/memory"
	"trading-desk/internal/trade"
	"trading-desk/internal/tribunal"
)

// fakeAdapter settles collateral in memory.
type fakeAdapter struct {
	name        string
	configured  bool
	address     string
	transferErr error
	transfers   int
}

func (a *fakeAdapter) Name() string { return a.name }
func (a *fakeAdapter) GetStatus() chain.Status {
	if !a.configured {
		return chain.Status{}
	}
	return chain.Status{Configured: true, Address: a.address}
}
func (a *fakeAdapter) Configure(endpoint, credential string) chain.Status {
	a.configured = endpoint != "" && credential != ""
	a.address = credential
	return a.GetStatus()
}
func (a *fakeAdapter) GetBalance(_ context.Context) (float64, error) {
	if !a.configured {
		return 0, chain.ErrNotConfigured
	}
	return 12.5, nil
}
func (a *fakeAdapter) Approve(_ context.Context, _, _ string, _ float64) (string, error) {
	return "0xapprove", nil
}
func (a *fakeAdapter) Transfer(_ context.Context, _, _ string, _ float64) (string, error) {
	a.transfers++
	if a.transferErr != nil {
		return "", a.transferErr
	}
	return fmt.Sprintf("0xtx%d", a.transfers), nil
}

type apiFixture struct {
	server  *httptest.Server
	adapter *fakeAdapter
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	auctions := memory.NewAuctionStore()
	bids := memory.NewBidStore()
	trades := memory.NewTradeStore()
	locks := auction.NewLockTable()

	adapter := &fakeAdapter{name: chain.Ethereum, configured: true, address: "0xcustody"}
	registry := chain.NewRegistry()
	registry.Register(adapter)

	cache := market.NewCache()

	srv := NewServer(Options{
		Auctions: auction.NewManager(auction.ManagerOptions{AuctionStore: auctions, Locks: locks}),
		Ledger: auction.NewLedger(auction.LedgerOptions{
			AuctionStore:       auctions,
			BidStore:           bids,
			Registry:           registry,
			CollateralContract: "0xcontract",
			CustodyWallet:      "0xcustody",
			Locks:              locks,
		}),
		Trades: trade.NewManager(trade.ManagerOptions{TradeStore: trades}),
		Ratings: rating.NewEngine(rating.EngineOptions{
			TradeStore:    trades,
			MarketHistory: market.NewSimulatedOracle(cache, 1),
		}),
		Registry: registry,
		Prices:   cache,
		Tribunal: tribunal.New(tribunal.Options{Seed: 1}),
	})

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return &apiFixture{server: ts, adapter: adapter}
}

// do issues a request and decodes the JSON response into out.
func (f *apiFixture) do(t *testing.T, method, path string, body, out any) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, f.server.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (f *apiFixture) createAuction(t *testing.T) *domain.Auction {
	t.Helper()

	var a domain.Auction
	code := f.do(t, http.MethodPost, "/auctions", map[string]any{
		"title":      "ETH basket",
		"startPrice": 10.0,
		"startTime":  "2026-03-01T12:00:00Z",
		"endTime":    "2026-03-02T12:00:00Z",
	}, &a)
	if code != http.StatusCreated {
		t.Fatalf("POST /auctions: status %d", code)
	}
	return &a
}

func (f *apiFixture) activate(t *testing.T, auctionID string) {
	t.Helper()
	if code := f.do(t, http.MethodPost, "/auctions/"+auctionID+"/activate", nil, nil); code != http.StatusOK {
		t.Fatalf("Activate: status %d", code)
	}
}

func TestAPI_AuctionLifecycle(t *testing.T) {
	f := newAPIFixture(t)

	a := f.createAuction(t)
	if a.Status != domain.AuctionStatusPending {
		t.Errorf("Created status: got %s, want PENDING", a.Status)
	}

	// Closing a PENDING auction conflicts.
	if code := f.do(t, http.MethodPost, "/auctions/"+a.AuctionID+"/close", nil, nil); code != http.StatusConflict {
		t.Errorf("Close PENDING: status %d, want 409", code)
	}

	f.activate(t, a.AuctionID)

	var got domain.Auction
	if code := f.do(t, http.MethodGet, "/auctions/"+a.AuctionID, nil, &got); code != http.StatusOK {
		t.Fatalf("GET auction: status %d", code)
	}
	if got.Status != domain.AuctionStatusActive {
		t.Errorf("Status after activate: got %s", got.Status)
	}

	if code := f.do(t, http.MethodPost, "/auctions/"+a.AuctionID+"/close", nil, &got); code != http.StatusOK {
		t.Fatalf("Close ACTIVE: status %d", code)
	}
	if got.Status != domain.AuctionStatusClosed {
		t.Errorf("Status after close: got %s", got.Status)
	}
}

func TestAPI_CreateAuctionValidation(t *testing.T) {
	f := newAPIFixture(t)

	code := f.do(t, http.MethodPost, "/auctions", map[string]any{
		"title":      "x",
		"startPrice": 1.0,
		"startTime":  "not-a-time",
		"endTime":    "2026-03-02T12:00:00Z",
	}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("Bad startTime: status %d, want 400", code)
	}

	code = f.do(t, http.MethodPost, "/auctions", map[string]any{
		"title":      "x",
		"startPrice": 1.0,
		"startTime":  "2026-03-01T12:00:00Z",
		"endTime":    "2026-03-02T12:00:00Z",
		"chain":      "dogecoin",
	}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("Unsupported chain: status %d, want 400", code)
	}
}

func TestAPI_BidFlow(t *testing.T) {
	f := newAPIFixture(t)
	a := f.createAuction(t)

	// Bidding before activation conflicts and moves nothing.
	if code := f.do(t, http.MethodPost, "/auctions/"+a.AuctionID+"/bids", map[string]any{
		"bidder": "0xbidder", "amount": 12.0,
	}, nil); code != http.StatusConflict {
		t.Errorf("Bid on PENDING: status %d, want 409", code)
	}
	if f.adapter.transfers != 0 {
		t.Error("No collateral may move before activation")
	}

	f.activate(t, a.AuctionID)

	var bid domain.Bid
	if code := f.do(t, http.MethodPost, "/auctions/"+a.AuctionID+"/bids", map[string]any{
		"bidder": "0xbidder", "amount": 12.0,
	}, &bid); code != http.StatusCreated {
		t.Fatalf("Place bid: status %d", code)
	}
	if bid.Status != domain.BidStatusAccepted || bid.CollateralTx == "" {
		t.Errorf("Bid: %+v", bid)
	}

	if code := f.do(t, http.MethodPost, "/auctions/"+a.AuctionID+"/bids", map[string]any{
		"bidder": "0xother", "amount": 15.0,
	}, nil); code != http.StatusCreated {
		t.Fatalf("Second bid: status %d", code)
	}

	var highest highestBidResponse
	if code := f.do(t, http.MethodGet, "/auctions/"+a.AuctionID+"/highest-bid", nil, &highest); code != http.StatusOK {
		t.Fatalf("Highest bid: status %d", code)
	}
	if highest.Amount != 15 {
		t.Errorf("Highest: got %v, want 15", highest.Amount)
	}

	var bids []domain.Bid
	if code := f.do(t, http.MethodGet, "/auctions/"+a.AuctionID+"/bids", nil, &bids); code != http.StatusOK {
		t.Fatalf("List bids: status %d", code)
	}
	if len(bids) != 2 {
		t.Errorf("Bids: got %d, want 2", len(bids))
	}
}

func TestAPI_BidTransferFailure(t *testing.T) {
	f := newAPIFixture(t)
	a := f.createAuction(t)
	f.activate(t, a.AuctionID)

	f.adapter.transferErr = fmt.Errorf("%w: node down", chain.ErrTransferFailed)

	code := f.do(t, http.MethodPost, "/auctions/"+a.AuctionID+"/bids", map[string]any{
		"bidder": "0xbidder", "amount": 12.0,
	}, nil)
	if code != http.StatusBadGateway {
		t.Errorf("Failed transfer: status %d, want 502", code)
	}

	var bids []domain.Bid
	f.do(t, http.MethodGet, "/auctions/"+a.AuctionID+"/bids", nil, &bids)
	if len(bids) != 0 {
		t.Errorf("No bid may be recorded after a failed transfer, got %d", len(bids))
	}
}

func TestAPI_TradeLifecycleAndRating(t *testing.T) {
	f := newAPIFixture(t)

	var tr domain.ExecutedTrade
	code := f.do(t, http.MethodPost, "/trades", map[string]any{
		"asset": "BTC", "quantity": 1.0, "entryPrice": 60000.0,
	}, &tr)
	if code != http.StatusCreated {
		t.Fatalf("Open trade: status %d", code)
	}

	// Rating an open trade conflicts.
	if code := f.do(t, http.MethodGet, "/trades/"+tr.TradeID+"/rating", nil, nil); code != http.StatusConflict {
		t.Errorf("Rate open trade: status %d, want 409", code)
	}

	var closed domain.ExecutedTrade
	if code := f.do(t, http.MethodPost, "/trades/"+tr.TradeID+"/close", map[string]any{
		"exitPrice": 63000.0,
	}, &closed); code != http.StatusOK {
		t.Fatalf("Close trade: status %d", code)
	}
	if closed.ProfitAndLoss == nil || *closed.ProfitAndLoss != 3000 {
		t.Errorf("ProfitAndLoss: got %v, want 3000", closed.ProfitAndLoss)
	}

	if code := f.do(t, http.MethodPost, "/trades/"+tr.TradeID+"/close", map[string]any{
		"exitPrice": 64000.0,
	}, nil); code != http.StatusConflict {
		t.Errorf("Double close: status %d, want 409", code)
	}

	var r domain.Rating
	if code := f.do(t, http.MethodGet, "/trades/"+tr.TradeID+"/rating", nil, &r); code != http.StatusOK {
		t.Fatalf("Rate trade: status %d", code)
	}
	if r.FinalScore < 0 || r.FinalScore > 100 {
		t.Errorf("FinalScore out of bounds: %d", r.FinalScore)
	}
	// 50 + 50*tanh(3) = 99.75
	if r.Breakdown.PnLScore != 100 {
		t.Errorf("PnLScore: got %d, want 100", r.Breakdown.PnLScore)
	}

	if code := f.do(t, http.MethodGet, "/trades/missing", nil, nil); code != http.StatusNotFound {
		t.Errorf("Unknown trade: status %d, want 404", code)
	}
}

func TestAPI_ChainEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	var chains chainsResponse
	if code := f.do(t, http.MethodGet, "/chains", nil, &chains); code != http.StatusOK {
		t.Fatalf("List chains: status %d", code)
	}
	if len(chains.Chains) != 1 || chains.Chains[0] != chain.Ethereum {
		t.Errorf("Chains: %v", chains.Chains)
	}

	var status chain.Status
	if code := f.do(t, http.MethodGet, "/chains/ethereum/status", nil, &status); code != http.StatusOK {
		t.Fatalf("Chain status: status %d", code)
	}
	if !status.Configured {
		t.Error("Expected configured status")
	}

	var balance balanceResponse
	if code := f.do(t, http.MethodGet, "/chains/ethereum/balance", nil, &balance); code != http.StatusOK {
		t.Fatalf("Chain balance: status %d", code)
	}
	if balance.Balance != 12.5 {
		t.Errorf("Balance: got %v", balance.Balance)
	}

	// Malformed configure degrades, never errors.
	if code := f.do(t, http.MethodPost, "/chains/ethereum/configure", map[string]any{
		"rpcUrl": "", "privateKey": "",
	}, &status); code != http.StatusOK {
		t.Fatalf("Configure: status %d", code)
	}
	if status.Configured {
		t.Error("Malformed configure must degrade to unconfigured")
	}

	// Downstream calls now fail as unavailable.
	if code := f.do(t, http.MethodGet, "/chains/ethereum/balance", nil, nil); code != http.StatusServiceUnavailable {
		t.Errorf("Unconfigured balance: status %d, want 503", code)
	}

	if code := f.do(t, http.MethodGet, "/chains/dogecoin/status", nil, nil); code != http.StatusBadRequest {
		t.Errorf("Unknown chain: status %d, want 400", code)
	}
}

func TestAPI_MarketPrices(t *testing.T) {
	f := newAPIFixture(t)

	var prices map[string]float64
	if code := f.do(t, http.MethodGet, "/market/prices", nil, &prices); code != http.StatusOK {
		t.Fatalf("Market prices: status %d", code)
	}
	if prices["BTC"] != 65000 || prices["ETH"] != 3500 || prices["SOL"] != 150 {
		t.Errorf("Prices: %v", prices)
	}
}

func TestAPI_TribunalDecision(t *testing.T) {
	f := newAPIFixture(t)

	var result tribunal.Result
	if code := f.do(t, http.MethodPost, "/tribunal/decisions", nil, &result); code != http.StatusOK {
		t.Fatalf("Tribunal: status %d", code)
	}
	if len(result.Opinions) != tribunal.DefaultAgents {
		t.Errorf("Opinions: got %d", len(result.Opinions))
	}
	switch result.FinalDecision {
	case tribunal.DecisionBuy, tribunal.DecisionSell, tribunal.DecisionHold:
	default:
		t.Errorf("Unknown decision: %s", result.FinalDecision)
	}
}

func TestAPI_Health(t *testing.T) {
	f := newAPIFixture(t)

	resp, err := http.Get(f.server.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Health: status %d", resp.StatusCode)
	}
}
