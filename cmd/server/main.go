// Package main runs the trading desk server: chain adapters for
// collateral settlement, auction and trade lifecycles, the rating
// engine, and the market data feeds backing its history oracle.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"trading-desk/internal/auction"
	"trading-desk/internal/chain"
	"trading-desk/internal/httpapi"
	"trading-desk/internal/market"
	"trading-desk/internal/rating"
	"trading-desk/internal/storage"
	chstore "trading-desk/internal/storage/clickhouse"
	"trading-desk/internal/storage/memory"
	"trading-desk/internal/storage/migrations"
	pgstore "trading-desk/internal/storage/postgres"
	"trading-desk/internal/trade"
	"trading-desk/internal/tribunal"
)

// stores holds the storage implementations behind the services.
type stores struct {
	auctions storage.AuctionStore
	bids     storage.BidStore
	trades   storage.TradeStore
	history  storage.PriceHistoryStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")

	settlementChain := flag.String("settlement-chain", envOr("SETTLEMENT_CHAIN", chain.Ethereum), "Default chain for bid collateral")
	collateralContract := flag.String("collateral-contract", os.Getenv("COLLATERAL_CONTRACT"), "Token contract collateral moves on")
	custodyWallet := flag.String("custody-wallet", os.Getenv("CUSTODY_WALLET"), "Wallet receiving bid collateral")
	ethRPC := flag.String("eth-rpc", os.Getenv("ETH_RPC_ENDPOINT"), "Ethereum JSON-RPC endpoint")
	ethAccount := flag.String("eth-account", os.Getenv("ETH_CUSTODY_ACCOUNT"), "Ethereum custody account address")
	solRPC := flag.String("sol-rpc", os.Getenv("SOL_RPC_ENDPOINT"), "Solana RPC endpoint")
	solSeed := flag.String("sol-seed", os.Getenv("SOL_CUSTODY_SEED"), "Solana custody keypair seed (base58)")

	priceAPI := flag.String("price-api", envOr("PRICE_API_ENDPOINT", "https://api.coingecko.com/api/v3"), "REST price API base URL")
	tickerWS := flag.String("ticker-ws", os.Getenv("TICKER_WS_ENDPOINT"), "Websocket ticker stream URL (optional)")
	pollInterval := flag.Duration("poll-interval", market.DefaultPollInterval, "Spot price poll interval")
	disablePoller := flag.Bool("disable-poller", false, "Disable the REST price poller")

	tribunalSeed := flag.Int64("tribunal-seed", 0, "Tribunal RNG seed (0 = time-based)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}
	if *collateralContract == "" || *custodyWallet == "" {
		logger.Println("WARN: collateral contract or custody wallet unset; bid settlement will fail until configured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Chain adapters; endpoints may also be (re)configured over the API.
	registry := chain.DefaultRegistry()
	configureAdapters(registry, *ethRPC, *ethAccount, *solRPC, *solSeed, logger)

	// Market data
	cache := market.NewCache()
	if !*disablePoller {
		poller := market.NewPoller(market.PollerOptions{
			Endpoint: *priceAPI,
			Interval: *pollInterval,
			Cache:    cache,
			History:  st.history,
			Logger:   log.New(os.Stdout, "[poller] ", log.LstdFlags),
		})
		go poller.Run(ctx)
	}
	if *tickerWS != "" {
		feed := market.NewFeed(market.FeedOptions{
			Endpoint: *tickerWS,
			Cache:    cache,
			History:  st.history,
			Logger:   log.New(os.Stdout, "[feed] ", log.LstdFlags),
		})
		go feed.Run(ctx)
	}

	var oracle rating.MarketHistory
	if *useMemory {
		// No durable history; approximate from cached spot prices.
		oracle = market.NewSimulatedOracle(cache, time.Now().UnixNano())
	} else {
		oracle = market.NewHistoryOracle(st.history)
	}

	// Core services
	locks := auction.NewLockTable()
	auctions := auction.NewManager(auction.ManagerOptions{AuctionStore: st.auctions, Locks: locks})
	ledger := auction.NewLedger(auction.LedgerOptions{
		AuctionStore:       st.auctions,
		BidStore:           st.bids,
		Registry:           registry,
		Chain:              *settlementChain,
		CollateralContract: *collateralContract,
		CustodyWallet:      *custodyWallet,
		Locks:              locks,
	})
	trades := trade.NewManager(trade.ManagerOptions{TradeStore: st.trades})
	ratings := rating.NewEngine(rating.EngineOptions{TradeStore: st.trades, MarketHistory: oracle})

	seed := *tribunalSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	panel := tribunal.New(tribunal.Options{Seed: seed})

	api := httpapi.NewServer(httpapi.Options{
		Auctions: auctions,
		Ledger:   ledger,
		Trades:   trades,
		Ratings:  ratings,
		Registry: registry,
		Prices:   cache,
		Tribunal: panel,
		Logger:   log.New(os.Stdout, "[http] ", log.LstdFlags),
	})

	httpServer := &http.Server{
		Addr:              *listenAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown: %v", err)
		}
	}()

	logger.Printf("Listening on %s (storage=%s, settlement=%s)", *listenAddr, storageMode(*useMemory), *settlementChain)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*stores, func(), error) {
	if useMemory {
		st := &stores{
			auctions: memory.NewAuctionStore(),
			bids:     memory.NewBidStore(),
			trades:   memory.NewTradeStore(),
			history:  memory.NewPriceHistoryStore(),
		}
		return st, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	st := &stores{
		auctions: pgstore.NewAuctionStore(pool),
		bids:     pgstore.NewBidStore(pool),
		trades:   pgstore.NewTradeStore(pool),
		history:  chstore.NewPriceHistoryStore(chConn),
	}
	cleanup := func() {
		pool.Close()
		chConn.Close()
	}
	return st, cleanup, nil
}

// configureAdapters applies startup credentials to the registry.
func configureAdapters(registry *chain.Registry, ethRPC, ethAccount, solRPC, solSeed string, logger *log.Logger) {
	if ethRPC != "" && ethAccount != "" {
		adapter, err := registry.Resolve(chain.Ethereum)
		if err == nil {
			status := adapter.Configure(ethRPC, ethAccount)
			logger.Printf("ethereum adapter configured=%v address=%s", status.Configured, status.Address)
		}
	}
	if solRPC != "" && solSeed != "" {
		adapter, err := registry.Resolve(chain.Solana)
		if err == nil {
			status := adapter.Configure(solRPC, solSeed)
			logger.Printf("solana adapter configured=%v address=%s", status.Configured, status.Address)
		}
	}
}

func storageMode(useMemory bool) string {
	if useMemory {
		return "memory"
	}
	return "postgres+clickhouse"
}

// envOr returns the env var's value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
