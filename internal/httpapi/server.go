// Package httpapi exposes the trading desk over HTTP and maps domain
// error kinds onto status codes.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"trading-desk/internal/auction"
	"trading-desk/internal/chain"
	"trading-desk/internal/market"
	"trading-desk/internal/observability"
	"trading-desk/internal/rating"
	"trading-desk/internal/storage"
	"trading-desk/internal/trade"
	"trading-desk/internal/tribunal"
)

// Server holds the handlers' dependencies.
type Server struct {
	auctions *auction.Manager
	ledger   *auction.Ledger
	trades   *trade.Manager
	ratings  *rating.Engine
	registry *chain.Registry
	prices   *market.Cache
	tribunal *tribunal.Tribunal

	logger *log.Logger
}

// Options contains configuration for creating a Server.
type Options struct {
	Auctions *auction.Manager
	Ledger   *auction.Ledger
	Trades   *trade.Manager
	Ratings  *rating.Engine
	Registry *chain.Registry
	Prices   *market.Cache
	Tribunal *tribunal.Tribunal

	Logger *log.Logger
}

// NewServer creates the HTTP API server.
func NewServer(opts Options) *Server {
	s := &Server{
		auctions: opts.Auctions,
		ledger:   opts.Ledger,
		trades:   opts.Trades,
		ratings:  opts.Ratings,
		registry: opts.Registry,
		prices:   opts.Prices,
		tribunal: opts.Tribunal,
		logger:   opts.Logger,
	}
	if s.logger == nil {
		s.logger = log.New(os.Stdout, "[http] ", log.LstdFlags)
	}
	return s
}

// Routes builds the request multiplexer.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", observability.Handler())

	mux.HandleFunc("POST /auctions", s.instrument("/auctions", s.handleCreateAuction))
	mux.HandleFunc("GET /auctions", s.instrument("/auctions", s.handleListAuctions))
	mux.HandleFunc("GET /auctions/{id}", s.instrument("/auctions/{id}", s.handleGetAuction))
	mux.HandleFunc("POST /auctions/{id}/activate", s.instrument("/auctions/{id}/activate", s.handleActivateAuction))
	mux.HandleFunc("POST /auctions/{id}/close", s.instrument("/auctions/{id}/close", s.handleCloseAuction))
	mux.HandleFunc("POST /auctions/{id}/cancel", s.instrument("/auctions/{id}/cancel", s.handleCancelAuction))
	mux.HandleFunc("POST /auctions/{id}/bids", s.instrument("/auctions/{id}/bids", s.handlePlaceBid))
	mux.HandleFunc("GET /auctions/{id}/bids", s.instrument("/auctions/{id}/bids", s.handleListBids))
	mux.HandleFunc("GET /auctions/{id}/highest-bid", s.instrument("/auctions/{id}/highest-bid", s.handleHighestBid))

	mux.HandleFunc("POST /trades", s.instrument("/trades", s.handleOpenTrade))
	mux.HandleFunc("GET /trades", s.instrument("/trades", s.handleListTrades))
	mux.HandleFunc("GET /trades/{id}", s.instrument("/trades/{id}", s.handleGetTrade))
	mux.HandleFunc("POST /trades/{id}/close", s.instrument("/trades/{id}/close", s.handleCloseTrade))
	mux.HandleFunc("GET /trades/{id}/rating", s.instrument("/trades/{id}/rating", s.handleRateTrade))

	mux.HandleFunc("GET /chains", s.instrument("/chains", s.handleListChains))
	mux.HandleFunc("POST /chains/{chain}/configure", s.instrument("/chains/{chain}/configure", s.handleConfigureChain))
	mux.HandleFunc("GET /chains/{chain}/status", s.instrument("/chains/{chain}/status", s.handleChainStatus))
	mux.HandleFunc("GET /chains/{chain}/balance", s.instrument("/chains/{chain}/balance", s.handleChainBalance))

	mux.HandleFunc("GET /market/prices", s.instrument("/market/prices", s.handleMarketPrices))
	mux.HandleFunc("POST /tribunal/decisions", s.instrument("/tribunal/decisions", s.handleTribunalDecision))

	return mux
}

// statusRecorder captures the response code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records request count and latency per route.
func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h(rec, r)
		observability.RecordHTTPRequest(route, rec.code, time.Since(start).Seconds())
	}
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

// writeError maps an error kind to a status code and writes it.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := statusForError(err)
	if code >= http.StatusInternalServerError {
		s.logger.Printf("request failed: %v", err)
	}
	s.writeJSON(w, code, errorResponse{Error: err.Error()})
}

// statusForError translates the error taxonomy onto HTTP codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, chain.ErrUnsupportedChain):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, chain.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, chain.ErrTransferFailed),
		errors.Is(err, auction.ErrCollateralTransferFailed):
		return http.StatusBadGateway
	case errors.Is(err, auction.ErrAuctionNotActive),
		errors.Is(err, auction.ErrInvalidTransition),
		errors.Is(err, trade.ErrInvalidTransition),
		errors.Is(err, rating.ErrTradeIncomplete),
		errors.Is(err, storage.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicateKey):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", storage.ErrInvalidInput, err)
	}
	return nil
}
