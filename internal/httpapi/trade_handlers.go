package httpapi

import (
	"net/http"
	"time"

	"trading-desk/internal/observability"
	"trading-desk/internal/trade"
)

// openTradeRequest is the POST /trades body.
type openTradeRequest struct {
	ActionRef  string  `json:"actionRef,omitempty"`
	Asset      string  `json:"asset"`
	Quantity   float64 `json:"quantity"`
	EntryPrice float64 `json:"entryPrice"`
}

func (s *Server) handleOpenTrade(w http.ResponseWriter, r *http.Request) {
	var req openTradeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	t, err := s.trades.Open(r.Context(), trade.OpenParams{
		ActionRef:  req.ActionRef,
		Asset:      req.Asset,
		Quantity:   req.Quantity,
		EntryPrice: req.EntryPrice,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	observability.RecordTradeOpened()
	s.writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := s.trades.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	t, err := s.trades.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

// closeTradeRequest is the POST /trades/{id}/close body.
type closeTradeRequest struct {
	ExitPrice float64 `json:"exitPrice"`
}

func (s *Server) handleCloseTrade(w http.ResponseWriter, r *http.Request) {
	var req closeTradeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	t, err := s.trades.Close(r.Context(), r.PathValue("id"), req.ExitPrice)
	if err != nil {
		s.writeError(w, err)
		return
	}

	observability.RecordTradeClosed(*t.ProfitAndLoss)
	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleRateTrade(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rating, err := s.ratings.Rate(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	observability.RecordRating(time.Since(start).Seconds())
	s.writeJSON(w, http.StatusOK, rating)
}
