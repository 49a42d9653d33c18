package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"trading-desk/internal/auction"
	"trading-desk/internal/chain"
	"trading-desk/internal/observability"
	"trading-desk/internal/storage"
)

// createAuctionRequest is the POST /auctions body.
type createAuctionRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	StartPrice  float64 `json:"startPrice"`
	StartTime   string  `json:"startTime"` // RFC 3339
	EndTime     string  `json:"endTime"`   // RFC 3339

	// Chain is validated against the registry; settlement itself
	// happens per bid.
	Chain string `json:"chain,omitempty"`
}

func (s *Server) handleCreateAuction(w http.ResponseWriter, r *http.Request) {
	var req createAuctionRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	if req.Chain != "" {
		if _, err := s.registry.Resolve(req.Chain); err != nil {
			s.writeError(w, err)
			return
		}
	}

	startTime, err := parseTime(req.StartTime, "startTime")
	if err != nil {
		s.writeError(w, err)
		return
	}
	endTime, err := parseTime(req.EndTime, "endTime")
	if err != nil {
		s.writeError(w, err)
		return
	}

	a, err := s.auctions.Create(r.Context(), auction.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   startTime,
		EndTime:     endTime,
		StartPrice:  req.StartPrice,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	observability.RecordAuctionCreated()
	s.writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListAuctions(w http.ResponseWriter, r *http.Request) {
	auctions, err := s.auctions.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, auctions)
}

func (s *Server) handleGetAuction(w http.ResponseWriter, r *http.Request) {
	a, err := s.auctions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleActivateAuction(w http.ResponseWriter, r *http.Request) {
	a, err := s.auctions.Activate(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	observability.RecordAuctionTransition(string(a.Status))
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleCloseAuction(w http.ResponseWriter, r *http.Request) {
	a, err := s.auctions.Close(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	observability.RecordAuctionTransition(string(a.Status))
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleCancelAuction(w http.ResponseWriter, r *http.Request) {
	a, err := s.auctions.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	observability.RecordAuctionTransition(string(a.Status))
	s.writeJSON(w, http.StatusOK, a)
}

// placeBidRequest is the POST /auctions/{id}/bids body.
type placeBidRequest struct {
	Bidder    string  `json:"bidder"`
	Amount    float64 `json:"amount"`
	Chain     string  `json:"chain,omitempty"`
	Encrypted bool    `json:"encrypted,omitempty"`
}

func (s *Server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	var req placeBidRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	chainID := req.Chain
	if chainID == "" {
		chainID = s.ledger.DefaultChain()
	}

	bid, err := s.ledger.PlaceBid(r.Context(), auction.BidParams{
		AuctionID: r.PathValue("id"),
		Bidder:    req.Bidder,
		Amount:    req.Amount,
		Encrypted: req.Encrypted,
		Chain:     req.Chain,
	})
	if err != nil {
		if errors.Is(err, auction.ErrCollateralTransferFailed) || errors.Is(err, chain.ErrNotConfigured) {
			observability.RecordCollateralTransfer(chainID, err)
		}
		observability.RecordBidPlaced("rejected")
		s.writeError(w, err)
		return
	}

	observability.RecordCollateralTransfer(chainID, nil)
	observability.RecordBidPlaced("accepted")
	s.writeJSON(w, http.StatusCreated, bid)
}

func (s *Server) handleListBids(w http.ResponseWriter, r *http.Request) {
	bids, err := s.ledger.Bids(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, bids)
}

// highestBidResponse is the GET /auctions/{id}/highest-bid body.
type highestBidResponse struct {
	AuctionID string  `json:"auctionId"`
	Amount    float64 `json:"amount"`
}

func (s *Server) handleHighestBid(w http.ResponseWriter, r *http.Request) {
	auctionID := r.PathValue("id")
	amount, err := s.ledger.HighestBid(r.Context(), auctionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, highestBidResponse{AuctionID: auctionID, Amount: amount})
}

// parseTime parses an RFC 3339 field.
func parseTime(value, field string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", storage.ErrInvalidInput, field)
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be RFC 3339: %v", storage.ErrInvalidInput, field, err)
	}
	return t, nil
}
