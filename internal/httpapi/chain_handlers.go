package httpapi

import (
	"net/http"
	"time"

	"trading-desk/internal/observability"
)

// chainsResponse is the GET /chains body.
type chainsResponse struct {
	Chains []string `json:"chains"`
}

func (s *Server) handleListChains(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, chainsResponse{Chains: s.registry.Chains()})
}

// configureChainRequest is the POST /chains/{chain}/configure body.
type configureChainRequest struct {
	RPCURL     string `json:"rpcUrl"`
	PrivateKey string `json:"privateKey"`
}

func (s *Server) handleConfigureChain(w http.ResponseWriter, r *http.Request) {
	adapter, err := s.registry.Resolve(r.PathValue("chain"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req configureChainRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	// Malformed input degrades to configured=false, never an error.
	status := adapter.Configure(req.RPCURL, req.PrivateKey)
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleChainStatus(w http.ResponseWriter, r *http.Request) {
	adapter, err := s.registry.Resolve(r.PathValue("chain"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, adapter.GetStatus())
}

// balanceResponse is the GET /chains/{chain}/balance body.
type balanceResponse struct {
	Chain   string  `json:"chain"`
	Balance float64 `json:"balance"`
}

func (s *Server) handleChainBalance(w http.ResponseWriter, r *http.Request) {
	chainID := r.PathValue("chain")
	adapter, err := s.registry.Resolve(chainID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	start := time.Now()
	balance, err := adapter.GetBalance(r.Context())
	observability.RecordChainCall(chainID, "getBalance", time.Since(start).Seconds(), err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, balanceResponse{Chain: chainID, Balance: balance})
}
