package httpapi

import "net/http"

func (s *Server) handleMarketPrices(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.prices.Snapshot())
}

func (s *Server) handleTribunalDecision(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.tribunal.Decide())
}
