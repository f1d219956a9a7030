package httpapi

import (
	"net/http"

	"quote-api/internal/apperr"
	"quote-api/internal/session"
)

type quoteResponse struct {
	Quote string `json:"quote"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r, s.cfg.SessionCookieName)
	if err != nil {
		s.writeError(w, r, apperr.Storage("Session lookup failed", err))
		return
	}
	if !session.RecordOf(sess).IsLoggedIn {
		s.writeError(w, r, apperr.Unauthorized("Unauthorized. Please login first."))
		return
	}

	s.metrics.QuoteServed()
	writeJSON(w, http.StatusOK, quoteResponse{Quote: s.quotes.Random()})
}
