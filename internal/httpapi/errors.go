package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"quote-api/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError is the single exit for failures: it logs and writes the JSON body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)
	status := e.Status()

	fields := []zap.Field{
		zap.String("kind", string(e.Kind)),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
	}
	if status >= http.StatusInternalServerError {
		s.log.Error(e.Message, append(fields, zap.Error(e.Cause))...)
	} else {
		s.log.Info(e.Message, fields...)
	}

	if e.Kind == apperr.KindRateLimited {
		w.Header().Set("Retry-After", itoa(e.RetrySecs))
	}
	writeJSON(w, status, e.Response())
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, apperr.NotFound())
}
