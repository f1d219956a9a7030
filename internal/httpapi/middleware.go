package httpapi

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"quote-api/internal/apperr"
	"quote-api/middleware/ratelimit"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// logRequests logs one line per request. Silent in test mode.
func (s *Server) logRequests(next http.Handler) http.Handler {
	if s.cfg.TestMode() {
		return next
	}
	clientIP := ratelimit.DefaultKeyFunc("", s.cfg.TrustXFF)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.RequestURI()),
			zap.String("ip", clientIP(r)),
			zap.Int("status", status),
			zap.Duration("latency", s.clock.Since(start)),
		)
	})
}

// recoverPanics turns a handler panic into a 500 JSON response.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rv := recover()
			if rv == nil {
				return
			}
			if rv == http.ErrAbortHandler {
				panic(rv)
			}
			s.log.Error("panic while serving request",
				zap.Any("panic", rv),
				zap.String("path", r.URL.Path),
				zap.Stack("stack"),
			)
			s.writeError(w, r, apperr.Internal("Internal Server Error", nil))
		}()
		next.ServeHTTP(w, r)
	})
}

func itoa(n int) string { return strconv.Itoa(n) }
