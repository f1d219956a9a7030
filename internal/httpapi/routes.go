package httpapi

import (
	"fmt"
	"net/http"
	"path"
	"time"

	"go.uber.org/zap"

	"quote-api/internal/apidocs"
	"quote-api/internal/apperr"
	"quote-api/internal/metrics"
	"quote-api/middleware/ratelimit"
	"quote-api/middleware/ratelimit/application"
	"quote-api/middleware/ratelimit/domain"
)

func (s *Server) routes() http.Handler {
	return s.chain(s.cleanPathsOnly(s.mux()))
}

// cleanPathsOnly answers paths the mux would redirect ("//api/login",
// "/api/./quote") with the JSON 404.
func (s *Server) cleanPathsOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isCleanPath(r.URL.Path) {
			s.handleNotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// isCleanPath reports whether p is rooted and already in path.Clean form,
// a single trailing slash allowed.
func isCleanPath(p string) bool {
	if p == "" || p[0] != '/' {
		return false
	}
	c := path.Clean(p)
	if p[len(p)-1] == '/' && c != "/" {
		c += "/"
	}
	return c == p
}

func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()

	// exact paths only: "/api/login/" and friends fall through to "/"
	mux.Handle("/api/login", allowMethod(http.MethodPost, s.handleNotFound,
		s.limit(RouteLogin, s.cfg.LoginLimit, s.cfg.LoginWindow, denyLogin(s))(http.HandlerFunc(s.handleLogin))))
	mux.Handle("/api/quote", allowMethod(http.MethodGet, s.handleNotFound,
		s.limit(RouteQuote, s.cfg.QuoteLimit, s.cfg.QuoteWindow, denyQuote(s))(http.HandlerFunc(s.handleQuote))))

	mux.Handle(apidocs.Prefix, s.docs)
	mux.Handle(apidocs.Prefix+"/", s.docs)

	if s.cfg.MetricsEnabled && s.metrics != nil {
		mux.Handle("/metrics", allowMethod(http.MethodGet, s.handleNotFound, s.metrics.Handler()))
	}

	mux.HandleFunc("/", s.handleNotFound)
	return mux
}

// chain wraps h with the middleware shared by every route, outermost last.
func (s *Server) chain(h http.Handler) http.Handler {
	h = ratelimit.BurstMiddleware(ratelimit.BurstOptions{
		Store:               s.burst,
		KeyHeader:           s.cfg.RateKeyHeader,
		TrustXForwardedFor:  s.cfg.TrustXFF,
		AddRateLimitHeaders: s.cfg.AddRateLimitHeaders,
		Deny: func(w http.ResponseWriter, r *http.Request, dec domain.Decision) {
			secs := dec.RetrySeconds()
			s.writeError(w, r, apperr.RateLimited(fmt.Sprintf("Too many requests. Try again in %d seconds.", secs), secs))
		},
	})(h)
	concurrency := ratelimit.ConcurrencyOptions{
		Max:            s.cfg.ConcurrencyMax,
		AcquireTimeout: s.cfg.ConcurrencyTimeout,
		Reject: func(w http.ResponseWriter, r *http.Request) {
			s.writeError(w, r, apperr.Unavailable("Server busy. Try again later."))
		},
	}
	if s.metrics != nil {
		concurrency.Observer = s.metrics
	}
	h = ratelimit.ConcurrencyMiddleware(concurrency)(h)
	h = s.logRequests(h)
	h = s.recoverPanics(h)
	return h
}

// limit builds the fixed-window limiter of one route.
func (s *Server) limit(route string, limit int, window time.Duration, deny ratelimit.DenyFunc) func(http.Handler) http.Handler {
	return ratelimit.Middleware(ratelimit.Options{
		Route: route,
		Decider: application.WindowService{
			Store:  s.counters,
			Limit:  limit,
			Window: window,
			Clock:  s.clock,
		},
		Stats:               s.stats,
		KeyHeader:           s.cfg.RateKeyHeader,
		TrustXForwardedFor:  s.cfg.TrustXFF,
		AddRateLimitHeaders: s.cfg.AddRateLimitHeaders,
		Deny:                deny,
		Clock:               s.clock,
		OnError: func(r *http.Request, err error) {
			s.log.Warn("rate limit store failed, letting request through",
				zap.String("route", route),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
		},
		OnStatsError: func(r *http.Request, err error) {
			s.log.Warn("rate limit stats record failed",
				zap.String("route", route),
				zap.Error(err),
			)
		},
	})
}

func denyLogin(s *Server) ratelimit.DenyFunc {
	return func(w http.ResponseWriter, r *http.Request, dec domain.Decision) {
		secs := dec.RetrySeconds()
		s.metrics.Login(metrics.LoginRateLimited)
		s.writeError(w, r, apperr.RateLimited(fmt.Sprintf("Too many login attempts. Try again in %d seconds.", secs), secs))
	}
}

func denyQuote(s *Server) ratelimit.DenyFunc {
	return func(w http.ResponseWriter, r *http.Request, dec domain.Decision) {
		secs := dec.RetrySeconds()
		s.writeError(w, r, apperr.RateLimited(fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", secs), secs))
	}
}

// allowMethod answers any other method with notFound instead of the mux's 405.
// GET routes also accept HEAD.
func allowMethod(method string, notFound http.HandlerFunc, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == method || (method == http.MethodGet && r.Method == http.MethodHead) {
			next.ServeHTTP(w, r)
			return
		}
		notFound(w, r)
	})
}
