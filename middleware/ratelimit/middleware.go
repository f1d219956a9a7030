package ratelimit

import (
	"context"
	"encoding/json"
	"net/http"

	"quote-api/middleware/ratelimit/domain"

	"github.com/jonboulle/clockwork"
)

// Decider returns a fixed-window decision for a key.
// application.WindowService implements it.
type Decider interface {
	Decide(ctx context.Context, key domain.Key) (domain.Decision, error)
}

// DenyFunc writes the response for a rejected request.
type DenyFunc func(w http.ResponseWriter, r *http.Request, dec domain.Decision)

type Options struct {
	// Route scopes the counters: the same client has one counter per route.
	Route   string
	Decider Decider
	Stats   domain.StatsStore

	KeyFn              KeyFunc
	KeyHeader          string
	TrustXForwardedFor bool

	AddRateLimitHeaders bool
	// Deny defaults to a 429 JSON body {"error": ..., "retrySecs": n}.
	Deny DenyFunc
	// OnError is told about store failures. The request is let through.
	OnError func(r *http.Request, err error)
	// OnStatsError is told about Stats.Record failures.
	OnStatsError func(r *http.Request, err error)
	// Clock stamps stats events. Defaults to the real clock.
	Clock clockwork.Clock
}

// DefaultDeny answers 429 with a JSON error body.
func DefaultDeny(w http.ResponseWriter, _ *http.Request, dec domain.Decision) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":     http.StatusText(http.StatusTooManyRequests),
		"retrySecs": dec.RetrySeconds(),
	})
}

// Middleware limits the wrapped handler with a fixed-window counter per client.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.Deny == nil {
		opts.Deny = DefaultDeny
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	return func(next http.Handler) http.Handler {
		if opts.Decider == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := domain.RouteKey(opts.Route, opts.KeyFn(r))

			dec, err := opts.Decider.Decide(r.Context(), key)
			if err != nil {
				if opts.OnError != nil {
					opts.OnError(r, err)
				}
				next.ServeHTTP(w, r)
				return
			}

			if opts.Stats != nil {
				err := opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:     key,
					Route:   opts.Route,
					Allowed: dec.Allowed,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      opts.Clock.Now(),
				})
				if err != nil && opts.OnStatsError != nil {
					opts.OnStatsError(r, err)
				}
			}

			if opts.AddRateLimitHeaders {
				setWindowHeaders(w.Header(), dec)
			}
			if !dec.Allowed {
				w.Header().Set("Retry-After", formatInt(dec.RetrySeconds()))
				opts.Deny(w, r, dec)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func setWindowHeaders(h http.Header, dec domain.Decision) {
	h.Set("X-RateLimit-Limit", formatInt(dec.Limit))
	h.Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
	if !dec.ResetAt.IsZero() {
		h.Set("X-RateLimit-Reset", formatInt(int(dec.ResetAt.Unix())))
	}
}
