package ratelimit

import (
	"net/http"
	"time"

	"quote-api/middleware/ratelimit/application"
	"quote-api/middleware/ratelimit/domain"
)

type BurstOptions struct {
	Store               domain.LimiterStore
	KeyFn               KeyFunc
	KeyHeader           string
	TrustXForwardedFor  bool
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
	Deny                DenyFunc
}

type rateInfo interface {
	RPS() float64
	Burst() int
}

// BurstMiddleware applies a token bucket per client in front of every route.
func BurstMiddleware(opts BurstOptions) func(next http.Handler) http.Handler {
	if opts.Store == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.Deny == nil {
		opts.Deny = DefaultDeny
	}

	svc := application.BurstService{
		Store:      opts.Store,
		RetryAfter: opts.RetryAfter,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			if opts.AddRateLimitHeaders {
				if ri, ok := opts.Store.(rateInfo); ok {
					w.Header().Set("X-RateLimit-RPS", formatFloat(ri.RPS()))
					w.Header().Set("X-RateLimit-Burst", formatInt(ri.Burst()))
				}
			}

			dec := svc.Decide(domain.Key(key))
			if !dec.Allowed {
				w.Header().Set("Retry-After", formatInt(dec.RetrySeconds()))
				opts.Deny(w, r, dec)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
