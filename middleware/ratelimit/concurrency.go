package ratelimit

import (
	"net/http"
	"time"

	"quote-api/middleware/ratelimit/application"
	"quote-api/middleware/ratelimit/domain"
	"quote-api/middleware/ratelimit/infra"
)

type ConcurrencyOptions struct {
	Max            int
	AcquireTimeout time.Duration
	// Reject writes the response when no slot could be taken.
	// Defaults to a plain 503.
	Reject http.HandlerFunc
	// Observer receives in-flight and rejection updates. Optional.
	Observer domain.SlotObserver
}

// ConcurrencyMiddleware caps the number of requests in flight.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.Reject == nil {
		opts.Reject = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	}

	svc := application.ConcurrencyService{
		Pool:           infra.NewChanPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
		Observer:       opts.Observer,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				opts.Reject(w, r)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
