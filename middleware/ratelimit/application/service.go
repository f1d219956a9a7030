package application

import (
	"context"
	"fmt"
	"time"

	"quote-api/middleware/ratelimit/domain"

	"github.com/jonboulle/clockwork"
)

// WindowService applies a fixed-window limit: at most Limit hits per Window.
//
// It knows nothing about HTTP (headers/status), it only returns a decision.
type WindowService struct {
	Store  domain.WindowStore
	Limit  int
	Window time.Duration
	Clock  clockwork.Clock
}

// Decide records a hit for key and reports whether it fits in the window.
//
// On a store error the returned decision allows the request and the error is
// handed back so the caller can log it.
func (s WindowService) Decide(ctx context.Context, key domain.Key) (domain.Decision, error) {
	if s.Store == nil || s.Limit <= 0 || s.Window <= 0 {
		return domain.Decision{Allowed: true}, nil
	}
	if s.Clock == nil {
		s.Clock = clockwork.NewRealClock()
	}

	now := s.Clock.Now()
	w, err := s.Store.Hit(ctx, key, s.Window, now)
	if err != nil {
		return domain.Decision{Allowed: true, Limit: s.Limit}, fmt.Errorf("window hit for %q: %w", key, err)
	}

	dec := domain.Decision{
		Limit:   s.Limit,
		ResetAt: w.Start.Add(s.Window),
	}
	if w.Count > s.Limit {
		dec.RetryAfter = dec.ResetAt.Sub(now)
		return dec, nil
	}
	dec.Allowed = true
	dec.Remaining = s.Limit - w.Count
	return dec, nil
}

// BurstService applies a token bucket limit per key.
type BurstService struct {
	Store domain.LimiterStore
	// RetryAfter is used when the limiter cannot say how long to wait.
	RetryAfter time.Duration
	Clock      clockwork.Clock
}

func (s BurstService) Decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	if s.RetryAfter <= 0 {
		s.RetryAfter = 1 * time.Second
	}
	if s.Clock == nil {
		s.Clock = clockwork.NewRealClock()
	}

	lim := s.Store.Get(key)
	if lim == nil {
		return domain.Decision{Allowed: true}
	}
	ok, wait := lim.Reserve(s.Clock.Now())
	if ok {
		return domain.Decision{Allowed: true}
	}
	if wait <= 0 {
		wait = s.RetryAfter
	}
	return domain.Decision{Allowed: false, RetryAfter: wait}
}
