package domain

import (
	"context"
	"time"
)

// Key identifies one counter, usually a route combined with a client identifier.
type Key string

// RouteKey builds the counter key for a client on a route.
// Counters of different routes never share a key.
func RouteKey(route, client string) Key {
	return Key(route + "|" + client)
}

// Window is the state of a fixed-window counter after a hit.
type Window struct {
	Count int
	Start time.Time
}

// WindowStore counts hits per key inside fixed windows of the given size.
//
// Hit increments the counter for key and returns the post-increment state.
// When no counter exists or now is past Start+size, the window restarts at now
// with Count 1.
type WindowStore interface {
	Hit(ctx context.Context, key Key, size time.Duration, now time.Time) (Window, error)
}

// Limiter is a token bucket style limiter for a single key.
//
// Reserve consumes a token at now when one is available. Otherwise it reports
// how long the caller should wait.
type Limiter interface {
	Reserve(now time.Time) (ok bool, retryAfter time.Duration)
}

// LimiterStore returns the limiter for a key (IP, API key, ...).
type LimiterStore interface {
	Get(Key) Limiter
}

type Decision struct {
	Allowed bool
	Limit   int
	// Remaining is the number of requests still allowed in the current window.
	Remaining int
	ResetAt   time.Time
	// RetryAfter is how long a denied client should wait. Zero when allowed.
	RetryAfter time.Duration
}

// RetrySeconds rounds RetryAfter up to whole seconds, never below 1 for a
// denied decision.
func (d Decision) RetrySeconds() int {
	if d.Allowed {
		return 0
	}
	secs := int((d.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
