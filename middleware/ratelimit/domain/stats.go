package domain

import (
	"context"
	"time"
)

// StatsEvent is one rate limit decision.
//
// Method and Path are plain strings so the event does not depend on net/http.
// Beware of cardinality when persisting Key or Path.
type StatsEvent struct {
	Key     Key
	Route   string
	Allowed bool

	Method string
	Path   string

	At time.Time
}

// StatsStore persists rate limit statistics. Recording is best-effort: callers
// never fail a request because of a stats error.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
