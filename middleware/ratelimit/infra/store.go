package infra

import (
	"context"
	"sync"
	"time"

	"quote-api/middleware/ratelimit/domain"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// BucketStore hands out a token bucket (x/time/rate) per key and forgets keys
// that stayed idle longer than idleTTL.
type BucketStore struct {
	mu           sync.Mutex
	entries      map[string]*bucketEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
	clock        clockwork.Clock
}

type bucketEntry struct {
	lim      bucketLimiter
	lastSeen time.Time
}

// bucketLimiter adapts *rate.Limiter to domain.Limiter.
type bucketLimiter struct {
	lim *rate.Limiter
}

func (b bucketLimiter) Reserve(now time.Time) (bool, time.Duration) {
	r := b.lim.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

type BucketOption func(*BucketStore)

func WithIdleTTL(d time.Duration) BucketOption {
	return func(s *BucketStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) BucketOption {
	return func(s *BucketStore) { s.cleanupEvery = d }
}

func WithBucketClock(c clockwork.Clock) BucketOption {
	return func(s *BucketStore) { s.clock = c }
}

func NewBucketStore(rps float64, burst int, opts ...BucketOption) *BucketStore {
	s := &BucketStore{
		entries:      make(map[string]*bucketEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		clock:        clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BucketStore) RPS() float64 { return float64(s.rps) }
func (s *BucketStore) Burst() int   { return s.burst }

// Get implements domain.LimiterStore.
func (s *BucketStore) Get(key domain.Key) domain.Limiter {
	now := s.clock.Now()
	k := string(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[k]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	ent := &bucketEntry{lim: bucketLimiter{lim: rate.NewLimiter(s.rps, s.burst)}, lastSeen: now}
	s.entries[k] = ent
	return ent.lim
}

func (s *BucketStore) Cleanup() {
	cutoff := s.clock.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor removes idle keys periodically. Stop it by cancelling ctx.
func (s *BucketStore) StartJanitor(ctx context.Context) {
	runJanitor(ctx, s.clock, s.cleanupEvery, s.Cleanup)
}
