package infra

import (
	"context"
	"sync"
	"time"

	"quote-api/middleware/ratelimit/domain"

	"github.com/jonboulle/clockwork"
)

// MemoryWindowStore keeps fixed-window counters in process memory.
// Expired windows are dropped by the janitor.
type MemoryWindowStore struct {
	mu           sync.Mutex
	entries      map[domain.Key]*windowEntry
	clock        clockwork.Clock
	cleanupEvery time.Duration
}

type windowEntry struct {
	count int
	start time.Time
	size  time.Duration
}

func (e *windowEntry) expired(now time.Time) bool {
	return now.After(e.start.Add(e.size))
}

type MemoryWindowOption func(*MemoryWindowStore)

func WithWindowClock(c clockwork.Clock) MemoryWindowOption {
	return func(s *MemoryWindowStore) { s.clock = c }
}

func WithWindowCleanupEvery(d time.Duration) MemoryWindowOption {
	return func(s *MemoryWindowStore) { s.cleanupEvery = d }
}

func NewMemoryWindowStore(opts ...MemoryWindowOption) *MemoryWindowStore {
	s := &MemoryWindowStore{
		entries:      make(map[domain.Key]*windowEntry),
		clock:        clockwork.NewRealClock(),
		cleanupEvery: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hit implements domain.WindowStore.
func (s *MemoryWindowStore) Hit(_ context.Context, key domain.Key, size time.Duration, now time.Time) (domain.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok || ent.expired(now) {
		ent = &windowEntry{start: now, size: size}
		s.entries[key] = ent
	}
	ent.count++
	return domain.Window{Count: ent.count, Start: ent.start}, nil
}

// Len reports the number of live counters.
func (s *MemoryWindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryWindowStore) Cleanup() {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.expired(now) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor drops expired windows periodically. Stop it by cancelling ctx.
func (s *MemoryWindowStore) StartJanitor(ctx context.Context) {
	runJanitor(ctx, s.clock, s.cleanupEvery, s.Cleanup)
}
