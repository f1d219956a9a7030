package session

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MemoryBackend keeps records in process memory. Expired records are
// invisible to Get and removed by the janitor.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	clock   clockwork.Clock
}

type memoryEntry struct {
	rec       Record
	expiresAt time.Time
}

func NewMemoryBackend(clock clockwork.Clock) *MemoryBackend {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryBackend{
		entries: make(map[string]memoryEntry),
		clock:   clock,
	}
}

func (b *MemoryBackend) Get(_ context.Context, id string) (Record, bool, error) {
	now := b.clock.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	ent, ok := b.entries[id]
	if !ok {
		return Record{}, false, nil
	}
	if !now.Before(ent.expiresAt) {
		delete(b.entries, id)
		return Record{}, false, nil
	}
	return ent.rec, true, nil
}

func (b *MemoryBackend) Set(_ context.Context, id string, rec Record, ttl time.Duration) error {
	expiresAt := b.clock.Now().Add(ttl)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[id] = memoryEntry{rec: rec, expiresAt: expiresAt}
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.entries, id)
	return nil
}

// Len counts stored records, expired ones included until swept.
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

func (b *MemoryBackend) Cleanup() {
	now := b.clock.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ent := range b.entries {
		if !now.Before(ent.expiresAt) {
			delete(b.entries, id)
		}
	}
}

// StartJanitor sweeps expired records every interval until ctx is done.
func (b *MemoryBackend) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}

	t := b.clock.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.Chan():
				b.Cleanup()
			}
		}
	}()
}
