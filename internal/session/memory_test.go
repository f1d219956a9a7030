package session

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend_SetGetDelete(t *testing.T) {
	b := NewMemoryBackend(clockwork.NewFakeClock())
	ctx := context.Background()

	_, found, err := b.Get(ctx, "id")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, b.Set(ctx, "id", Record{IsLoggedIn: true, Username: "guest"}, time.Minute))
	rec, found, err := b.Get(ctx, "id")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, Record{IsLoggedIn: true, Username: "guest"}, rec)

	require.NoError(t, b.Delete(ctx, "id"))
	_, found, _ = b.Get(ctx, "id")
	assert.False(t, found)
}

func TestMemoryBackend_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	b := NewMemoryBackend(clock)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "id", Record{IsLoggedIn: true}, time.Minute))
	clock.Advance(time.Minute)

	_, found, err := b.Get(ctx, "id")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, b.Len(), "expired record is dropped on read")
}

func TestMemoryBackend_JanitorSweeps(t *testing.T) {
	clock := clockwork.NewFakeClock()
	b := NewMemoryBackend(clock)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, b.Set(ctx, "a", Record{}, time.Second))
	require.NoError(t, b.Set(ctx, "b", Record{}, time.Hour))

	b.StartJanitor(ctx, 30*time.Second)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(30 * time.Second)

	assert.Eventually(t, func() bool { return b.Len() == 1 }, time.Second, 5*time.Millisecond)
}
