package infra

import (
	"context"
	"errors"
	"testing"

	"quote-api/middleware/ratelimit/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStatsStore_CountsPerRoute(t *testing.T) {
	s := NewMemoryStatsStore(WithTrackKeys(true))
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, domain.StatsEvent{Key: "login|a", Route: "login", Allowed: true}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Key: "login|a", Route: "login", Allowed: false}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Key: "x", Method: "GET", Path: "/api/quote", Allowed: true}))

	assert.Equal(t, Counters{Allowed: 2, Denied: 1}, s.Total())
	assert.Equal(t, Counters{Allowed: 1, Denied: 1}, s.ByRoute()["login"])
	assert.Equal(t, Counters{Allowed: 1}, s.ByRoute()["GET /api/quote"])
	assert.Equal(t, Counters{Allowed: 1, Denied: 1}, s.ByKey()["login|a"])
}

func TestMemoryStatsStore_KeysNotTrackedByDefault(t *testing.T) {
	s := NewMemoryStatsStore()
	require.NoError(t, s.Record(context.Background(), domain.StatsEvent{Key: "k", Route: "r", Allowed: true}))
	assert.Empty(t, s.ByKey())
}

type failingStats struct{ err error }

func (f failingStats) Record(context.Context, domain.StatsEvent) error { return f.err }

func TestMultiStats_RecordsEverywhereAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	mem := NewMemoryStatsStore()
	multi := MultiStats{failingStats{err: boom}, nil, mem}

	err := multi.Record(context.Background(), domain.StatsEvent{Route: "quote", Allowed: true})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int64(1), mem.Total().Allowed)
}
