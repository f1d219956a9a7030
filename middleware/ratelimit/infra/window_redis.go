package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quote-api/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// hitScript increments the counter and starts the window on the first hit.
// Returns {count, remaining window in ms}.
var hitScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisWindowStore keeps fixed-window counters in Redis so several instances
// share the same quota. Windows expire with their keys.
type RedisWindowStore struct {
	rdb    *redis.Client
	prefix string
}

type RedisWindowOption func(*RedisWindowStore)

func WithWindowPrefix(prefix string) RedisWindowOption {
	return func(s *RedisWindowStore) { s.prefix = strings.Trim(prefix, ":") }
}

func NewRedisWindowStore(rdb *redis.Client, opts ...RedisWindowOption) *RedisWindowStore {
	s := &RedisWindowStore{rdb: rdb, prefix: "ratelimit:window"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hit implements domain.WindowStore. The window start is derived from the key
// TTL, so now is only used to place it on the caller's clock.
func (s *RedisWindowStore) Hit(ctx context.Context, key domain.Key, size time.Duration, now time.Time) (domain.Window, error) {
	res, err := hitScript.Run(ctx, s.rdb, []string{s.prefix + ":" + string(key)}, size.Milliseconds()).Int64Slice()
	if err != nil {
		return domain.Window{}, fmt.Errorf("redis window hit: %w", err)
	}
	if len(res) != 2 {
		return domain.Window{}, fmt.Errorf("redis window hit: unexpected reply length %d", len(res))
	}

	remaining := time.Duration(res[1]) * time.Millisecond
	return domain.Window{
		Count: int(res[0]),
		Start: now.Add(remaining - size),
	}, nil
}
