package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-simpler.org/env"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(env.Map{})
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, 60*time.Second, cfg.SessionTTL)
	assert.False(t, cfg.SessionSecureCookie)
	assert.Equal(t, 3, cfg.LoginLimit)
	assert.Equal(t, time.Minute, cfg.LoginWindow)
	assert.Equal(t, 5, cfg.QuoteLimit)
	assert.Equal(t, time.Minute, cfg.QuoteWindow)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.True(t, cfg.AddRateLimitHeaders)
	assert.False(t, cfg.TestMode())
	assert.False(t, cfg.NeedsRedis())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(env.Map{
		"APP_ENV":       "test",
		"PORT":          "8081",
		"QUOTE_LIMIT":   "10",
		"QUOTE_WINDOW":  "30s",
		"STORE_BACKEND": "Redis",
		"REDIS_ADDR":    "localhost:6379",
	})
	require.NoError(t, err)

	assert.True(t, cfg.TestMode())
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, 10, cfg.QuoteLimit)
	assert.Equal(t, 30*time.Second, cfg.QuoteWindow)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.True(t, cfg.NeedsRedis())
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := map[string]env.Map{
		"bad port":           {"PORT": "0"},
		"short secret":       {"SESSION_SECRET": "short"},
		"zero login limit":   {"LOGIN_LIMIT": "0"},
		"unknown backend":    {"STORE_BACKEND": "etcd"},
		"redis without addr": {"STORE_BACKEND": "redis"},
		"stats without addr": {"RATE_STATS_ENABLED": "true"},
		"negative burst":     {"BURST_RPS": "-1"},
		"not a number":       {"PORT": "abc"},
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(src)
			assert.Error(t, err)
		})
	}
}
