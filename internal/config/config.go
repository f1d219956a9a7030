package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      int    `env:"PORT" default:"5000"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"json"`

	SessionCookieName   string        `env:"SESSION_COOKIE_NAME" default:"quote.sid"`
	SessionTTL          time.Duration `env:"SESSION_TTL" default:"60s"`
	SessionSecret       string        `env:"SESSION_SECRET"`
	SessionSecureCookie bool          `env:"SESSION_SECURE_COOKIE" default:"false"`

	LoginLimit  int           `env:"LOGIN_LIMIT" default:"3"`
	LoginWindow time.Duration `env:"LOGIN_WINDOW" default:"60s"`
	QuoteLimit  int           `env:"QUOTE_LIMIT" default:"5"`
	QuoteWindow time.Duration `env:"QUOTE_WINDOW" default:"60s"`

	RateKeyHeader       string `env:"RATE_KEY_HEADER"`
	TrustXFF            bool   `env:"TRUST_XFF" default:"false"`
	AddRateLimitHeaders bool   `env:"ADD_RATELIMIT_HEADERS" default:"true"`

	StoreBackend  string `env:"STORE_BACKEND" default:"memory"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" default:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" default:"quote-api"`

	RateStatsEnabled   bool          `env:"RATE_STATS_ENABLED" default:"false"`
	RateStatsPrefix    string        `env:"RATE_STATS_PREFIX" default:"ratelimit:stats"`
	RateStatsTTL       time.Duration `env:"RATE_STATS_TTL" default:"24h"`
	RateStatsBucket    string        `env:"RATE_STATS_BUCKET" default:"minute"`
	RateStatsTrackKeys bool          `env:"RATE_STATS_TRACK_KEYS" default:"false"`

	// BurstRPS > 0 enables a global token bucket per client in front of all routes.
	BurstRPS  float64 `env:"BURST_RPS" default:"0"`
	BurstSize int     `env:"BURST_SIZE" default:"20"`

	ConcurrencyMax     int           `env:"CONCURRENCY_MAX" default:"100"`
	ConcurrencyTimeout time.Duration `env:"CONCURRENCY_TIMEOUT" default:"0s"`

	MetricsEnabled  bool          `env:"METRICS_ENABLED" default:"false"`
	QuotesFile      string        `env:"QUOTES_FILE"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// TestMode silences request logging.
func (c *Config) TestMode() bool { return strings.EqualFold(c.AppEnv, "test") }

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// a missing .env file is fine, the environment alone is enough
	_ = godotenv.Load()
	return LoadFrom(nil)
}

// LoadFrom reads the configuration from src, or from the process environment
// when src is nil.
func LoadFrom(src env.Source) (*Config, error) {
	var opts *env.Options
	if src != nil {
		opts = &env.Options{Source: src}
	}

	var cfg Config
	if err := env.Load(&cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.SessionTTL < time.Second {
		return errors.New("SESSION_TTL must be >= 1s")
	}
	if cfg.SessionSecret != "" && len(cfg.SessionSecret) < 16 {
		return errors.New("SESSION_SECRET must be at least 16 characters")
	}
	if strings.TrimSpace(cfg.SessionCookieName) == "" {
		return errors.New("SESSION_COOKIE_NAME must not be empty")
	}
	if cfg.LoginLimit <= 0 || cfg.QuoteLimit <= 0 {
		return errors.New("LOGIN_LIMIT and QUOTE_LIMIT must be > 0")
	}
	if cfg.LoginWindow <= 0 || cfg.QuoteWindow <= 0 {
		return errors.New("LOGIN_WINDOW and QUOTE_WINDOW must be > 0")
	}

	switch cfg.StoreBackend {
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return errors.New("REDIS_ADDR is required when STORE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendMemory, BackendRedis, cfg.StoreBackend)
	}
	if cfg.RateStatsEnabled && strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("REDIS_ADDR is required when RATE_STATS_ENABLED=true")
	}

	if cfg.BurstRPS < 0 {
		return errors.New("BURST_RPS must be >= 0")
	}
	if cfg.BurstRPS > 0 && cfg.BurstSize <= 0 {
		return errors.New("BURST_SIZE must be > 0")
	}
	if cfg.ConcurrencyMax < 0 {
		return errors.New("CONCURRENCY_MAX must be >= 0")
	}
	return nil
}

// NeedsRedis reports whether any component talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.StoreBackend == BackendRedis || c.RateStatsEnabled
}
