package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quote-api/internal/config"
	"quote-api/internal/httpapi"
	"quote-api/internal/metrics"
	"quote-api/internal/quotes"
	"quote-api/internal/session"
	"quote-api/middleware/ratelimit/domain"
	"quote-api/middleware/ratelimit/infra"
)

type application struct {
	deps   httpapi.Deps
	log    *zap.Logger
	local  *infra.MemoryStatsStore
	rdb    *redis.Client
	closed bool
}

// build assembles the stores for cfg. Janitors run until ctx is done.
func build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*application, error) {
	clock := clockwork.NewRealClock()
	app := &application{log: logger, local: infra.NewMemoryStatsStore()}

	book, err := loadQuotes(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.NeedsRedis() {
		app.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := app.rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			_ = app.rdb.Close()
			return nil, fmt.Errorf("redis ping error: %w", err)
		}
	}

	var (
		backend  session.Backend
		counters domain.WindowStore
	)
	switch cfg.StoreBackend {
	case config.BackendRedis:
		backend = session.NewRedisBackend(app.rdb, cfg.RedisPrefix+":session")
		counters = infra.NewRedisWindowStore(app.rdb, infra.WithWindowPrefix(cfg.RedisPrefix+":ratelimit:window"))
	default:
		mb := session.NewMemoryBackend(clock)
		mb.StartJanitor(ctx, cfg.SessionTTL)
		backend = mb

		ws := infra.NewMemoryWindowStore(infra.WithWindowClock(clock))
		ws.StartJanitor(ctx)
		counters = ws
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		logger.Warn("SESSION_SECRET not set, using a random key: sessions will not survive a restart")
		secret = securecookie.GenerateRandomKey(32)
	}
	store := session.NewStore(backend, cfg.SessionTTL, secret)
	store.Options.Secure = cfg.SessionSecureCookie

	stats := infra.MultiStats{app.local}
	if cfg.RateStatsEnabled {
		stats = append(stats, infra.NewRedisStatsStore(
			app.rdb,
			infra.WithStatsPrefix(cfg.RateStatsPrefix),
			infra.WithStatsTTL(cfg.RateStatsTTL),
			infra.WithStatsBucket(cfg.RateStatsBucket),
			infra.WithStatsTrackKeys(cfg.RateStatsTrackKeys),
		))
	}

	var burst domain.LimiterStore
	if cfg.BurstRPS > 0 {
		bs := infra.NewBucketStore(cfg.BurstRPS, cfg.BurstSize, infra.WithBucketClock(clock))
		bs.StartJanitor(ctx)
		burst = bs
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	app.deps = httpapi.Deps{
		Config:   cfg,
		Logger:   logger,
		Sessions: store,
		Quotes:   book,
		Counters: counters,
		Clock:    clock,
		Stats:    stats,
		Burst:    burst,
		Metrics:  m,
	}
	return app, nil
}

func loadQuotes(cfg *config.Config) (*quotes.Book, error) {
	if cfg.QuotesFile == "" {
		return quotes.Default()
	}
	book, err := quotes.Load(cfg.QuotesFile)
	if err != nil {
		return nil, fmt.Errorf("load QUOTES_FILE: %w", err)
	}
	return book, nil
}

// logStats writes the per-route decision counters seen by this process.
func (a *application) logStats() {
	total := a.local.Total()
	fields := []zap.Field{
		zap.Int64("allowed", total.Allowed),
		zap.Int64("denied", total.Denied),
	}
	for route, c := range a.local.ByRoute() {
		fields = append(fields, zap.Any(route, c))
	}
	a.log.Info("rate limit decisions", fields...)
}

func (a *application) close() {
	if a.closed {
		return
	}
	a.closed = true
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			a.log.Warn("closing redis client", zap.Error(err))
		}
	}
}
