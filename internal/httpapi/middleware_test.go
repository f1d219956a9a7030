package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-simpler.org/env"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"quote-api/middleware/ratelimit/domain"
	"quote-api/middleware/ratelimit/infra"
)

func TestRecoverPanics(t *testing.T) {
	e := newTestEnv(t, nil)
	h := e.srv.recoverPanics(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quote", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", decode[errorBody](t, w).Error)
}

func TestLogRequests(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := newTestEnv(t, env.Map{"APP_ENV": "development"}, func(d *Deps) {
		d.Logger = zap.New(core)
	})

	w := e.agent("10.0.0.7").do(http.MethodGet, "/nope?x=1", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/nope?x=1", fields["path"])
	assert.Equal(t, "10.0.0.7", fields["ip"])
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
}

func TestLogRequests_SilentInTestMode(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := newTestEnv(t, nil, func(d *Deps) {
		d.Logger = zap.New(core)
	})

	e.agent("10.0.0.7").do(http.MethodGet, "/nope", "")
	assert.Empty(t, logs.FilterMessage("request").All())
}

func TestConcurrencyRejectIsJSON(t *testing.T) {
	e := newTestEnv(t, env.Map{"CONCURRENCY_MAX": "1", "CONCURRENCY_TIMEOUT": "10ms"})

	release := make(chan struct{})
	entered := make(chan struct{})
	blocking := e.srv.chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		close(entered)
		<-release
		w.WriteHeader(http.StatusOK)
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		blocking.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}()
	<-entered

	w := httptest.NewRecorder()
	blocking.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	close(release)
	<-done

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Server busy. Try again later.", decode[errorBody](t, w).Error)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ConcurrencyRejections))
	assert.Equal(t, 0.0, testutil.ToFloat64(e.metrics.InFlight))
}

func TestBurstGuardRejectsWithJSON(t *testing.T) {
	e := newTestEnv(t, nil, func(d *Deps) {
		d.Burst = infra.NewBucketStore(0.001, 1)
	})
	a := e.agent("10.0.0.1")

	require.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/nope", "").Code)

	w := a.do(http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decode[errorBody](t, w)
	assert.Regexp(t, `^Too many requests\. Try again in \d+ seconds\.$`, body.Error)
	require.NotNil(t, body.RetrySecs)
	assert.Positive(t, *body.RetrySecs)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Burst"))

	assert.Equal(t, http.StatusNotFound, e.agent("10.0.0.2").do(http.MethodGet, "/nope", "").Code)
}

type failingStats struct{}

func (failingStats) Record(context.Context, domain.StatsEvent) error {
	return errors.New("redis: connection refused")
}

func TestStatsFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := newTestEnv(t, nil, func(d *Deps) {
		d.Logger = zap.New(core)
		d.Stats = failingStats{}
	})

	require.Equal(t, http.StatusOK, e.agent("10.0.0.1").login().Code)

	entries := logs.FilterMessage("rate limit stats record failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, RouteLogin, entries[0].ContextMap()["route"])
}
