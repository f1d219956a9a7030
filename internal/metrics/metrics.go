// Package metrics exposes Prometheus counters for rate limit decisions,
// logins and served quotes.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quote-api/middleware/ratelimit/domain"
)

const namespace = "quote_api"

// Login outcomes.
const (
	LoginSucceeded      = "success"
	LoginAlreadyLogged  = "already_logged_in"
	LoginRateLimited    = "rate_limited"
	LoginSaveFailed     = "save_failed"
	LoginInvalidRequest = "invalid_request"
)

// Metrics owns its registry so several instances (one per test) never collide.
type Metrics struct {
	registry *prometheus.Registry

	RateLimitDecisions *prometheus.CounterVec
	Logins             *prometheus.CounterVec
	QuotesServed       prometheus.Counter

	InFlight              prometheus.Gauge
	ConcurrencyRejections prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RateLimitDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_decisions_total",
			Help:      "Rate limit decisions per route, labelled allowed or denied",
		}, []string{"route", "decision"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"}),
		QuotesServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_served_total",
			Help:      "Quotes returned to logged in clients",
		}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inflight_requests",
			Help:      "Requests currently holding a concurrency slot",
		}),
		ConcurrencyRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "concurrency_rejections_total",
			Help:      "Requests rejected because no concurrency slot freed up in time",
		}),
	}
	m.registry.MustRegister(
		m.RateLimitDecisions,
		m.Logins,
		m.QuotesServed,
		m.InFlight,
		m.ConcurrencyRejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Record implements domain.StatsStore. Only the route label is kept; client
// keys would explode cardinality.
func (m *Metrics) Record(_ context.Context, ev domain.StatsEvent) error {
	decision := "allowed"
	if !ev.Allowed {
		decision = "denied"
	}
	route := ev.Route
	if route == "" {
		route = ev.Method + " " + ev.Path
	}
	m.RateLimitDecisions.WithLabelValues(route, decision).Inc()
	return nil
}

func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) QuoteServed() {
	if m == nil {
		return
	}
	m.QuotesServed.Inc()
}

// SlotAcquired, SlotReleased and SlotRejected implement domain.SlotObserver.
func (m *Metrics) SlotAcquired(inUse int) { m.InFlight.Set(float64(inUse)) }
func (m *Metrics) SlotReleased(inUse int) { m.InFlight.Set(float64(inUse)) }
func (m *Metrics) SlotRejected()          { m.ConcurrencyRejections.Inc() }

var (
	_ domain.StatsStore   = (*Metrics)(nil)
	_ domain.SlotObserver = (*Metrics)(nil)
)

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
