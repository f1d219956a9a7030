// Package httpapi wires the HTTP surface of the service: routes, handlers,
// rate limiters and the ambient middleware chain.
package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"quote-api/internal/apidocs"
	"quote-api/internal/config"
	"quote-api/internal/metrics"
	"quote-api/internal/quotes"
	"quote-api/internal/session"
	"quote-api/middleware/ratelimit/domain"
	"quote-api/middleware/ratelimit/infra"
)

// Route names scope the rate limit counters.
const (
	RouteLogin = "login"
	RouteQuote = "quote"
)

type Deps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Sessions *session.Store
	Quotes   *quotes.Book
	// Counters holds the fixed-window counters of both route limiters.
	Counters domain.WindowStore
	// Clock drives the limiters. Defaults to the real clock.
	Clock clockwork.Clock
	// Stats receives every rate limit decision. Optional.
	Stats domain.StatsStore
	// Burst enables the global token bucket guard. Optional.
	Burst   domain.LimiterStore
	Metrics *metrics.Metrics
}

type Server struct {
	cfg      *config.Config
	log      *zap.Logger
	sessions *session.Store
	quotes   *quotes.Book
	counters domain.WindowStore
	clock    clockwork.Clock
	stats    domain.StatsStore
	burst    domain.LimiterStore
	metrics  *metrics.Metrics
	docs     *apidocs.Docs

	handler http.Handler
}

func New(d Deps) (*Server, error) {
	if d.Config == nil {
		return nil, errors.New("httpapi: config is required")
	}
	if d.Sessions == nil {
		return nil, errors.New("httpapi: session store is required")
	}
	if d.Quotes == nil {
		return nil, errors.New("httpapi: quote book is required")
	}
	if d.Counters == nil {
		return nil, errors.New("httpapi: counter store is required")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}

	s := &Server{
		cfg:      d.Config,
		log:      d.Logger,
		sessions: d.Sessions,
		quotes:   d.Quotes,
		counters: d.Counters,
		clock:    d.Clock,
		burst:    d.Burst,
		metrics:  d.Metrics,
	}

	var stats infra.MultiStats
	if d.Stats != nil {
		stats = append(stats, d.Stats)
	}
	if d.Metrics != nil {
		stats = append(stats, d.Metrics)
	}
	if len(stats) > 0 {
		s.stats = stats
	}

	docs, err := apidocs.New(d.Config.Port, http.HandlerFunc(s.handleNotFound))
	if err != nil {
		return nil, fmt.Errorf("load api docs: %w", err)
	}
	s.docs = docs

	s.handler = s.routes()
	return s, nil
}

// Handler returns the root handler with the full middleware chain.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
