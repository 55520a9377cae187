// Package metrics exposes Prometheus instrumentation for the calculator,
// the price store, the price cache and the HTTP API.
package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/cache"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/usecase/calculator"
)

const namespace = "ifyouinvest"

// Metrics holds the collectors registered on one registry
type Metrics struct {
	reg prometheus.Registerer

	// calculations counts Calculate calls by outcome
	calculations *prometheus.CounterVec

	// calculationDuration tracks Calculate latency by outcome
	calculationDuration *prometheus.HistogramVec

	// extrapolations counts reports that needed projected prices, by
	// whether the projection hit the point cap
	extrapolations *prometheus.CounterVec

	// queryDuration tracks price store latency by operation
	queryDuration *prometheus.HistogramVec

	// httpRequests counts API requests by route, method and status code
	httpRequests *prometheus.CounterVec
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		calculations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Total calculations by outcome",
		}, []string{"outcome"}),
		calculationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_seconds",
			Help:      "Calculation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		}, []string{"outcome"}),
		extrapolations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extrapolations_total",
			Help:      "Total calculations that projected prices past the stored history",
		}, []string{"capped"}),
		queryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "price_query_duration_seconds",
			Help:      "Price store query duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"operation"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP API requests by route, method and status code",
		}, []string{"route", "method", "code"}),
	}
}

// Outcome classifies err for the outcome label
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrNoData):
		return "no_data"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(route, method string, code int) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
}

// RegisterCache exports the counters of a cache under name
func (m *Metrics) RegisterCache(name string, stats func() cache.Stats) {
	f := promauto.With(m.reg)
	labels := prometheus.Labels{"cache": name}
	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "cache_hits_total",
		Help:        "Total cache hits",
		ConstLabels: labels,
	}, func() float64 { return float64(stats().Hits) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "cache_misses_total",
		Help:        "Total cache misses",
		ConstLabels: labels,
	}, func() float64 { return float64(stats().Misses) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "cache_evictions_total",
		Help:        "Total entries evicted for size",
		ConstLabels: labels,
	}, func() float64 { return float64(stats().Evictions) })
}

// Calculator wraps next so every call is counted and timed
func (m *Metrics) Calculator(next calculator.Calculator) calculator.Calculator {
	return &instrumentedCalculator{next: next, m: m}
}

type instrumentedCalculator struct {
	next calculator.Calculator
	m    *Metrics
}

func (c *instrumentedCalculator) Calculate(ctx context.Context, req calculator.Request) (*calculator.Report, error) {
	start := time.Now()
	report, err := c.next.Calculate(ctx, req)

	outcome := Outcome(err)
	c.m.calculations.WithLabelValues(outcome).Inc()
	c.m.calculationDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	if report != nil && report.Extrapolated {
		c.m.extrapolations.WithLabelValues(strconv.FormatBool(report.ExtrapolationCapped)).Inc()
	}
	return report, err
}

func (c *instrumentedCalculator) Prices(ctx context.Context, r date.Range) (domain.PriceSeries, error) {
	return c.next.Prices(ctx, r)
}

// PriceStore wraps next so every store call is timed
func (m *Metrics) PriceStore(next domain.PriceStore) domain.PriceStore {
	return &instrumentedStore{next: next, m: m}
}

type instrumentedStore struct {
	next domain.PriceStore
	m    *Metrics
}

func (s *instrumentedStore) observe(op string, start time.Time) {
	s.m.queryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *instrumentedStore) Latest(ctx context.Context) (domain.PricePoint, error) {
	defer s.observe("latest", time.Now())
	return s.next.Latest(ctx)
}

func (s *instrumentedStore) Series(ctx context.Context, r date.Range) (domain.PriceSeries, error) {
	defer s.observe("series", time.Now())
	return s.next.Series(ctx, r)
}

func (s *instrumentedStore) Upsert(ctx context.Context, points []domain.PricePoint) error {
	defer s.observe("upsert", time.Now())
	return s.next.Upsert(ctx, points)
}
