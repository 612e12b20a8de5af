package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/bookthickness/pkg/observability"
)

// Metrics exports search, cache and HTTP activity to Prometheus. It
// implements the observability hook interfaces; Install registers it.
type Metrics struct {
	registry *prometheus.Registry

	searches       *prometheus.CounterVec
	searchDuration prometheus.Histogram
	pageLevels     *prometheus.CounterVec
	trialStates    prometheus.Histogram
	trials         *prometheus.CounterVec

	cacheLookups *prometheus.CounterVec
	cacheBytes   prometheus.Histogram

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

var (
	_ observability.SearchHooks = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
	_ observability.HTTPHooks   = (*Metrics)(nil)
)

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// Labels: "found", "not_found", "error"
		searches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bookthickness_searches_total",
			Help: "Thickness searches by outcome",
		}, []string{"result"}),
		searchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bookthickness_search_duration_seconds",
			Help:    "Wall time of thickness searches",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		pageLevels: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bookthickness_page_levels_total",
			Help: "Page counts tried, by page count and outcome",
		}, []string{"pages", "result"}),
		trialStates: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bookthickness_trial_states",
			Help:    "States explored per (spine, pages) trial",
			Buckets: prometheus.ExponentialBuckets(1, 4, 12),
		}),
		trials: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bookthickness_trials_total",
			Help: "Single (spine, pages) trials by outcome",
		}, []string{"result"}),

		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bookthickness_cache_lookups_total",
			Help: "Cache lookups by key type and result",
		}, []string{"type", "result"}),
		cacheBytes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bookthickness_cache_entry_bytes",
			Help:    "Size of cache entries written",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		}),

		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bookthickness_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bookthickness_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "bookthickness_http_in_flight_requests",
			Help: "Requests currently being served",
		}),
	}
}

// Install makes m the process-wide hook set.
func (m *Metrics) Install() {
	observability.SetSearchHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) OnSearchStart(context.Context, int, int) {}

func (m *Metrics) OnSearchComplete(_ context.Context, pages int, d time.Duration, err error) {
	switch {
	case err != nil:
		m.searches.WithLabelValues("error").Inc()
	case pages == 0:
		m.searches.WithLabelValues("not_found").Inc()
	default:
		m.searches.WithLabelValues("found").Inc()
	}
	m.searchDuration.Observe(d.Seconds())
}

func (m *Metrics) OnPagesStart(context.Context, int, int) {}

func (m *Metrics) OnPagesComplete(_ context.Context, pages int, found bool, _ time.Duration) {
	m.pageLevels.WithLabelValues(strconv.Itoa(pages), outcome(found)).Inc()
}

func (m *Metrics) OnTrialComplete(_ context.Context, _ int, found bool, explored int) {
	m.trials.WithLabelValues(outcome(found)).Inc()
	m.trialStates.Observe(float64(explored))
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheLookups.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheLookups.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, _ string, size int) {
	m.cacheBytes.Observe(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.inFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.inFlight.Dec()
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func outcome(found bool) string {
	if found {
		return "found"
	}
	return "not_found"
}
