package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recommendation sources
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
	SourceEmpty    = "empty"
)

// Model call outcomes
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeInvalid = "invalid"
)

// Cache lookup results
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Collector handles metrics collection and reporting for the
// recommendation path. A nil *Collector is valid and records nothing.
type Collector struct {
	registry        *prometheus.Registry
	recommendations *prometheus.CounterVec
	modelCalls      *prometheus.HistogramVec
	cacheRequests   *prometheus.CounterVec
}

// NewCollector creates a new metrics collector with its own registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	recommendations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hospitalhub",
			Name:      "recommendations_total",
			Help:      "Recommendation responses produced, by source",
		},
		[]string{"source"},
	)

	modelCalls := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hospitalhub",
			Name:      "model_call_duration_seconds",
			Help:      "Time spent waiting on the language model",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		},
		[]string{"outcome"},
	)

	cacheRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hospitalhub",
			Name:      "recommendation_cache_requests_total",
			Help:      "Response cache lookups, by result",
		},
		[]string{"result"},
	)

	registry.MustRegister(recommendations, modelCalls, cacheRequests)

	return &Collector{
		registry:        registry,
		recommendations: recommendations,
		modelCalls:      modelCalls,
		cacheRequests:   cacheRequests,
	}
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Recommendations returns the responses counter
func (c *Collector) Recommendations() *prometheus.CounterVec {
	return c.recommendations
}

// ModelCalls returns the model latency histogram
func (c *Collector) ModelCalls() *prometheus.HistogramVec {
	return c.modelCalls
}

// CacheRequests returns the cache lookup counter
func (c *Collector) CacheRequests() *prometheus.CounterVec {
	return c.cacheRequests
}

// Handler serves the collector's registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordRecommendation counts a produced response
func (c *Collector) RecordRecommendation(source string) {
	if c == nil {
		return
	}
	c.recommendations.WithLabelValues(source).Inc()
}

// RecordModelCall observes one model round trip
func (c *Collector) RecordModelCall(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.modelCalls.WithLabelValues(outcome).Observe(d.Seconds())
}

// RecordCache counts a cache lookup
func (c *Collector) RecordCache(result string) {
	if c == nil {
		return
	}
	c.cacheRequests.WithLabelValues(result).Inc()
}
