// Package metrics exposes Prometheus instruments for session acquisition and
// bridge traffic. A nil *Collector is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "linkedin_mcp"

// Transport labels.
const (
	TransportBridge = "bridge"
	TransportDirect = "direct"
)

// Fallback reasons.
const (
	ReasonBridgeUnavailable = "bridge_unavailable"
	ReasonBridgeError       = "bridge_error"
)

// Collector owns the instruments and the registry they are registered on.
type Collector struct {
	registry *prometheus.Registry

	acquisitions   *prometheus.CounterVec
	fallbacks      *prometheus.CounterVec
	bridgeRequests *prometheus.HistogramVec
	bridgeTracked  prometheus.Gauge
	extractions    *prometheus.CounterVec
}

// New creates a Collector on its own registry, alongside the Go runtime and
// process collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		acquisitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_acquisitions_total",
			Help:      "Browser sessions handed out, by transport.",
		}, []string{"transport"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bridge_fallbacks_total",
			Help:      "Times the direct driver was used because the bridge could not serve.",
		}, []string{"reason"}),
		bridgeRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bridge_request_duration_seconds",
			Help:      "Latency of bridge HTTP calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
		bridgeTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bridge_sessions_tracked",
			Help:      "Bridge sessions currently held by the adapter.",
		}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Profile extractions, by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	reg.MustRegister(
		c.acquisitions,
		c.fallbacks,
		c.bridgeRequests,
		c.bridgeTracked,
		c.extractions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) SessionAcquired(transport string) {
	if c == nil {
		return
	}
	c.acquisitions.WithLabelValues(transport).Inc()
}

func (c *Collector) BridgeFallback(reason string) {
	if c == nil {
		return
	}
	c.fallbacks.WithLabelValues(reason).Inc()
}

func (c *Collector) ObserveBridgeRequest(operation string, err error, elapsed time.Duration) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.bridgeRequests.WithLabelValues(operation, outcome).Observe(elapsed.Seconds())
}

func (c *Collector) SetBridgeSessionsTracked(n int) {
	if c == nil {
		return
	}
	c.bridgeTracked.Set(float64(n))
}

func (c *Collector) ExtractionFinished(kind string, failed bool) {
	if c == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	c.extractions.WithLabelValues(kind, outcome).Inc()
}
