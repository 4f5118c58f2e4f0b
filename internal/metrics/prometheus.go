// Package metrics provides Prometheus metrics for the roof customizer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for resolutions.
const (
	OutcomeHit      = "hit"
	OutcomeFallback = "fallback"
)

// Metrics groups every collector the service exports.
type Metrics struct {
	registry *prometheus.Registry

	Resolutions     *prometheus.CounterVec
	CatalogReloads  *prometheus.CounterVec
	CatalogEntries  prometheus.Gauge
	RequestDuration *prometheus.HistogramVec
	PreviewCache    *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Resolutions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roof_resolutions_total",
				Help: "Total number of selection resolutions by outcome",
			},
			[]string{"outcome"},
		),

		CatalogReloads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roof_catalog_reloads_total",
				Help: "Total number of catalog reload attempts",
			},
			[]string{"status"},
		),

		CatalogEntries: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "roof_catalog_entries",
				Help: "Number of keyed entries in the active catalog",
			},
		),

		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roof_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "code"},
		),

		PreviewCache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roof_preview_cache_total",
				Help: "Preview image cache lookups",
			},
			[]string{"result"},
		),
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordResolution counts one resolution.
func (m *Metrics) RecordResolution(fallback bool) {
	if m == nil {
		return
	}
	outcome := OutcomeHit
	if fallback {
		outcome = OutcomeFallback
	}
	m.Resolutions.WithLabelValues(outcome).Inc()
}

// RecordReload counts a catalog reload and, on success, the new size.
func (m *Metrics) RecordReload(entries int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.CatalogReloads.WithLabelValues("error").Inc()
		return
	}
	m.CatalogReloads.WithLabelValues("success").Inc()
	m.CatalogEntries.Set(float64(entries))
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, code).Observe(d.Seconds())
}

// RecordPreviewCache counts a preview cache hit or miss.
func (m *Metrics) RecordPreviewCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.PreviewCache.WithLabelValues("hit").Inc()
		return
	}
	m.PreviewCache.WithLabelValues("miss").Inc()
}
