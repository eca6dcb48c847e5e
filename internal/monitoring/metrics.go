package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// filterChanges counts filter setter calls by filter name and outcome.
	filterChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aco_dashboard_filter_changes_total",
		Help: "Filter setter calls by filter and result (applied, ignored)",
	}, []string{"filter", "result"})

	// chartRenders counts rendered chart slots.
	chartRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aco_dashboard_chart_renders_total",
		Help: "Chart renders by slot",
	}, []string{"slot"})

	// renderDuration tracks page and chart render latency.
	renderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aco_dashboard_render_duration_seconds",
		Help:    "Render duration in seconds by target",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
	}, []string{"target"})

	// exports counts CSV and PDF downloads.
	exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aco_dashboard_exports_total",
		Help: "Exports by kind and format",
	}, []string{"kind", "format"})

	// geoFetches counts boundary fetches by outcome.
	geoFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aco_dashboard_geo_fetch_total",
		Help: "Geographic boundary fetches by result (ok, cached, fallback)",
	}, []string{"result"})

	// projectionRuns counts projection recomputes by trigger.
	projectionRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aco_dashboard_projection_runs_total",
		Help: "Projection recomputes by trigger (debounced, immediate)",
	}, []string{"trigger"})
)

// RecordFilterChange counts one setter call.
func RecordFilterChange(filter string, applied bool) {
	result := "ignored"
	if applied {
		result = "applied"
	}
	filterChanges.WithLabelValues(filter, result).Inc()
}

// RecordChartRender counts one chart render for a slot.
func RecordChartRender(slot string) {
	chartRenders.WithLabelValues(slot).Inc()
}

// ObserveRender records how long rendering target took since start.
func ObserveRender(target string, start time.Time) {
	renderDuration.WithLabelValues(target).Observe(time.Since(start).Seconds())
}

// RecordExport counts one export download.
func RecordExport(kind, format string) {
	exports.WithLabelValues(kind, format).Inc()
}

// RecordGeoFetch counts one boundary fetch outcome.
func RecordGeoFetch(result string) {
	geoFetches.WithLabelValues(result).Inc()
}

// RecordProjection counts one projection recompute.
func RecordProjection(trigger string) {
	projectionRuns.WithLabelValues(trigger).Inc()
}
