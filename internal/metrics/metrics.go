// Package metrics records adapter-level Prometheus counters. Metrics are
// optional: recording is a no-op until InitMetrics is called, so library
// use never drags in a registry it does not want.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsTotal    *prometheus.CounterVec
	cacheEvictionsTotal *prometheus.CounterVec
	operationsTotal     *prometheus.CounterVec
	duplicateTitles     *prometheus.CounterVec

	metricsOnce       sync.Once
	metricsRegistered bool
)

// InitMetrics registers all Prometheus metrics. Call once at startup when
// metrics are enabled.
func InitMetrics() {
	metricsOnce.Do(func() {
		resolutionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kpsec_key_resolutions_total",
				Help: "Total number of master key resolutions by strategy",
			},
			[]string{"vault", "strategy"},
		)

		cacheEvictionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kpsec_key_cache_evictions_total",
				Help: "Total number of cached master keys evicted after a failed unlock",
			},
			[]string{"vault"},
		)

		operationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kpsec_operations_total",
				Help: "Total number of secret operations by outcome",
			},
			[]string{"operation", "status"},
		)

		duplicateTitles = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kpsec_duplicate_titles_total",
				Help: "Total number of duplicate entry titles filtered during enumeration",
			},
			[]string{"vault"},
		)

		metricsRegistered = true
	})
}

// RecordResolution records one master key resolution. Strategy is one of
// "delegated", "cache", "prompt".
func RecordResolution(vault, strategy string) {
	if !metricsRegistered || resolutionsTotal == nil {
		return
	}
	resolutionsTotal.WithLabelValues(vault, strategy).Inc()
}

// RecordEviction records one cache eviction.
func RecordEviction(vault string) {
	if !metricsRegistered || cacheEvictionsTotal == nil {
		return
	}
	cacheEvictionsTotal.WithLabelValues(vault).Inc()
}

// RecordOperation records one secret operation outcome. Status is
// "success" or "error".
func RecordOperation(operation, status string) {
	if !metricsRegistered || operationsTotal == nil {
		return
	}
	operationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuplicates records duplicate titles dropped during enumeration.
func RecordDuplicates(vault string, count int) {
	if !metricsRegistered || duplicateTitles == nil {
		return
	}
	duplicateTitles.WithLabelValues(vault).Add(float64(count))
}

// IsMetricsRegistered returns whether metrics have been initialized.
func IsMetricsRegistered() bool {
	return metricsRegistered
}
