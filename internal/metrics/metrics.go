// Package metrics exports engine activity as Prometheus metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/sentropy/internal/engine"
	"github.com/roach88/sentropy/internal/ir"
)

const namespace = "sentropy"

var _ engine.Metrics = (*Collector)(nil)

// Collector records engine operations on its own registry.
type Collector struct {
	registry *prometheus.Registry

	// measurements counts generated measurements.
	// Labels: converged (true, false)
	measurements *prometheus.CounterVec

	historySize prometheus.Gauge
	cacheSize   prometheus.Gauge

	// alignments counts alignment calls.
	// Labels: result (ok, failed)
	alignments *prometheus.CounterVec

	// integrations counts integration attempts.
	// Labels: result (success, failure)
	integrations *prometheus.CounterVec

	separation     prometheus.Gauge
	validationRate prometheus.Gauge
}

// New creates a Collector with every metric registered on a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		measurements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "measurements_total",
			Help:      "Total measurements generated by convergence outcome",
		}, []string{"converged"}),
		historySize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_size",
			Help:      "Measurements currently retained in the history",
		}),
		cacheSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "coordinate_cache_size",
			Help:      "Coordinates currently held in the alignment cache",
		}),
		alignments: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alignments_total",
			Help:      "Total alignment calls by result",
		}, []string{"result"}),
		integrations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integration_attempts_total",
			Help:      "Total integration attempts by result",
		}, []string{"result"}),
		separation: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_separation",
			Help:      "Separation achieved by the most recent integration attempt",
		}),
		validationRate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "marker_validation_rate",
			Help:      "Fraction of records carrying the expected marker at the last validation",
		}),
	}
}

// Registry returns the registry the metrics are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveMeasurement implements engine.Metrics.
func (c *Collector) ObserveMeasurement(m ir.Measurement, historyLen int) {
	c.measurements.WithLabelValues(strconv.FormatBool(m.Converged)).Inc()
	c.historySize.Set(float64(historyLen))
}

// ObserveAlignment implements engine.Metrics.
func (c *Collector) ObserveAlignment(ok bool, cacheLen int) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	c.alignments.WithLabelValues(result).Inc()
	c.cacheSize.Set(float64(cacheLen))
}

// ObserveIntegration implements engine.Metrics.
func (c *Collector) ObserveIntegration(a ir.IntegrationAttempt, stats ir.IntegrationStats) {
	result := "success"
	if !a.Success {
		result = "failure"
	}
	c.integrations.WithLabelValues(result).Inc()
	c.separation.Set(stats.CurrentSeparation)
}

// ObserveValidation implements engine.Metrics.
func (c *Collector) ObserveValidation(r ir.ValidationReport) {
	c.validationRate.Set(r.Rate)
}
