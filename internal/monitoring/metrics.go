package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the prometheus registry and the metrics describing
// inventory activity.
type Collector struct {
	registry *prometheus.Registry

	mutations        *prometheus.CounterVec
	rejections       *prometheus.CounterVec
	snapshotFailures prometheus.Counter
	beverages        prometheus.Gauge
	outOfStock       prometheus.Gauge
}

// NewCollector creates a collector with all metrics registered.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	mutations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dryckeslager_mutations_total",
			Help: "Number of applied inventory mutations",
		},
		[]string{"action"},
	)

	rejections := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dryckeslager_rejections_total",
			Help: "Number of rejected store operations",
		},
		[]string{"reason"},
	)

	snapshotFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dryckeslager_snapshot_failures_total",
			Help: "Number of failed snapshot writes",
		},
	)

	beverages := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dryckeslager_beverages",
			Help: "Number of tracked beverages",
		},
	)

	outOfStock := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dryckeslager_out_of_stock",
			Help: "Number of beverages with zero stock",
		},
	)

	registry.MustRegister(mutations, rejections, snapshotFailures, beverages, outOfStock)

	return &Collector{
		registry:         registry,
		mutations:        mutations,
		rejections:       rejections,
		snapshotFailures: snapshotFailures,
		beverages:        beverages,
		outOfStock:       outOfStock,
	}
}

// RecordMutation counts an applied mutation by action name.
func (c *Collector) RecordMutation(action string) {
	c.mutations.WithLabelValues(action).Inc()
}

// RecordRejection counts a rejected operation by reason.
func (c *Collector) RecordRejection(reason string) {
	c.rejections.WithLabelValues(reason).Inc()
}

// RecordSnapshotFailure counts a failed durable write.
func (c *Collector) RecordSnapshotFailure() {
	c.snapshotFailures.Inc()
}

// SetStockGauges updates the beverage count gauges.
func (c *Collector) SetStockGauges(total, outOfStock int) {
	c.beverages.Set(float64(total))
	c.outOfStock.Set(float64(outOfStock))
}

// Handler returns the HTTP handler serving the registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
