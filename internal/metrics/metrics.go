// Package metrics exposes engine observability (orders received/matched/
// cancelled/resting, trades executed, event latency) as
// prometheus/client_golang collectors, registered against a private
// registry and served through promhttp.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the engine reports into; the HTTP layer
// only serves them.
type Metrics struct {
	registry *prometheus.Registry

	OrdersReceived  prometheus.Counter
	OrdersMatched   prometheus.Counter
	OrdersCancelled prometheus.Counter
	OrdersResting   prometheus.Gauge
	TradesExecuted  prometheus.Counter
	EventLatency    prometheus.Histogram
}

// New registers and returns a fresh Metrics against a private registry,
// so this package never pollutes prometheus's global DefaultRegisterer.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		OrdersReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketsim_orders_received_total",
			Help: "Total number of order-placement events received.",
		}),
		OrdersMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketsim_orders_matched_total",
			Help: "Total number of placed orders that traded against the book on arrival.",
		}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketsim_orders_cancelled_total",
			Help: "Total number of cancel-order events applied.",
		}),
		OrdersResting: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "marketsim_orders_resting",
			Help: "Current number of orders resting across every book.",
		}),
		TradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketsim_trades_executed_total",
			Help: "Total number of trades settled.",
		}),
		EventLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "marketsim_event_latency_seconds",
			Help:    "Latency of engine event processing.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 16),
		}),
	}

	registry.MustRegister(
		m.OrdersReceived,
		m.OrdersMatched,
		m.OrdersCancelled,
		m.OrdersResting,
		m.TradesExecuted,
		m.EventLatency,
	)
	return m
}

// Handler returns the promhttp handler serving this registry's
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveEventLatency records how long one engine event took to process.
func (m *Metrics) ObserveEventLatency(d time.Duration) {
	m.EventLatency.Observe(d.Seconds())
}
