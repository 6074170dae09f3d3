// Package observability holds the Prometheus metrics for the bot.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the application counters on its own registry, so tests can
// create collectors without duplicate-registration panics.
type Collector struct {
	registry *prometheus.Registry

	EventsReceived *prometheus.CounterVec
	EventFailures  prometheus.Counter
	RepliesSent    prometheus.Counter
}

// NewCollector creates and registers the metric set under the given namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	eventsReceived := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_received_total",
			Help:      "Total number of webhook events received, by kind",
		},
		[]string{"kind"},
	)
	eventFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_failures_total",
			Help:      "Total number of events whose reply could not be delivered",
		},
	)
	repliesSent := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_sent_total",
			Help:      "Total number of reply calls delivered to the messaging API",
		},
	)

	registry.MustRegister(eventsReceived, eventFailures, repliesSent)

	return &Collector{
		registry:       registry,
		EventsReceived: eventsReceived,
		EventFailures:  eventFailures,
		RepliesSent:    repliesSent,
	}
}

// Handler serves the collector's registry for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
