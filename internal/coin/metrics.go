package coin

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the estimation pipeline.
type Metrics struct {
	Registry         *prometheus.Registry
	EstimatesTotal   *prometheus.CounterVec
	ExternalErrors   *prometheus.CounterVec
	CallDuration     *prometheus.HistogramVec
	ListingsDropped  prometheus.Counter
	ListingsReceived prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	estimates := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coinvault_estimates_total",
			Help: "Total estimation runs by outcome.",
		},
		[]string{"outcome"},
	)
	externalErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coinvault_external_errors_total",
			Help: "Total external collaborator failures by service.",
		},
		[]string{"service"},
	)
	callDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coinvault_external_call_duration_seconds",
			Help:    "Latency of external collaborator calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	listingsDropped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coinvault_listings_dropped_total",
			Help: "Total listings rejected by the coin-like filter.",
		},
	)
	listingsReceived := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coinvault_listings_received_total",
			Help: "Total listings returned by the shopping search.",
		},
	)

	registry.MustRegister(estimates, externalErrors, callDuration, listingsDropped, listingsReceived)

	return &Metrics{
		Registry:         registry,
		EstimatesTotal:   estimates,
		ExternalErrors:   externalErrors,
		CallDuration:     callDuration,
		ListingsDropped:  listingsDropped,
		ListingsReceived: listingsReceived,
	}
}

// IncEstimate increments the estimates counter for an outcome label.
func (m *Metrics) IncEstimate(outcome string) {
	if m == nil {
		return
	}
	m.EstimatesTotal.WithLabelValues(outcome).Inc()
}

// IncExternalError increments the external error counter for a service.
func (m *Metrics) IncExternalError(service string) {
	if m == nil {
		return
	}
	m.ExternalErrors.WithLabelValues(service).Inc()
}

// ObserveCall records an external call duration for a service.
func (m *Metrics) ObserveCall(service string, d time.Duration) {
	if m == nil {
		return
	}
	m.CallDuration.WithLabelValues(service).Observe(d.Seconds())
}

// ObserveListings records how many listings arrived and how many were dropped.
func (m *Metrics) ObserveListings(received, kept int) {
	if m == nil {
		return
	}
	m.ListingsReceived.Add(float64(received))
	m.ListingsDropped.Add(float64(received - kept))
}
