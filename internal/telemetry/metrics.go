package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CarrierErrors   *prometheus.CounterVec
	CarrierWarnings *prometheus.CounterVec
	PriceSources    *prometheus.CounterVec
	BreakerState    *prometheus.GaugeVec
}

// NewMetrics creates metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulfillment_requests_total",
				Help: "Total number of requests by operation, carrier, and status",
			},
			[]string{"operation", "carrier", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fulfillment_request_duration_seconds",
				Help:    "Request duration in seconds by operation and carrier",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "carrier"},
		),
		CarrierErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulfillment_carrier_errors_total",
				Help: "Total carrier API errors by carrier and error type",
			},
			[]string{"carrier", "error_type"},
		),
		CarrierWarnings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulfillment_carrier_warnings_total",
				Help: "Non-fatal carrier status entries by carrier and status code",
			},
			[]string{"carrier", "code"},
		),
		PriceSources: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulfillment_price_quotes_total",
				Help: "Computed prices by carrier and price source",
			},
			[]string{"carrier", "source"},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fulfillment_carrier_circuit_open",
				Help: "1 when the carrier circuit breaker is open, 0 otherwise",
			},
			[]string{"carrier"},
		),
	}
}

// RecordRequest records a request metric.
func (m *Metrics) RecordRequest(operation, carrier, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, carrier, status).Inc()
	m.RequestDuration.WithLabelValues(operation, carrier).Observe(duration)
}

// RecordError records a carrier error metric.
func (m *Metrics) RecordError(carrier, errorType string) {
	m.CarrierErrors.WithLabelValues(carrier, errorType).Inc()
}

// RecordCarrierWarning records a non-fatal carrier status.
func (m *Metrics) RecordCarrierWarning(carrier, code string) {
	m.CarrierWarnings.WithLabelValues(carrier, code).Inc()
}

// RecordPriceSource records where a computed price came from.
func (m *Metrics) RecordPriceSource(carrier, source string) {
	m.PriceSources.WithLabelValues(carrier, source).Inc()
}

// RecordBreakerState records a circuit breaker transition.
func (m *Metrics) RecordBreakerState(carrier, state string) {
	open := 0.0
	if state == "open" {
		open = 1
	}
	m.BreakerState.WithLabelValues(carrier).Set(open)
}
