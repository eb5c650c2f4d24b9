package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records order settlement outcomes.
type CheckoutMetrics struct {
	duration  *prometheus.HistogramVec
	settled   *prometheus.CounterVec
	failed    *prometheus.CounterVec
	anomalies *prometheus.CounterVec
}

// NewCheckoutMetrics registers the settlement metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_settlement_duration_seconds",
		Help:    "Duration of order settlement transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_settled",
		Help: "Orders settled and persisted.",
	}, []string{"delivery_zone"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_settlement_failures",
		Help: "Settlement transactions that failed to commit.",
	}, []string{"reason"})
	anomalies := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_inventory_anomalies",
		Help: "Cart lines skipped during settlement because of inventory anomalies.",
	}, []string{"kind"})
	reg.MustRegister(duration, settled, failed, anomalies)
	return &CheckoutMetrics{
		duration:  duration,
		settled:   settled,
		failed:    failed,
		anomalies: anomalies,
	}
}

// ObserveSettlement records how long a settlement attempt took.
func (c *CheckoutMetrics) ObserveSettlement(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncSettled increments the settled order counter for the delivery zone.
func (c *CheckoutMetrics) IncSettled(zone string) {
	if c == nil || c.settled == nil {
		return
	}
	c.settled.WithLabelValues(normalizeLabel(zone)).Inc()
}

// IncFailure increments the settlement failure counter.
func (c *CheckoutMetrics) IncFailure(reason string) {
	if c == nil || c.failed == nil {
		return
	}
	c.failed.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncAnomaly counts a skipped cart line (missing product, zero stock).
func (c *CheckoutMetrics) IncAnomaly(kind string) {
	if c == nil || c.anomalies == nil {
		return
	}
	c.anomalies.WithLabelValues(normalizeLabel(kind)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
