package ingestion

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the Prometheus instruments of the webhook ingress. Counters are
// labelled by platform so one misbehaving integration is visible on its own.
type Metrics struct {
	Received   *prometheus.CounterVec
	Accepted   *prometheus.CounterVec
	Duplicates *prometheus.CounterVec
	Malformed  *prometheus.CounterVec
	Rejected   *prometheus.CounterVec
	Duration   prometheus.Histogram
}

// NewMetrics creates and registers the ingestion metrics on the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Received: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestion_webhooks_received_total",
				Help: "Total number of webhook deliveries received",
			},
			[]string{"platform"},
		),
		Accepted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestion_orders_accepted_total",
				Help: "Total number of webhooks that created a new order",
			},
			[]string{"platform"},
		),
		Duplicates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestion_duplicates_total",
				Help: "Total number of webhook redeliveries absorbed by idempotency",
			},
			[]string{"platform"},
		),
		Malformed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestion_malformed_total",
				Help: "Total number of webhooks rejected as malformed",
			},
			[]string{"platform"},
		),
		Rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestion_signature_rejections_total",
				Help: "Total number of webhooks rejected for a bad signature",
			},
			[]string{"platform"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingestion_processing_duration_seconds",
				Help:    "Duration of webhook normalization and persistence",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	reg.MustRegister(m.Received, m.Accepted, m.Duplicates, m.Malformed, m.Rejected, m.Duration)
	return m
}
