package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's Prometheus instruments. Dropped messages are
// deliberately counted: ingress drops on broker outage are accepted behavior,
// but they must never be invisible.
type Metrics struct {
	WebhooksReceived  prometheus.Counter
	WebhooksPublished prometheus.Counter
	WebhooksDropped   prometheus.Counter

	MessagesProcessed *prometheus.CounterVec
	VerifyFailures    prometheus.Counter
	ProcessingTime    prometheus.Histogram
}

// New registers the pipeline metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		WebhooksReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "webhooks_received_total",
			Help: "Webhook requests accepted at the ingress endpoint.",
		}),
		WebhooksPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "webhooks_published_total",
			Help: "Envelopes published to the durable queue.",
		}),
		WebhooksDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "webhooks_dropped_total",
			Help: "Envelopes dropped at ingress (broker unavailable or missing headers).",
		}),
		MessagesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_messages_total",
			Help: "Messages consumed by the worker, by outcome.",
		}, []string{"outcome"}),
		VerifyFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "worker_verify_failures_total",
			Help: "Messages dropped for signature verification failure.",
		}),
		ProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_processing_seconds",
			Help:    "Time spent reconciling one message.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Worker outcome labels.
const (
	OutcomeAcked    = "acked"
	OutcomeRejected = "rejected"
	OutcomeDropped  = "dropped"
)
