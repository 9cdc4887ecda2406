package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the negotiation area.
type Metrics struct {
	SubmissionsCreated  prometheus.Counter
	SubmissionsAmended  prometheus.Counter
	FeedbackReconciled  prometheus.Counter
	FeedbackAccepted    prometheus.Counter
	FeedbackDeclined    prometheus.Counter
	ConcurrencyConflict prometheus.Counter
}

// New creates and registers all negotiation metrics.
func New() *Metrics {
	return &Metrics{
		SubmissionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dealdesk_submissions_created_total",
			Help: "Total number of deal submissions created",
		}),
		SubmissionsAmended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dealdesk_submissions_amended_total",
			Help: "Total number of submission amendments persisted",
		}),
		FeedbackReconciled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dealdesk_feedback_reconciled_total",
			Help: "Total number of feedback reconciliations applied after amendments",
		}),
		FeedbackAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dealdesk_feedback_accepted_total",
			Help: "Total number of feedback acceptances",
		}),
		FeedbackDeclined: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dealdesk_feedback_declined_total",
			Help: "Total number of feedback declines",
		}),
		ConcurrencyConflict: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dealdesk_concurrency_conflicts_total",
			Help: "Total number of writes rejected for a stale version token",
		}),
	}
}
