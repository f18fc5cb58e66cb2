package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Submissions    *prometheus.CounterVec
	Retries        prometheus.Counter
	SubmitDuration prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "herald_delivery_submissions_total",
			Help: "Total number of completed deliveries by lane and outcome",
		}, []string{"lane", "outcome"}),
		Retries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "herald_delivery_retries_total",
			Help: "Total number of delivery attempts retried after a transient failure",
		}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "herald_delivery_submit_duration_seconds",
			Help:    "Latency of individual submission attempts",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

func (m *Metrics) ObserveSubmission(lane, outcome string) {
	m.Submissions.WithLabelValues(lane, outcome).Inc()
}

func (m *Metrics) IncrementRetries() {
	m.Retries.Inc()
}

func (m *Metrics) ObserveSubmitDuration(d time.Duration) {
	m.SubmitDuration.Observe(d.Seconds())
}
