package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	JobsCreated     prometheus.Counter
	OfficesTargeted prometheus.Counter
	StatusReads     prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		JobsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "herald_delivery_jobs_created_total",
			Help: "Total number of delivery jobs created",
		}),
		OfficesTargeted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "herald_delivery_offices_targeted_total",
			Help: "Total number of offices targeted across all delivery jobs",
		}),
		StatusReads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "herald_delivery_status_reads_total",
			Help: "Total number of job status reads",
		}),
	}
}

func (m *Metrics) IncrementJobsCreated() {
	m.JobsCreated.Inc()
}

func (m *Metrics) AddOfficesTargeted(n int) {
	m.OfficesTargeted.Add(float64(n))
}

func (m *Metrics) IncrementStatusReads() {
	m.StatusReads.Inc()
}
