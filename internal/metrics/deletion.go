package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DeletionMetrics records account deletion outcomes.
type DeletionMetrics struct {
	runs      *prometheus.CounterVec
	documents *prometheus.CounterVec
	batches   prometheus.Counter
	duration  *prometheus.HistogramVec
	pending   prometheus.Gauge
}

// NewDeletionMetrics registers the deletion metrics on reg. A nil registerer
// yields a no-op recorder.
func NewDeletionMetrics(reg prometheus.Registerer) *DeletionMetrics {
	if reg == nil {
		return &DeletionMetrics{}
	}
	m := &DeletionMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_deletion_runs_total",
			Help: "Account deletion attempts by mode and outcome.",
		}, []string{"mode", "outcome"}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_deletion_documents_total",
			Help: "Documents removed by account deletion, by collection.",
		}, []string{"collection"}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "account_deletion_batches_committed_total",
			Help: "Atomic delete batches committed.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "account_deletion_duration_seconds",
			Help:    "Duration of account deletion runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "account_deletion_identity_pending",
			Help: "Accounts whose data is gone but whose login still exists.",
		}),
	}
	reg.MustRegister(m.runs, m.documents, m.batches, m.duration, m.pending)
	return m
}

func (m *DeletionMetrics) ObserveRun(mode, outcome string, d time.Duration) {
	if m == nil || m.runs == nil {
		return
	}
	m.runs.WithLabelValues(label(mode), label(outcome)).Inc()
	m.duration.WithLabelValues(label(mode)).Observe(d.Seconds())
}

func (m *DeletionMetrics) AddDocuments(collection string, n int) {
	if m == nil || m.documents == nil || n <= 0 {
		return
	}
	m.documents.WithLabelValues(label(collection)).Add(float64(n))
}

func (m *DeletionMetrics) IncBatch() {
	if m == nil || m.batches == nil {
		return
	}
	m.batches.Inc()
}

func (m *DeletionMetrics) SetPending(n int) {
	if m == nil || m.pending == nil {
		return
	}
	m.pending.Set(float64(n))
}

func label(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
