package clinicsync

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors of one orchestrator.
type Metrics struct {
	mutations    *prometheus.CounterVec
	pushAttempts *prometheus.CounterVec
	pushes       *prometheus.CounterVec
	pulls        *prometheus.CounterVec
	pushDuration prometheus.Histogram
	status       *prometheus.GaugeVec
	lastSynced   prometheus.Gauge
}

var allStatuses = []Status{StatusIdle, StatusSyncing, StatusSynced, StatusError, StatusOffline}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicsync",
			Name:      "mutations_total",
			Help:      "Snapshot mutations committed locally, by mode.",
		}, []string{"mode"}),
		pushAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicsync",
			Name:      "push_attempts_total",
			Help:      "Remote write attempts, by result.",
		}, []string{"result"}),
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicsync",
			Name:      "pushes_total",
			Help:      "Completed pushes, by outcome.",
		}, []string{"outcome"}),
		pulls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicsync",
			Name:      "pulls_total",
			Help:      "Pulls, by outcome.",
		}, []string{"outcome"}),
		pushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinicsync",
			Name:      "push_duration_seconds",
			Help:      "Time from the first attempt to the end of a push, backoff included.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "clinicsync",
			Name:      "status",
			Help:      "1 for the current sync status, 0 otherwise.",
		}, []string{"status"}),
		lastSynced: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clinicsync",
			Name:      "last_synced_timestamp_seconds",
			Help:      "Unix time of the last successful push or pull.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.mutations, m.pushAttempts, m.pushes, m.pulls, m.pushDuration, m.status, m.lastSynced)
	}
	return m
}

func (m *Metrics) setStatus(s Status) {
	for _, st := range allStatuses {
		v := 0.0
		if st == s {
			v = 1
		}
		m.status.WithLabelValues(string(st)).Set(v)
	}
}

func (m *Metrics) synced(at time.Time) {
	m.lastSynced.Set(float64(at.Unix()))
}
