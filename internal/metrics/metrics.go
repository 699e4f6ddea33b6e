// Package metrics exposes Prometheus counters for remote calls, audit writes,
// resyncs and optimistic mutations. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flooring"

type Metrics struct {
	remoteCalls    *prometheus.CounterVec
	remoteDuration *prometheus.HistogramVec
	auditWrites    *prometheus.CounterVec
	resyncs        *prometheus.CounterVec
	mutations      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg (when non-nil).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		remoteCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_calls_total",
				Help:      "Calls to the sheet backend by action and status.",
			},
			[]string{"action", "status"},
		),
		remoteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "remote_call_duration_seconds",
				Help:      "Latency of sheet backend calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"action"},
		),
		auditWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audit_writes_total",
				Help:      "Audit log entries written, by status.",
			},
			[]string{"status"},
		),
		resyncs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resyncs_total",
				Help:      "Full collection reloads, by status.",
			},
			[]string{"status"},
		),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mutations_total",
				Help:      "Optimistic mutations applied, by operation and outcome.",
			},
			[]string{"op", "outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.remoteCalls, m.remoteDuration, m.auditWrites, m.resyncs, m.mutations)
	}
	return m
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveRemote records one backend call that started at start.
func (m *Metrics) ObserveRemote(action string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.remoteCalls.WithLabelValues(action, status(err)).Inc()
	m.remoteDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
}

func (m *Metrics) AuditWrite(err error) {
	if m == nil {
		return
	}
	m.auditWrites.WithLabelValues(status(err)).Inc()
}

func (m *Metrics) Resync(err error) {
	if m == nil {
		return
	}
	m.resyncs.WithLabelValues(status(err)).Inc()
}

// Mutation records a controller operation. outcome is e.g. "ok", "not_found", "remote_error".
func (m *Metrics) Mutation(op, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, outcome).Inc()
}
