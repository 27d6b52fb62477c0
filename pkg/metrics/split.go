package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SplitMetrics tracks split engine executions and the cents they moved.
type SplitMetrics struct {
	executions *prometheus.CounterVec
	cents      *prometheus.CounterVec
}

// NewSplitMetrics registers the split metrics on the provided registerer.
func NewSplitMetrics(reg prometheus.Registerer) *SplitMetrics {
	if reg == nil {
		return &SplitMetrics{}
	}
	executions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "split",
		Name:      "executions_total",
		Help:      "Split engine executions by event type and result.",
	}, []string{"event_type", "result"})
	cents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "split",
		Name:      "ledger_cents_total",
		Help:      "Absolute cents written to the ledger by party kind and entry kind.",
	}, []string{"party_kind", "entry_kind"})
	reg.MustRegister(executions, cents)
	return &SplitMetrics{executions: executions, cents: cents}
}

// IncExecution counts one engine run. result is applied, duplicate, skipped or failed.
func (m *SplitMetrics) IncExecution(eventType, result string) {
	if m == nil || m.executions == nil {
		return
	}
	m.executions.WithLabelValues(normalizeLabel(eventType), normalizeLabel(result)).Inc()
}

// AddLedgerCents accumulates the absolute value of a written entry.
func (m *SplitMetrics) AddLedgerCents(partyKind, entryKind string, amount int64) {
	if m == nil || m.cents == nil {
		return
	}
	if amount < 0 {
		amount = -amount
	}
	m.cents.WithLabelValues(normalizeLabel(partyKind), normalizeLabel(entryKind)).Add(float64(amount))
}
