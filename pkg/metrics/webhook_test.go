package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestWebhookMetricsCountsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWebhookMetrics(reg)
	m.Observe("asaas", "processed", 10*time.Millisecond)
	m.Observe("asaas", "processed", 10*time.Millisecond)
	m.Observe("", "unrecognized", time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	got, err := fetchCounterValue(mfs, "splitsettle_webhook_deliveries_total", "gateway", "asaas")
	if err != nil {
		t.Fatalf("fetch deliveries: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected 2 asaas deliveries, got %f", got)
	}
	if _, err := fetchCounterValue(mfs, "splitsettle_webhook_deliveries_total", "gateway", "unknown"); err != nil {
		t.Fatalf("empty gateway should be labelled unknown: %v", err)
	}
	if sum, err := fetchHistogramSum(mfs, "splitsettle_webhook_processing_seconds", "gateway", "asaas"); err != nil || sum <= 0 {
		t.Fatalf("expected histogram sum > 0, got %f err=%v", sum, err)
	}
}

func TestSplitMetricsAccumulatesAbsoluteCents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSplitMetrics(reg)
	m.IncExecution("paid", "applied")
	m.AddLedgerCents("tenant", "credit", 7600)
	m.AddLedgerCents("tenant", "debit", -7600)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "splitsettle_split_executions_total", "result", "applied"); err != nil || got != 1 {
		t.Fatalf("expected one applied execution, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "splitsettle_split_ledger_cents_total", "entry_kind", "debit"); err != nil || got != 7600 {
		t.Fatalf("expected debit cents 7600, got %f err=%v", got, err)
	}
}
