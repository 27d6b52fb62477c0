package cron

import (
	"context"
	"testing"
)

type namedJob string

func (j namedJob) Name() string              { return string(j) }
func (j namedJob) Run(context.Context) error { return nil }

func TestRegistryKeepsCycleOrder(t *testing.T) {
	registry := NewRegistry(namedJob("ledger-release"), nil)
	registry.Register(namedJob("outbox-retention"))

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected nil job skipped, got %d jobs", len(jobs))
	}
	if jobs[0].Name() != "ledger-release" || jobs[1].Name() != "outbox-retention" {
		t.Fatalf("release must run before retention, got %s then %s", jobs[0].Name(), jobs[1].Name())
	}

	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("Jobs must return a copy")
	}
}
