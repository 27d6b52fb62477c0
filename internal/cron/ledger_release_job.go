package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/paclead/splitsettle/pkg/logger"
)

const (
	defaultReleaseBatchSize = 500
	maxReleaseBatches       = 20
	releaseBacklogGrace     = 24 * time.Hour
)

type ledgerReleaser interface {
	ReleaseDue(ctx context.Context, now time.Time, limit int) (int64, error)
	CountUnreleasedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type LedgerReleaseJobParams struct {
	Logger    *logger.Logger
	Ledger    ledgerReleaser
	BatchSize int
}

// NewLedgerReleaseJob stamps released_at on ledger entries whose settlement
// delay has elapsed.
func NewLedgerReleaseJob(params LedgerReleaseJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultReleaseBatchSize
	}
	return &ledgerReleaseJob{
		logg:  params.Logger,
		repo:  params.Ledger,
		batch: batch,
		now:   time.Now,
	}, nil
}

type ledgerReleaseJob struct {
	logg  *logger.Logger
	repo  ledgerReleaser
	batch int
	now   func() time.Time
}

func (j *ledgerReleaseJob) Name() string { return "ledger-release" }

func (j *ledgerReleaseJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	return multierr.Combine(
		j.release(ctx, now),
		j.checkBacklog(ctx, now),
	)
}

func (j *ledgerReleaseJob) release(ctx context.Context, now time.Time) error {
	var total int64
	for i := 0; i < maxReleaseBatches; i++ {
		released, err := j.repo.ReleaseDue(ctx, now, j.batch)
		if err != nil {
			return fmt.Errorf("release ledger entries: %w", err)
		}
		total += released
		if released < int64(j.batch) {
			break
		}
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"released": total,
		"as_of":    now,
	}), "ledger entries released")
	return nil
}

// checkBacklog warns when matured entries are piling up faster than a
// cycle can release them.
func (j *ledgerReleaseJob) checkBacklog(ctx context.Context, now time.Time) error {
	overdue, err := j.repo.CountUnreleasedBefore(ctx, now.Add(-releaseBacklogGrace))
	if err != nil {
		return fmt.Errorf("count overdue ledger entries: %w", err)
	}
	if overdue > 0 {
		j.logg.Warn(j.logg.WithField(ctx, "overdue", overdue), "ledger release backlog")
	}
	return nil
}
