package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/argus/v1/internal/outcome"
	"github.com/wonny/argus/v1/pkg/logger"
)

// OutcomeJob re-resolves recent setups against forward candles nightly.
type OutcomeJob struct {
	runner   *outcome.Runner
	lookback time.Duration
	logger   *logger.Logger
}

// NewOutcomeJob evaluates the trailing 45 days of snapshots every
// night at 23:00 UTC, after the swing snapshot build.
func NewOutcomeJob(r *outcome.Runner, log *logger.Logger) *OutcomeJob {
	return &OutcomeJob{
		runner:   r,
		lookback: 45 * 24 * time.Hour,
		logger:   log,
	}
}

func (j *OutcomeJob) Name() string {
	return "outcome_evaluation"
}

func (j *OutcomeJob) Schedule() string {
	return "0 0 23 * * *"
}

func (j *OutcomeJob) Run(ctx context.Context) error {
	now := time.Now().UTC()
	sum, err := j.runner.Run(ctx, outcome.BatchParams{
		From: now.Add(-j.lookback),
		To:   now,
	})
	if err != nil {
		return fmt.Errorf("scheduled outcome batch: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"snapshots": sum.Snapshots,
		"evaluated": sum.Evaluated,
		"inserted":  sum.Inserted,
		"updated":   sum.Updated,
		"errors":    sum.Errors,
	}).Info("Scheduled outcome evaluation finished")
	return nil
}
