// Package jobs holds the scheduled job implementations.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/argus/v1/internal/contracts"
	"github.com/wonny/argus/v1/internal/snapshot"
	"github.com/wonny/argus/v1/pkg/logger"
)

// SnapshotJob builds one snapshot label on its schedule.
type SnapshotJob struct {
	builder  *snapshot.Builder
	label    string
	schedule string
	logger   *logger.Logger
}

// NewIntradaySnapshotJob builds the intraday snapshot every trading
// morning at 08:30 UTC.
func NewIntradaySnapshotJob(b *snapshot.Builder, log *logger.Logger) *SnapshotJob {
	return &SnapshotJob{
		builder:  b,
		label:    contracts.LabelIntraday,
		schedule: "0 30 8 * * *",
		logger:   log,
	}
}

// NewSwingSnapshotJob builds the swing snapshot after the daily close
// at 22:15 UTC.
func NewSwingSnapshotJob(b *snapshot.Builder, log *logger.Logger) *SnapshotJob {
	return &SnapshotJob{
		builder:  b,
		label:    contracts.LabelSwing,
		schedule: "0 15 22 * * *",
		logger:   log,
	}
}

func (j *SnapshotJob) Name() string {
	return "snapshot_build_" + j.label
}

func (j *SnapshotJob) Schedule() string {
	return j.schedule
}

func (j *SnapshotJob) Run(ctx context.Context) error {
	today := time.Now().UTC()
	snap, err := j.builder.Build(ctx, today, j.label, snapshot.BuildOptions{})
	if err != nil {
		return fmt.Errorf("scheduled %s snapshot: %w", j.label, err)
	}

	j.logger.WithFields(map[string]interface{}{
		"key":    snap.Key().String(),
		"setups": len(snap.Setups),
	}).Info("Scheduled snapshot build finished")
	return nil
}
