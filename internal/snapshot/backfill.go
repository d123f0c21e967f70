package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/argus/v1/internal/contracts"
)

// BackfillSummary accounts one backfill run.
type BackfillSummary struct {
	Requested int
	Built     int
	Skipped   int // snapshot already existed
	Failed    int
}

// Backfill builds snapshots for every date in [from, to]. Existing
// dates are skipped, failed dates are logged and counted, the run
// continues either way.
func (b *Builder) Backfill(ctx context.Context, from, to time.Time, label string) (*BackfillSummary, error) {
	if !contracts.ValidLabel(label) {
		return nil, fmt.Errorf("unknown snapshot label %q", label)
	}
	from = from.UTC().Truncate(24 * time.Hour)
	to = to.UTC().Truncate(24 * time.Hour)
	if to.Before(from) {
		return nil, fmt.Errorf("backfill range inverted: %s after %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	sum := &BackfillSummary{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Requested++

		exists, err := b.repo.Exists(ctx, d, label)
		if err != nil {
			return sum, fmt.Errorf("check snapshot %s: %w", d.Format("2006-01-02"), err)
		}
		if exists {
			sum.Skipped++
			continue
		}

		if _, err := b.Build(ctx, d, label, BuildOptions{}); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return sum, err
			}
			sum.Failed++
			b.log.WithError(err).WithField("date", d.Format("2006-01-02")).
				Warn("⚠️ backfill build failed, continuing")
			continue
		}
		sum.Built++
	}

	b.log.WithFields(map[string]interface{}{
		"label":     label,
		"requested": sum.Requested,
		"built":     sum.Built,
		"skipped":   sum.Skipped,
		"failed":    sum.Failed,
	}).Info("Backfill finished")
	return sum, nil
}
