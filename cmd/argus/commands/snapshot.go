package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/argus/v1/internal/contracts"
	"github.com/wonny/argus/v1/internal/outcome"
	"github.com/wonny/argus/v1/internal/snapshot"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "스냅샷 빌드 & 조회",
	Long: `평가 스냅샷을 빌드하고 조회합니다.

Subcommands:
  build     - (date, label) 스냅샷 빌드
  backfill  - 날짜 구간 일괄 빌드 (기존 날짜는 건너뜀)
  latest    - 라벨별 최신 스냅샷 요약

Example:
  go run ./cmd/argus snapshot build --label swing
  go run ./cmd/argus snapshot build --label intraday --date 2026-08-31 --force
  go run ./cmd/argus snapshot backfill --from 2026-08-01 --to 2026-08-31 --label swing
  go run ./cmd/argus snapshot latest --label swing`,
}

var (
	snapshotDate   string
	snapshotLabel  string
	snapshotForce  bool
	snapshotAssets []string

	backfillFrom string
	backfillTo   string
)

var snapshotBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "스냅샷 빌드",
	RunE:  runSnapshotBuild,
}

var snapshotBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "날짜 구간 일괄 빌드",
	RunE:  runSnapshotBackfill,
}

var snapshotLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "최신 스냅샷 요약",
	RunE:  runSnapshotLatest,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotBuildCmd)
	snapshotCmd.AddCommand(snapshotBackfillCmd)
	snapshotCmd.AddCommand(snapshotLatestCmd)

	snapshotBuildCmd.Flags().StringVar(&snapshotDate, "date", "", "snapshot date YYYY-MM-DD (default today)")
	snapshotBuildCmd.Flags().StringVar(&snapshotLabel, "label", contracts.LabelSwing, "snapshot label (intraday|swing)")
	snapshotBuildCmd.Flags().BoolVar(&snapshotForce, "force", false, "rebuild even when the snapshot exists")
	snapshotBuildCmd.Flags().StringSliceVar(&snapshotAssets, "assets", nil, "restrict to asset ids or symbols")

	snapshotBackfillCmd.Flags().StringVar(&backfillFrom, "from", "", "start date YYYY-MM-DD (required)")
	snapshotBackfillCmd.Flags().StringVar(&backfillTo, "to", "", "end date YYYY-MM-DD (required)")
	snapshotBackfillCmd.Flags().StringVar(&snapshotLabel, "label", contracts.LabelSwing, "snapshot label (intraday|swing)")
	_ = snapshotBackfillCmd.MarkFlagRequired("from")
	_ = snapshotBackfillCmd.MarkFlagRequired("to")

	snapshotLatestCmd.Flags().StringVar(&snapshotLabel, "label", contracts.LabelSwing, "snapshot label (intraday|swing)")
}

func runSnapshotBuild(cmd *cobra.Command, args []string) error {
	a, cleanup, err := initApp()
	if err != nil {
		return err
	}
	defer cleanup()

	date := time.Now().UTC()
	if snapshotDate != "" {
		date, err = time.Parse("2006-01-02", snapshotDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", snapshotDate, err)
		}
	}

	snap, err := a.builder.Build(context.Background(), date, snapshotLabel, snapshot.BuildOptions{
		Force:  snapshotForce,
		Assets: snapshotAssets,
	})
	if err != nil {
		return err
	}

	fmt.Printf("✅ Snapshot %s published\n", snap.Key().String())
	fmt.Printf("   engine: %s | setups: %d | assets: %d (failed %d)\n",
		snap.EngineVersion, len(snap.Setups), snap.AssetsTotal, snap.AssetsFailed)
	printDecisionCounts(snap)
	return nil
}

func runSnapshotBackfill(cmd *cobra.Command, args []string) error {
	a, cleanup, err := initApp()
	if err != nil {
		return err
	}
	defer cleanup()

	from, err := time.Parse("2006-01-02", backfillFrom)
	if err != nil {
		return fmt.Errorf("invalid --from %q: %w", backfillFrom, err)
	}
	to, err := time.Parse("2006-01-02", backfillTo)
	if err != nil {
		return fmt.Errorf("invalid --to %q: %w", backfillTo, err)
	}

	sum, err := a.builder.Backfill(context.Background(), from, to, snapshotLabel)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Backfill finished: %d requested, %d built, %d skipped, %d failed\n",
		sum.Requested, sum.Built, sum.Skipped, sum.Failed)
	return nil
}

func runSnapshotLatest(cmd *cobra.Command, args []string) error {
	a, cleanup, err := initApp()
	if err != nil {
		return err
	}
	defer cleanup()

	repo := snapshot.NewRepository(a.db)
	snap, err := repo.Latest(context.Background(), snapshotLabel)
	if err != nil {
		return err
	}
	if snap == nil {
		fmt.Printf("No %s snapshot published yet\n", snapshotLabel)
		return nil
	}

	fmt.Printf("=== Latest %s snapshot: %s ===\n", snapshotLabel, snap.Key().String())
	fmt.Printf("engine %s | generated %s | setups %d\n\n",
		snap.EngineVersion, snap.GeneratedAt.Format(time.RFC3339), len(snap.Setups))
	for _, s := range snap.Setups {
		extra := ""
		if s.Decision == contracts.DecisionWatch {
			extra = " [" + s.WatchSegment + "]"
		} else if s.NoTradeReason != "" {
			extra = " (" + s.NoTradeReason + ")"
		}
		fmt.Printf("  %-10s %-9s %-8s grade=%-9s %-8s %s%s\n",
			s.Symbol, s.Profile, s.Direction, gradeOrDash(s.Grade), s.Decision, strings.ToLower(string(s.AssetClass)), extra)
	}
	printDecisionCounts(snap)
	printOutcomeCounts(a, snap.ID)
	return nil
}

// printOutcomeCounts summarizes already-resolved outcomes for the
// snapshot, when any exist.
func printOutcomeCounts(a *app, snapshotID string) {
	rows, err := outcome.NewRepository(a.db).ListBySnapshot(context.Background(), snapshotID)
	if err != nil {
		a.log.WithError(err).Warn("⚠️ could not load outcomes for snapshot")
		return
	}
	if len(rows) == 0 {
		return
	}

	counts := map[contracts.OutcomeStatus]int{}
	for _, o := range rows {
		counts[o.Status]++
	}
	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)

	fmt.Printf("   outcomes (%d):", len(rows))
	for _, s := range statuses {
		fmt.Printf(" %s=%d", s, counts[contracts.OutcomeStatus(s)])
	}
	fmt.Println()
}

func gradeOrDash(g contracts.Grade) string {
	if g == "" {
		return "-"
	}
	return string(g)
}

func printDecisionCounts(snap *contracts.Snapshot) {
	counts := map[contracts.Decision]int{}
	for _, s := range snap.Setups {
		counts[s.Decision]++
	}
	fmt.Printf("\n   TRADE %d | WATCH %d | BLOCKED %d | UNKNOWN %d\n",
		counts[contracts.DecisionTrade], counts[contracts.DecisionWatch],
		counts[contracts.DecisionBlocked], counts[contracts.DecisionUnknown])
}
