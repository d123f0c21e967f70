package commands

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/argus/v1/internal/contracts"
	"github.com/wonny/argus/v1/internal/outcome"
)

// outcomesCmd represents the outcomes command
var outcomesCmd = &cobra.Command{
	Use:   "outcomes",
	Short: "셋업 결과 평가",
	Long: `발행된 스냅샷의 셋업을 이후 캔들과 대조해 결과를 기록합니다.

멱등 배치: 같은 구간을 다시 실행해도 행이 중복되지 않고,
종결된(hit_target/hit_stop/expired/ambiguous/invalid) 결과는
--force 없이는 다시 계산하지 않습니다.

Example:
  go run ./cmd/argus outcomes run --from 2026-07-01
  go run ./cmd/argus outcomes run --from 2026-07-01 --to 2026-08-31 --label swing
  go run ./cmd/argus outcomes run --from 2026-07-01 --dry-run`,
}

var (
	outcomesFrom     string
	outcomesTo       string
	outcomesLabel    string
	outcomesLimit    int
	outcomesAssets   []string
	outcomesPlaybook string
	outcomesDryRun   bool
	outcomesForce    bool
)

var outcomesRunCmd = &cobra.Command{
	Use:   "run",
	Short: "결과 배치 실행",
	RunE:  runOutcomes,
}

func init() {
	rootCmd.AddCommand(outcomesCmd)
	outcomesCmd.AddCommand(outcomesRunCmd)

	outcomesRunCmd.Flags().StringVar(&outcomesFrom, "from", "", "start date YYYY-MM-DD (required)")
	outcomesRunCmd.Flags().StringVar(&outcomesTo, "to", "", "end date YYYY-MM-DD (default today)")
	outcomesRunCmd.Flags().StringVar(&outcomesLabel, "label", "", "restrict to one label (intraday|swing)")
	outcomesRunCmd.Flags().IntVar(&outcomesLimit, "limit", 0, "max setups to process (0 = unlimited)")
	outcomesRunCmd.Flags().StringSliceVar(&outcomesAssets, "assets", nil, "restrict to asset IDs (comma separated)")
	outcomesRunCmd.Flags().StringVar(&outcomesPlaybook, "playbook", "", "restrict to a playbook id or family, e.g. gold or gold-v1")
	outcomesRunCmd.Flags().BoolVar(&outcomesDryRun, "dry-run", false, "compute without persisting")
	outcomesRunCmd.Flags().BoolVar(&outcomesForce, "force", false, "re-resolve terminal outcomes too")
	_ = outcomesRunCmd.MarkFlagRequired("from")
}

func runOutcomes(cmd *cobra.Command, args []string) error {
	a, cleanup, err := initApp()
	if err != nil {
		return err
	}
	defer cleanup()

	from, err := time.Parse("2006-01-02", outcomesFrom)
	if err != nil {
		return fmt.Errorf("invalid --from %q: %w", outcomesFrom, err)
	}
	to := time.Now().UTC()
	if outcomesTo != "" {
		to, err = time.Parse("2006-01-02", outcomesTo)
		if err != nil {
			return fmt.Errorf("invalid --to %q: %w", outcomesTo, err)
		}
	}

	sum, err := a.runner.Run(context.Background(), outcome.BatchParams{
		From:           from,
		To:             to,
		Label:          outcomesLabel,
		Limit:          outcomesLimit,
		AssetFilter:    outcomesAssets,
		PlaybookFilter: outcomesPlaybook,
		DryRun:         outcomesDryRun,
		Force:          outcomesForce,
	})
	if err != nil {
		return err
	}

	mode := ""
	if outcomesDryRun {
		mode = " (dry run)"
	}
	fmt.Printf("✅ Outcome batch finished%s\n", mode)
	fmt.Printf("   snapshots %d | setups %d | evaluated %d\n", sum.Snapshots, sum.Setups, sum.Evaluated)
	fmt.Printf("   inserted %d | updated %d | unchanged %d | errors %d\n",
		sum.Inserted, sum.Updated, sum.Unchanged, sum.Errors)

	if len(sum.ByStatus) > 0 {
		fmt.Println("   by status:")
		statuses := make([]string, 0, len(sum.ByStatus))
		for s := range sum.ByStatus {
			statuses = append(statuses, string(s))
		}
		sort.Strings(statuses)
		for _, s := range statuses {
			fmt.Printf("     %-12s %d\n", s, sum.ByStatus[contracts.OutcomeStatus(s)])
		}
	}
	if len(sum.Skipped) > 0 {
		fmt.Println("   skipped:")
		reasons := make([]string, 0, len(sum.Skipped))
		for r := range sum.Skipped {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			fmt.Printf("     %-24s %d\n", r, sum.Skipped[r])
		}
	}
	return nil
}
