package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "argus",
	Short: "Argus - 자산 스코어링 & 셋업 판정 엔진",
	Long: `Argus Unified CLI

여섯 개 링 스코어 → 플레이북 게이트 → TRADE/WATCH/BLOCKED 판정.
스냅샷 발행과 셋업 결과 추적까지 하나의 CLI로 실행합니다.

Usage:
  go run ./cmd/argus [command]

Examples:
  go run ./cmd/argus snapshot build --label swing
  go run ./cmd/argus snapshot backfill --from 2026-08-01 --to 2026-08-31 --label swing
  go run ./cmd/argus outcomes run --from 2026-07-01
  go run ./cmd/argus scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
