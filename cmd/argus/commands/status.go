package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/argus/v1/internal/contracts"
	"github.com/wonny/argus/v1/internal/snapshot"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "엔진 상태 점검",
	Long: `연결 상태와 라벨별 최신 스냅샷을 점검합니다.

표시 정보:
- PostgreSQL 연결 / 풀 상태
- Redis 연결 여부
- 라벨별 최신 스냅샷 키와 셋업 수

Example:
  go run ./cmd/argus status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, cleanup, err := initApp()
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Println("=== Argus Status ===")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		fmt.Printf("PostgreSQL: 🚨 unreachable (%v)\n", err)
	} else {
		stats := a.db.Stats()
		fmt.Printf("PostgreSQL: ✅ ok (conns %d/%d)\n", stats.AcquiredConns, stats.TotalConns)
	}

	if a.redis.Enabled() {
		fmt.Println("Redis:      ✅ enabled")
	} else {
		fmt.Println("Redis:      - disabled")
	}

	repo := snapshot.NewRepository(a.db)
	for _, label := range []string{contracts.LabelIntraday, contracts.LabelSwing} {
		snap, err := repo.Latest(ctx, label)
		if err != nil {
			fmt.Printf("%-9s snapshot: 🚨 %v\n", label, err)
			continue
		}
		if snap == nil {
			fmt.Printf("%-9s snapshot: none published\n", label)
			continue
		}
		fmt.Printf("%-9s snapshot: %s (%d setups, engine %s)\n",
			label, snap.Key().String(), len(snap.Setups), snap.EngineVersion)
	}
	return nil
}
