package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/argus/v1/internal/scheduler"
	"github.com/wonny/argus/v1/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

등록되는 작업:
- snapshot_build_intraday: 매일 08:30 UTC (인트라데이 스냅샷)
- snapshot_build_swing:    매일 22:15 UTC (스윙 스냅샷)
- outcome_evaluation:      매일 23:00 UTC (최근 45일 결과 평가)

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/argus scheduler start
  go run ./cmd/argus scheduler run snapshot_build_swing`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "스케줄러 시작",
	RunE:  runScheduler,
}

var schedulerListCmd = &cobra.Command{
	Use:   "list",
	Short: "등록된 작업 목록",
	RunE:  listJobs,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run [job_name]",
	Short: "특정 작업 즉시 실행",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobNow,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func initScheduler() (*scheduler.Scheduler, func(), error) {
	a, cleanup, err := initApp()
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(a.log)
	for _, job := range []scheduler.Job{
		jobs.NewIntradaySnapshotJob(a.builder, a.log),
		jobs.NewSwingSnapshotJob(a.builder, a.log),
		jobs.NewOutcomeJob(a.runner, a.log),
	} {
		if err := sched.AddJob(job); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("register job: %w", err)
		}
	}
	return sched, cleanup, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Argus Scheduler ===")

	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()

	fmt.Println("\nJob stats:")
	for name, st := range sched.GetJobStats() {
		fmt.Printf("  %-26s runs=%d success=%.0f%%\n", name, st.TotalRuns, st.SuccessRate*100)
	}
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Println("Registered jobs:")
	for name, st := range sched.GetJobStats() {
		fmt.Printf("  %-26s %s\n", name, st.Schedule)
	}
	return nil
}

func runJobNow(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	jobName := args[0]
	fmt.Printf("Running job %s...\n", jobName)
	if err := sched.RunJob(jobName); err != nil {
		return err
	}

	// RunJob is async; give the goroutine time to finish before the
	// process exits. Scheduled deployments use `scheduler start`.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	fmt.Println("Press Ctrl+C when done watching logs")
	<-quit
	return nil
}
