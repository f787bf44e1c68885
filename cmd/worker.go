package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	"github.com/frahmantamala/budget-ledger/internal/scheduler"
	userPostgres "github.com/frahmantamala/budget-ledger/internal/user/postgres"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
}

var resetWorkerCmd = &cobra.Command{
	Use:   "reset",
	Short: "Run the monthly budget reset sweep",
	Long: `Sweep every user and reset budgets whose reset date has arrived.
Without --once the worker keeps running and sweeps once per calendar day.`,
	Run: func(cmd *cobra.Command, args []string) {
		startResetWorker()
	},
}

var (
	resetOnce       bool
	resetMaxWorkers int
)

func startResetWorker() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	lg := deps.Logger
	sweeper := deps.Sweeper
	if resetMaxWorkers > 0 {
		sweeper = scheduler.NewSweeper(userPostgres.NewIDPager(deps.DB), deps.Ledger, scheduler.Config{
			MaxWorkers:  resetMaxWorkers,
			UserTimeout: deps.Config.Scheduler.UserTimeout,
			PageSize:    deps.Config.Scheduler.PageSize,
		}, lg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if resetOnce {
		today := calendar.Today(deps.Clock)
		report, err := sweeper.Run(ctx, today)
		if err != nil {
			lg.Error("reset sweep aborted", "error", err)
			deps.Close()
			os.Exit(1)
		}
		fmt.Printf("checked=%d reset=%d failed=%d\n", report.Checked, report.Reset, report.Failed)
		return
	}

	lg.Info("reset worker is running. Press Ctrl+C to stop.",
		"max_workers", deps.Config.Scheduler.MaxWorkers,
		"poll_interval", deps.Config.Scheduler.PollInterval)

	daily := scheduler.NewDaily(sweeper, deps.Clock, deps.Config.Scheduler.PollInterval, lg)
	if err := daily.Run(ctx); err != nil && ctx.Err() == nil {
		lg.Error("reset worker stopped", "error", err)
	}
	lg.Info("reset worker shutdown complete")
}

func init() {
	resetWorkerCmd.Flags().BoolVar(&resetOnce, "once", false, "run a single sweep for today and exit")
	resetWorkerCmd.Flags().IntVar(&resetMaxWorkers, "max-workers", 0, "concurrent users per sweep (overrides config)")

	workerCmd.AddCommand(resetWorkerCmd)
	rootCmd.AddCommand(workerCmd)
}
