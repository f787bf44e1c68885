package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
)

type SweepRunner interface {
	Run(ctx context.Context, today time.Time) (Report, error)
}

// Daily polls the clock and runs the sweep at most once per calendar day.
// A sweep that returns an error is retried on the next poll.
type Daily struct {
	sweeper  SweepRunner
	clock    calendar.Clock
	interval time.Duration
	logger   *slog.Logger
	lastRun  time.Time
}

func NewDaily(sweeper SweepRunner, clock calendar.Clock, interval time.Duration, logger *slog.Logger) *Daily {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Daily{
		sweeper:  sweeper,
		clock:    clock,
		interval: interval,
		logger:   logger,
	}
}

// Tick runs the sweep if it has not completed yet today.
func (d *Daily) Tick(ctx context.Context) (bool, Report, error) {
	today := calendar.Today(d.clock)
	if !d.lastRun.IsZero() && !today.After(d.lastRun) {
		return false, Report{}, nil
	}

	report, err := d.sweeper.Run(ctx, today)
	if err != nil {
		d.logger.Error("budget reset sweep aborted", "today", today.Format(calendar.DateLayout), "error", err)
		return true, report, err
	}
	d.lastRun = today
	return true, report, nil
}

// Run ticks immediately and then every interval until ctx is done.
func (d *Daily) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("daily budget reset trigger started", "poll_interval", d.interval.String())

	for {
		_, _, _ = d.Tick(ctx)

		select {
		case <-ctx.Done():
			d.logger.Info("daily budget reset trigger stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
