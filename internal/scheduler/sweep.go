package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	"golang.org/x/sync/errgroup"
)

// UserPager lists every user id in ascending order.
type UserPager interface {
	IDsAfter(ctx context.Context, afterID int64, limit int) ([]int64, error)
}

type Resetter interface {
	ResetIfDue(ctx context.Context, userID int64, today time.Time) (bool, error)
}

type Config struct {
	MaxWorkers  int
	UserTimeout time.Duration
	PageSize    int
}

func (c Config) withDefaults() Config {
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = 8
	}
	if c.UserTimeout <= 0 {
		c.UserTimeout = 10 * time.Second
	}
	if c.PageSize <= 0 {
		c.PageSize = 500
	}
	return c
}

// Report summarises one sweep. Checked counts every user dispatched,
// Reset those whose reset date advanced and Failed those that errored or
// timed out.
type Report struct {
	Checked  int
	Reset    int
	Failed   int
	Failures map[int64]error
}

var ErrUserTimeout = errors.New("user reset timed out")

type Sweeper struct {
	pager    UserPager
	resetter Resetter
	cfg      Config
	logger   *slog.Logger
}

func NewSweeper(pager UserPager, resetter Resetter, cfg Config, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		pager:    pager,
		resetter: resetter,
		cfg:      cfg.withDefaults(),
		logger:   logger,
	}
}

// Run calls ResetIfDue for every user with at most MaxWorkers in
// flight. A failing or hung user is recorded and the sweep moves on. The
// returned error is non-nil only when paging fails or ctx ends.
func (s *Sweeper) Run(ctx context.Context, today time.Time) (Report, error) {
	today = calendar.DateOf(today)
	started := time.Now()

	var (
		g       errgroup.Group
		checked atomic.Int64
		reset   atomic.Int64
		mu      sync.Mutex
		failed  = make(map[int64]error)
	)
	g.SetLimit(s.cfg.MaxWorkers)

	var runErr error
	var after int64
	for {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		ids, err := s.pager.IDsAfter(ctx, after, s.cfg.PageSize)
		if err != nil {
			runErr = fmt.Errorf("page users after %d: %w", after, err)
			break
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			if ctx.Err() != nil {
				break
			}
			userID := id
			checked.Add(1)
			g.Go(func() error {
				didReset, err := s.resetOne(ctx, userID, today)
				if err != nil {
					s.logger.Error("budget reset failed", "user_id", userID, "error", err)
					mu.Lock()
					failed[userID] = err
					mu.Unlock()
					return nil
				}
				if didReset {
					reset.Add(1)
				}
				return nil
			})
		}

		after = ids[len(ids)-1]
		if len(ids) < s.cfg.PageSize {
			break
		}
	}

	_ = g.Wait()

	if runErr == nil {
		runErr = ctx.Err()
	}

	report := Report{
		Checked:  int(checked.Load()),
		Reset:    int(reset.Load()),
		Failed:   len(failed),
		Failures: failed,
	}

	s.logger.Info("budget reset sweep finished",
		"today", today.Format(calendar.DateLayout),
		"checked", report.Checked,
		"reset", report.Reset,
		"failed", report.Failed,
		"duration", time.Since(started).String())

	return report, runErr
}

// resetOne runs a single user's reset under its own deadline. On timeout
// the call is abandoned; its goroutine exits whenever the store returns.
func (s *Sweeper) resetOne(ctx context.Context, userID int64, today time.Time) (bool, error) {
	userCtx, cancel := context.WithTimeout(ctx, s.cfg.UserTimeout)
	defer cancel()

	type result struct {
		reset bool
		err   error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		didReset, err := s.resetter.ResetIfDue(userCtx, userID, today)
		done <- result{reset: didReset, err: err}
	}()

	select {
	case r := <-done:
		return r.reset, r.err
	case <-userCtx.Done():
		if errors.Is(userCtx.Err(), context.DeadlineExceeded) {
			return false, ErrUserTimeout
		}
		return false, userCtx.Err()
	}
}
