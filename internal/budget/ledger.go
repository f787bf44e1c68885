package budget

import (
	"context"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	"github.com/frahmantamala/budget-ledger/internal/core/common/validation"
	"github.com/frahmantamala/budget-ledger/internal/core/events"
	"github.com/shopspring/decimal"
)

type RepositoryAPI interface {
	GetAccount(ctx context.Context, userID int64) (*Account, error)
	// WithAccountLock loads the account under a row lock and commits the
	// changes fn saves through tx only if fn returns nil.
	WithAccountLock(ctx context.Context, userID int64, fn func(acct *Account, tx LedgerTx) error) error
}

type LedgerTx interface {
	SumExpenses(ctx context.Context, userID int64, period calendar.Period) (decimal.Decimal, error)
	SaveAccount(ctx context.Context, acct *Account) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Ledger struct {
	repo      RepositoryAPI
	locks     *userLocks
	publisher EventPublisher
	logger    *slog.Logger
}

func NewLedger(repo RepositoryAPI, publisher EventPublisher, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		repo:      repo,
		locks:     newUserLocks(),
		publisher: publisher,
		logger:    logger,
	}
}

func (l *Ledger) GetAccount(ctx context.Context, userID int64) (*Account, error) {
	acct, err := l.repo.GetAccount(ctx, userID)
	if err != nil {
		l.logger.Error("failed to load budget account", "error", err, "user_id", userID)
		return nil, err
	}
	return acct, nil
}

// Recalculate sets remaining_budget to maximum_budget minus the expenses
// dated in the calendar month containing today.
func (l *Ledger) Recalculate(ctx context.Context, userID int64, today time.Time) (*Account, error) {
	var updated Account
	err := l.withAccount(ctx, userID, func(acct *Account, tx LedgerTx) error {
		if err := recalculate(ctx, acct, tx, today); err != nil {
			return err
		}
		updated = *acct
		return nil
	})
	if err != nil {
		l.logger.Error("budget recalculation failed", "error", err, "user_id", userID)
		return nil, err
	}

	l.logger.Debug("budget recalculated",
		"user_id", userID,
		"maximum_budget", updated.MaximumBudget.String(),
		"remaining_budget", updated.RemainingBudget.String())

	l.publish(ctx, events.NewBudgetRecalculatedEvent(userID, updated.MaximumBudget, updated.RemainingBudget, calendar.StartOfMonth(today)))
	return &updated, nil
}

// UpdateMaximumBudget stores a new allowance and recalculates in the same
// transaction.
func (l *Ledger) UpdateMaximumBudget(ctx context.Context, userID int64, value *decimal.Decimal, today time.Time) (*Account, error) {
	if value == nil || !value.IsPositive() {
		return nil, errors.NewBudgetError("maximum_budget must be present and greater than 0")
	}

	var updated Account
	err := l.withAccount(ctx, userID, func(acct *Account, tx LedgerTx) error {
		acct.MaximumBudget = value.Round(2)
		if err := recalculate(ctx, acct, tx, today); err != nil {
			return err
		}
		updated = *acct
		return nil
	})
	if err != nil {
		l.logger.Error("failed to update maximum budget", "error", err, "user_id", userID)
		return nil, err
	}

	l.logger.Info("maximum budget updated", "user_id", userID, "maximum_budget", updated.MaximumBudget.String())
	l.publish(ctx, events.NewBudgetRecalculatedEvent(userID, updated.MaximumBudget, updated.RemainingBudget, calendar.StartOfMonth(today)))
	return &updated, nil
}

// ResetIfDue advances reset_date by one month when today has reached it and
// recalculates. It reports whether a reset happened.
func (l *Ledger) ResetIfDue(ctx context.Context, userID int64, today time.Time) (bool, error) {
	today = calendar.DateOf(today)

	var (
		reset    bool
		previous time.Time
		updated  Account
	)
	err := l.withAccount(ctx, userID, func(acct *Account, tx LedgerTx) error {
		if !acct.IsResetDue(today) {
			return nil
		}
		previous = acct.ResetDate
		// one step per call; a scheduler outage catches up one month per run
		acct.ResetDate = calendar.NextMonthStart(acct.ResetDate)
		if err := recalculate(ctx, acct, tx, today); err != nil {
			return err
		}
		reset = true
		updated = *acct
		return nil
	})
	if err != nil {
		return false, err
	}
	if !reset {
		return false, nil
	}

	l.logger.Info("budget reset",
		"user_id", userID,
		"previous_reset_date", previous.Format(calendar.DateLayout),
		"reset_date", updated.ResetDate.Format(calendar.DateLayout))

	l.publish(ctx, events.NewBudgetResetEvent(userID, previous, updated.ResetDate, updated.RemainingBudget))
	return true, nil
}

// UpdateDefaultCurrency stores the descriptive currency tag.
func (l *Ledger) UpdateDefaultCurrency(ctx context.Context, userID int64, code string) (*Account, error) {
	code = strings.TrimSpace(code)
	if appErr := validation.ValidateCurrencyCode(code); appErr != nil {
		return nil, appErr
	}

	var updated Account
	err := l.withAccount(ctx, userID, func(acct *Account, tx LedgerTx) error {
		acct.DefaultCurrency = strings.ToUpper(code)
		if err := tx.SaveAccount(ctx, acct); err != nil {
			return err
		}
		updated = *acct
		return nil
	})
	if err != nil {
		l.logger.Error("failed to update default currency", "error", err, "user_id", userID)
		return nil, err
	}
	return &updated, nil
}

func (l *Ledger) withAccount(ctx context.Context, userID int64, fn func(acct *Account, tx LedgerTx) error) error {
	unlock, err := l.locks.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	return l.repo.WithAccountLock(ctx, userID, fn)
}

func recalculate(ctx context.Context, acct *Account, tx LedgerTx, today time.Time) error {
	spent, err := tx.SumExpenses(ctx, acct.UserID, calendar.MonthOf(today))
	if err != nil {
		return err
	}
	acct.RemainingBudget = acct.MaximumBudget.Sub(spent)
	return tx.SaveAccount(ctx, acct)
}

func (l *Ledger) publish(ctx context.Context, event events.Event) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(ctx, event); err != nil {
		l.logger.Warn("failed to publish budget event", "event_type", event.EventType(), "error", err)
	}
}
