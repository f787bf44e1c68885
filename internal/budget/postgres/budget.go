package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/budget"
	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	expenseDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/expense"
	userDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/user"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BudgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) budget.RepositoryAPI {
	return &BudgetRepository{db: db}
}

const accountColumns = "id, maximum_budget, remaining_budget, reset_date, default_currency"

func (r *BudgetRepository) GetAccount(ctx context.Context, userID int64) (*budget.Account, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Select(accountColumns).Where("id = ?", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return budget.FromDataModel(&u), nil
}

// WithAccountLock runs fn inside a transaction holding the user row with
// SELECT ... FOR UPDATE.
func (r *BudgetRepository) WithAccountLock(ctx context.Context, userID int64, fn func(acct *budget.Account, tx budget.LedgerTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u userDatamodel.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select(accountColumns).
			Where("id = ?", userID).
			First(&u).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrUserNotFound
			}
			return err
		}

		return fn(budget.FromDataModel(&u), &ledgerTx{tx: tx})
	})
}

type ledgerTx struct {
	tx *gorm.DB
}

func (t *ledgerTx) SumExpenses(ctx context.Context, userID int64, period calendar.Period) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := t.tx.WithContext(ctx).
		Model(&expenseDatamodel.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND date >= ? AND date < ?", userID, period.Start, period.End).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total.Round(2), nil
}

func (t *ledgerTx) SaveAccount(ctx context.Context, acct *budget.Account) error {
	return t.tx.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", acct.UserID).
		Updates(map[string]interface{}{
			"maximum_budget":   acct.MaximumBudget,
			"remaining_budget": acct.RemainingBudget,
			"reset_date":       acct.ResetDate,
			"default_currency": acct.DefaultCurrency,
		}).Error
}
