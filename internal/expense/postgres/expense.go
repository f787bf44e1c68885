package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/budget-ledger/internal"
	expenseDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/expense"
	"github.com/frahmantamala/budget-ledger/internal/expense"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.RepositoryAPI {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *expenseDatamodel.Expense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*expenseDatamodel.Expense, error) {
	var e expenseDatamodel.Expense
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrExpenseNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, e *expenseDatamodel.Expense) error {
	result := r.db.WithContext(ctx).
		Model(&expenseDatamodel.Expense{}).
		Where("id = ?", e.ID).
		Updates(map[string]interface{}{
			"amount":      e.Amount,
			"date":        e.Date,
			"description": e.Description,
			"category_id": e.CategoryID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrExpenseNotFound
	}
	return nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&expenseDatamodel.Expense{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrExpenseNotFound
	}
	return nil
}

func (r *ExpenseRepository) ListByUser(ctx context.Context, userID int64) ([]*expenseDatamodel.Expense, error) {
	var expenses []*expenseDatamodel.Expense
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC, id ASC").
		Find(&expenses).Error
	return expenses, err
}

// Find pushes every present predicate into the WHERE clause.
func (r *ExpenseRepository) Find(ctx context.Context, userID int64, c expense.Criteria) ([]*expenseDatamodel.Expense, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if c.Dates != nil {
		q = q.Where("date >= ? AND date <= ?", c.Dates.Start, c.Dates.End)
	}
	if c.Prices != nil {
		q = q.Where("amount >= ? AND amount <= ?", c.Prices.Min, c.Prices.Max)
	}
	if c.CategoryID != nil {
		q = q.Where("category_id = ?", *c.CategoryID)
	}

	var expenses []*expenseDatamodel.Expense
	err := q.Order("date ASC, id ASC").Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) SumBetween(ctx context.Context, userID int64, dr expense.DateRange) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.WithContext(ctx).
		Model(&expenseDatamodel.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, dr.Start, dr.End).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total.Round(2), nil
}
