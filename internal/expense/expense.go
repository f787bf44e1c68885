package expense

import (
	"time"

	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	expenseDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/expense"
	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          int64
	UserID      int64
	CategoryID  int64
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e *Expense) ToResponse() ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		CategoryID:  e.CategoryID,
		Amount:      e.Amount.StringFixed(2),
		Date:        e.Date.Format(calendar.DateLayout),
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// candidate is the field set the validator checks.
func (e *Expense) candidate() Candidate {
	amount := e.Amount
	date := e.Date
	return Candidate{
		Amount:      &amount,
		Date:        &date,
		Description: e.Description,
		CategoryID:  e.CategoryID,
	}
}

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:          e.ID,
		UserID:      e.UserID,
		CategoryID:  e.CategoryID,
		Amount:      e.Amount,
		Date:        e.Date,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	return &Expense{
		ID:          e.ID,
		UserID:      e.UserID,
		CategoryID:  e.CategoryID,
		Amount:      e.Amount,
		Date:        calendar.DateOf(e.Date),
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func ToResponses(expenses []*Expense) []ExpenseResponse {
	out := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, e.ToResponse())
	}
	return out
}
