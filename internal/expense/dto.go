package expense

import (
	"encoding/json"
	"time"
)

type CreateExpenseDTO struct {
	Amount      json.RawMessage `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	CategoryID  int64           `json:"category_id"`
}

// UpdateExpenseDTO carries a partial update. Omitted fields keep their
// stored values.
type UpdateExpenseDTO struct {
	Amount      json.RawMessage `json:"amount,omitempty"`
	Date        *string         `json:"date,omitempty"`
	Description *string         `json:"description,omitempty"`
	CategoryID  *int64          `json:"category_id,omitempty"`
}

type ExpenseResponse struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"category_id"`
	Amount      string    `json:"amount"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ExpenseWriteResponse struct {
	Expense         ExpenseResponse `json:"expense"`
	RemainingBudget string          `json:"remaining_budget"`
}

type ExpensesResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
}

type FilterResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
	Total    string            `json:"total"`
}

type StatisticsResponse struct {
	ThisMonth   string `json:"this_month"`
	LastWeek    string `json:"last_week"`
	LastMonth   string `json:"last_month"`
	LastQuarter string `json:"last_quarter"`
	LastYear    string `json:"last_year"`
}
