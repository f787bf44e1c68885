package budget

import "encoding/json"

type AccountResponse struct {
	UserID          int64  `json:"user_id"`
	MaximumBudget   string `json:"maximum_budget"`
	RemainingBudget string `json:"remaining_budget"`
	ResetDate       string `json:"reset_date"`
	DefaultCurrency string `json:"default_currency"`
}

// UpdateMaximumBudgetDTO keeps the raw value so that absent, malformed and
// non-positive input can be told apart.
type UpdateMaximumBudgetDTO struct {
	MaximumBudget json.RawMessage `json:"maximum_budget"`
}

type UpdateDefaultCurrencyDTO struct {
	DefaultCurrency string `json:"default_currency"`
}

type MaximumBudgetResponse struct {
	MaximumBudget   string `json:"maximum_budget"`
	RemainingBudget string `json:"remaining_budget"`
}

type RemainingBudgetResponse struct {
	RemainingBudget string `json:"remaining_budget"`
	ResetDate       string `json:"reset_date"`
}

type DefaultCurrencyResponse struct {
	DefaultCurrency string `json:"default_currency"`
}
