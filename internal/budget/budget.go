package budget

import (
	"strings"
	"time"

	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	userDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/user"
	"github.com/shopspring/decimal"
)

// Account is the ledger state stored on a user row.
type Account struct {
	UserID          int64
	MaximumBudget   decimal.Decimal
	RemainingBudget decimal.Decimal
	ResetDate       time.Time
	DefaultCurrency string
}

// IsResetDue reports whether today has reached the reset date.
func (a *Account) IsResetDue(today time.Time) bool {
	return !calendar.DateOf(today).Before(a.ResetDate)
}

// NewAccountDefaults is the ledger state of a freshly registered user.
func NewAccountDefaults(today time.Time, maximum decimal.Decimal, currency string) Account {
	return Account{
		MaximumBudget:   maximum,
		RemainingBudget: maximum,
		ResetDate:       calendar.NextMonthStart(today),
		DefaultCurrency: strings.ToUpper(currency),
	}
}

func (a *Account) ToResponse() AccountResponse {
	return AccountResponse{
		UserID:          a.UserID,
		MaximumBudget:   a.MaximumBudget.StringFixed(2),
		RemainingBudget: a.RemainingBudget.StringFixed(2),
		ResetDate:       a.ResetDate.Format(calendar.DateLayout),
		DefaultCurrency: a.DefaultCurrency,
	}
}

func FromDataModel(u *userDatamodel.User) *Account {
	return &Account{
		UserID:          u.ID,
		MaximumBudget:   u.MaximumBudget,
		RemainingBudget: u.RemainingBudget,
		ResetDate:       calendar.DateOf(u.ResetDate),
		DefaultCurrency: u.DefaultCurrency,
	}
}
