package expense

import (
	"time"

	errors "github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

// Candidate is a proposed expense state. Nil pointers mean the field was not
// supplied.
type Candidate struct {
	Amount      *decimal.Decimal
	Date        *time.Time
	Description string
	CategoryID  int64
}

// Validate checks every rule independently and reports all violations
// together. Dates are compared against the supplied today.
func Validate(c Candidate, today time.Time) error {
	v := validation.NewValidator()
	v.Field("amount", c.Amount).
		Present(errors.ErrCodeInvalidAmount).
		Positive(errors.ErrCodeInvalidAmount)
	v.Field("date", c.Date).
		Required(errors.ErrCodeInvalidDate).
		NotAfter(today)
	v.Field("description", c.Description).
		Required(errors.ErrCodeInvalidDescription).
		MaxLength(500, errors.ErrCodeInvalidDescription)
	v.Field("category_id", c.CategoryID).
		Required(errors.ErrCodeInvalidCategory)

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
