package expense

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	errors "github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	"github.com/frahmantamala/budget-ledger/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

// FilterParams holds the raw query-string values of a filter request.
type FilterParams struct {
	StartDate  string
	EndDate    string
	MinPrice   string
	MaxPrice   string
	CategoryID string
}

func FilterParamsFromQuery(q url.Values) FilterParams {
	return FilterParams{
		StartDate:  strings.TrimSpace(q.Get("start_date")),
		EndDate:    strings.TrimSpace(q.Get("end_date")),
		MinPrice:   strings.TrimSpace(q.Get("min_price")),
		MaxPrice:   strings.TrimSpace(q.Get("max_price")),
		CategoryID: strings.TrimSpace(q.Get("category_id")),
	}
}

// DateRange is inclusive on both ends.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// PriceRange is inclusive on both ends.
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Criteria is a conjunction of optional predicates. A nil member is not
// applied.
type Criteria struct {
	Dates      *DateRange
	Prices     *PriceRange
	CategoryID *int64
}

func (c Criteria) IsEmpty() bool {
	return c.Dates == nil && c.Prices == nil && c.CategoryID == nil
}

func (c Criteria) Matches(e *Expense) bool {
	if c.Dates != nil {
		d := calendar.DateOf(e.Date)
		if d.Before(c.Dates.Start) || d.After(c.Dates.End) {
			return false
		}
	}
	if c.Prices != nil {
		if e.Amount.LessThan(c.Prices.Min) || e.Amount.GreaterThan(c.Prices.Max) {
			return false
		}
	}
	if c.CategoryID != nil && e.CategoryID != *c.CategoryID {
		return false
	}
	return true
}

// Apply keeps the expenses matching every predicate, preserving order.
func (c Criteria) Apply(expenses []*Expense) []*Expense {
	out := make([]*Expense, 0, len(expenses))
	for _, e := range expenses {
		if c.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// ParseCriteria checks the date pair, then the price pair, then the
// category id. Category existence is left to the caller.
func ParseCriteria(p FilterParams) (Criteria, error) {
	var c Criteria

	dates, err := parseDateRange(p.StartDate, p.EndDate)
	if err != nil {
		return Criteria{}, err
	}
	c.Dates = dates

	prices, err := parsePriceRange(p.MinPrice, p.MaxPrice)
	if err != nil {
		return Criteria{}, err
	}
	c.Prices = prices

	if p.CategoryID != "" {
		id, err := strconv.ParseInt(p.CategoryID, 10, 64)
		if err != nil || id <= 0 {
			return Criteria{}, errors.NewInvalidFormatError("category_id", "category_id must be a positive integer")
		}
		c.CategoryID = &id
	}

	return c, nil
}

func parseDateRange(start, end string) (*DateRange, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" {
		return nil, errors.NewMissingParameterError("start_date")
	}
	if end == "" {
		return nil, errors.NewMissingParameterError("end_date")
	}

	startDate, err := calendar.ParseDate(start)
	if err != nil {
		return nil, errors.NewInvalidFormatError("start_date", dateFormatMessage("start_date"))
	}
	endDate, err := calendar.ParseDate(end)
	if err != nil {
		return nil, errors.NewInvalidFormatError("end_date", dateFormatMessage("end_date"))
	}
	if startDate.After(endDate) {
		return nil, errors.NewInvalidRangeError("Start date must be before or equal to end date", errors.ErrCodeInvalidDateRange)
	}
	return &DateRange{Start: startDate, End: endDate}, nil
}

func parsePriceRange(min, max string) (*PriceRange, error) {
	if min == "" && max == "" {
		return nil, nil
	}
	if min == "" {
		return nil, errors.NewMissingParameterError("min_price")
	}
	if max == "" {
		return nil, errors.NewMissingParameterError("max_price")
	}

	minPrice, appErr := validation.ParseDecimalParam("min_price", min)
	if appErr != nil {
		return nil, appErr
	}
	maxPrice, appErr := validation.ParseDecimalParam("max_price", max)
	if appErr != nil {
		return nil, appErr
	}
	if minPrice.GreaterThan(maxPrice) {
		return nil, errors.NewInvalidRangeError("Minimum price must be less than or equal to maximum price", errors.ErrCodeInvalidPrice)
	}
	return &PriceRange{Min: minPrice, Max: maxPrice}, nil
}

func dateFormatMessage(field string) string {
	return fmt.Sprintf("%s must be a valid date (%s)", field, "YYYY-MM-DD")
}

// Total sums amounts over the given expenses.
func Total(expenses []*Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum.Round(2)
}
