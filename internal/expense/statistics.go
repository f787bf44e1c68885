package expense

import (
	"time"

	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	"github.com/shopspring/decimal"
)

type Statistics struct {
	ThisMonth   decimal.Decimal
	LastWeek    decimal.Decimal
	LastMonth   decimal.Decimal
	LastQuarter decimal.Decimal
	LastYear    decimal.Decimal
}

func (s *Statistics) ToResponse() StatisticsResponse {
	return StatisticsResponse{
		ThisMonth:   s.ThisMonth.StringFixed(2),
		LastWeek:    s.LastWeek.StringFixed(2),
		LastMonth:   s.LastMonth.StringFixed(2),
		LastQuarter: s.LastQuarter.StringFixed(2),
		LastYear:    s.LastYear.StringFixed(2),
	}
}

// StatisticsWindows returns the inclusive ranges reported by Statistics,
// relative to today:
//   - this month: first of the month through today
//   - last week: the previous Monday through Sunday
//   - last month: the previous calendar month
//   - last quarter: three months ago through today
//   - last year: the previous calendar year
func StatisticsWindows(today time.Time) (thisMonth, lastWeek, lastMonth, lastQuarter, lastYear DateRange) {
	today = calendar.DateOf(today)
	monthStart := calendar.StartOfMonth(today)
	weekStart := calendar.StartOfWeek(today)

	thisMonth = DateRange{Start: monthStart, End: today}
	lastWeek = DateRange{Start: weekStart.AddDate(0, 0, -7), End: weekStart.AddDate(0, 0, -1)}
	lastMonth = DateRange{Start: monthStart.AddDate(0, -1, 0), End: monthStart.AddDate(0, 0, -1)}
	lastQuarter = DateRange{Start: monthsBefore(today, 3), End: today}

	year := today.Year() - 1
	lastYear = DateRange{Start: calendar.Date(year, time.January, 1), End: calendar.Date(year, time.December, 31)}
	return
}

// monthsBefore clamps to the last day of the target month, so May 31
// minus three months is February 28 or 29.
func monthsBefore(d time.Time, months int) time.Time {
	first := calendar.StartOfMonth(d).AddDate(0, -months, 0)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := d.Day()
	if day > lastDay {
		day = lastDay
	}
	return calendar.Date(first.Year(), first.Month(), day)
}
