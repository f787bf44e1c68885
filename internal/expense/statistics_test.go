package expense_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	"github.com/frahmantamala/budget-ledger/internal/expense"
)

var _ = Describe("StatisticsWindows", func() {
	It("derives each window from a Wednesday", func() {
		today := calendar.Date(2024, time.May, 15)
		thisMonth, lastWeek, lastMonth, lastQuarter, lastYear := expense.StatisticsWindows(today)

		Expect(thisMonth).To(Equal(expense.DateRange{Start: calendar.Date(2024, time.May, 1), End: today}))
		Expect(lastWeek).To(Equal(expense.DateRange{
			Start: calendar.Date(2024, time.May, 6),
			End:   calendar.Date(2024, time.May, 12),
		}))
		Expect(lastMonth).To(Equal(expense.DateRange{
			Start: calendar.Date(2024, time.April, 1),
			End:   calendar.Date(2024, time.April, 30),
		}))
		Expect(lastQuarter).To(Equal(expense.DateRange{Start: calendar.Date(2024, time.February, 15), End: today}))
		Expect(lastYear).To(Equal(expense.DateRange{
			Start: calendar.Date(2023, time.January, 1),
			End:   calendar.Date(2023, time.December, 31),
		}))
	})

	It("clamps the quarter start to the end of a short month", func() {
		_, _, _, lastQuarter, _ := expense.StatisticsWindows(calendar.Date(2024, time.May, 31))
		Expect(lastQuarter.Start).To(Equal(calendar.Date(2024, time.February, 29)))
	})

	It("treats Monday as the start of the current week", func() {
		_, lastWeek, _, _, _ := expense.StatisticsWindows(calendar.Date(2024, time.May, 13))
		Expect(lastWeek.Start).To(Equal(calendar.Date(2024, time.May, 6)))
		Expect(lastWeek.End).To(Equal(calendar.Date(2024, time.May, 12)))
	})

	It("rolls last month back across a year boundary", func() {
		_, _, lastMonth, _, _ := expense.StatisticsWindows(calendar.Date(2024, time.January, 3))
		Expect(lastMonth.Start).To(Equal(calendar.Date(2023, time.December, 1)))
		Expect(lastMonth.End).To(Equal(calendar.Date(2023, time.December, 31)))
	})
})
