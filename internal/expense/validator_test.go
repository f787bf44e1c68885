package expense_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	"github.com/frahmantamala/budget-ledger/internal/expense"
)

var _ = Describe("Validate", func() {
	today := calendar.Date(2024, time.March, 15)

	valid := func() expense.Candidate {
		d := today
		return expense.Candidate{
			Amount:      decPtr("12.50"),
			Date:        &d,
			Description: "Lunch",
			CategoryID:  1,
		}
	}

	fields := func(err error) []string {
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		details, ok := appErr.Details.(internal.ValidationErrors)
		Expect(ok).To(BeTrue())
		return details.Fields()
	}

	It("accepts a complete expense dated today", func() {
		Expect(expense.Validate(valid(), today)).To(Succeed())
	})

	It("accepts the smallest positive amount", func() {
		c := valid()
		c.Amount = decPtr("0.01")
		Expect(expense.Validate(c, today)).To(Succeed())
	})

	It("rejects a zero amount", func() {
		c := valid()
		c.Amount = decPtr("0")
		Expect(fields(expense.Validate(c, today))).To(Equal([]string{"amount"}))
	})

	It("rejects a negative amount", func() {
		c := valid()
		c.Amount = decPtr("-5")
		err := expense.Validate(c, today)
		Expect(err.Error()).To(Equal("amount must be greater than 0"))
	})

	It("rejects a missing amount", func() {
		c := valid()
		c.Amount = nil
		err := expense.Validate(c, today)
		Expect(err.Error()).To(Equal("amount must be present"))
	})

	It("rejects tomorrow", func() {
		c := valid()
		tomorrow := today.AddDate(0, 0, 1)
		c.Date = &tomorrow
		err := expense.Validate(c, today)
		Expect(err.Error()).To(Equal("date cannot be in the future"))
	})

	It("accepts dates in the past", func() {
		c := valid()
		past := calendar.Date(2019, time.January, 1)
		c.Date = &past
		Expect(expense.Validate(c, today)).To(Succeed())
	})

	It("reports every failing field at once", func() {
		err := expense.Validate(expense.Candidate{}, today)
		Expect(fields(err)).To(Equal([]string{"amount", "date", "description", "category_id"}))
	})

	It("treats a blank description as missing", func() {
		c := valid()
		c.Description = "   "
		Expect(fields(expense.Validate(c, today))).To(Equal([]string{"description"}))
	})
})
