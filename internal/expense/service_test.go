package expense_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	"github.com/frahmantamala/budget-ledger/internal/expense"
)

var _ = Describe("Service", func() {
	var (
		repo    *MockRepository
		ledger  *MockLedger
		service *expense.Service
		ctx     context.Context
		today   time.Time
	)

	const (
		owner    = int64(1)
		stranger = int64(2)
	)

	create := func(userID int64, amount, date string, category int64) *expense.WriteResult {
		res, err := service.Create(ctx, userID, expense.CreateExpenseDTO{
			Amount:      json.RawMessage(amount),
			Date:        date,
			Description: "item",
			CategoryID:  category,
		}, today)
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	strPtr := func(s string) *string { return &s }

	BeforeEach(func() {
		ctx = context.Background()
		today = calendar.Date(2024, time.January, 20)
		repo = NewMockRepository()
		ledger = &MockLedger{repo: repo, maximum: dec("1000")}
		service = expense.NewService(repo, &MockCategories{ids: map[int64]bool{1: true, 2: true}}, ledger,
			slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	Describe("Create", func() {
		It("stores the expense and recalculates", func() {
			res := create(owner, "100", "2024-01-05", 1)
			Expect(res.Expense.ID).To(BeNumerically(">", 0))
			Expect(res.Account.RemainingBudget.String()).To(Equal("900"))
			Expect(ledger.calls).To(Equal([]time.Time{today}))
		})

		It("accepts an expense dated today", func() {
			res := create(owner, "1", "2024-01-20", 1)
			Expect(res.Expense.Date).To(Equal(today))
		})

		It("rejects an expense dated tomorrow without touching the store", func() {
			_, err := service.Create(ctx, owner, expense.CreateExpenseDTO{
				Amount: json.RawMessage(`5`), Date: "2024-01-21", Description: "x", CategoryID: 1,
			}, today)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("date cannot be in the future"))
			Expect(repo.expenses).To(BeEmpty())
			Expect(ledger.calls).To(BeEmpty())
		})

		It("rejects amounts that round to zero", func() {
			_, err := service.Create(ctx, owner, expense.CreateExpenseDTO{
				Amount: json.RawMessage(`0.004`), Date: "2024-01-05", Description: "x", CategoryID: 1,
			}, today)
			Expect(err.Error()).To(Equal("amount must be greater than 0"))
		})

		It("accepts numeric strings", func() {
			res := create(owner, `"12.345"`, "2024-01-05", 1)
			Expect(res.Expense.Amount.StringFixed(2)).To(Equal("12.35"))
		})

		It("reports malformed amounts as invalid format", func() {
			_, err := service.Create(ctx, owner, expense.CreateExpenseDTO{
				Amount: json.RawMessage(`"abc"`), Date: "2024-01-05", Description: "x", CategoryID: 1,
			}, today)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInvalidFormat))
		})

		It("returns not found for an unknown category", func() {
			_, err := service.Create(ctx, owner, expense.CreateExpenseDTO{
				Amount: json.RawMessage(`5`), Date: "2024-01-05", Description: "x", CategoryID: 99,
			}, today)
			Expect(err).To(MatchError(internal.ErrCategoryNotFound))
		})

		It("does not recalculate when the insert fails", func() {
			repo.failNext = errStore
			_, err := service.Create(ctx, owner, expense.CreateExpenseDTO{
				Amount: json.RawMessage(`5`), Date: "2024-01-05", Description: "x", CategoryID: 1,
			}, today)
			Expect(err).To(MatchError(errStore))
			Expect(ledger.calls).To(BeEmpty())
		})

		It("keeps a committed expense when recalculation fails", func() {
			create(owner, "100", "2024-01-05", 1)
			ledger.fail = errStore

			res, err := service.Create(ctx, owner, expense.CreateExpenseDTO{
				Amount: json.RawMessage(`5`), Date: "2024-01-06", Description: "x", CategoryID: 1,
			}, today)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Expense.ID).To(BeNumerically(">", 0))
			Expect(res.Account.RemainingBudget.String()).To(Equal("900"))
			Expect(repo.expenses).To(HaveLen(2))
		})

		It("surfaces an error when neither recalculation nor the account read succeed", func() {
			ledger.fail = errStore
			ledger.readErr = errStore
			_, err := service.Create(ctx, owner, expense.CreateExpenseDTO{
				Amount: json.RawMessage(`5`), Date: "2024-01-05", Description: "x", CategoryID: 1,
			}, today)
			Expect(err).To(MatchError(errStore))
		})
	})

	Describe("ownership", func() {
		It("hides another user's expense", func() {
			res := create(owner, "10", "2024-01-05", 1)

			_, err := service.GetByID(ctx, stranger, res.Expense.ID)
			Expect(err).To(MatchError(internal.ErrExpenseNotFound))

			_, err = service.Update(ctx, stranger, res.Expense.ID, expense.UpdateExpenseDTO{Description: strPtr("x")}, today)
			Expect(err).To(MatchError(internal.ErrExpenseNotFound))

			_, err = service.Delete(ctx, stranger, res.Expense.ID, today)
			Expect(err).To(MatchError(internal.ErrExpenseNotFound))
			Expect(repo.expenses).To(HaveLen(1))
		})
	})

	Describe("Update", func() {
		It("keeps omitted fields and recalculates", func() {
			res := create(owner, "100", "2024-01-05", 1)

			updated, err := service.Update(ctx, owner, res.Expense.ID, expense.UpdateExpenseDTO{
				Amount: json.RawMessage(`250`),
			}, today)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Expense.Description).To(Equal("item"))
			Expect(updated.Expense.Date).To(Equal(calendar.Date(2024, time.January, 5)))
			Expect(updated.Account.RemainingBudget.String()).To(Equal("750"))
			Expect(ledger.calls).To(HaveLen(2))
		})

		It("moving an expense out of the month raises the remaining budget", func() {
			res := create(owner, "100", "2024-01-05", 1)
			updated, err := service.Update(ctx, owner, res.Expense.ID, expense.UpdateExpenseDTO{
				Date: strPtr("2023-12-31"),
			}, today)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Account.RemainingBudget.String()).To(Equal("1000"))
		})

		It("rejects an explicit null amount", func() {
			res := create(owner, "100", "2024-01-05", 1)
			_, err := service.Update(ctx, owner, res.Expense.ID, expense.UpdateExpenseDTO{
				Amount: json.RawMessage(`null`),
			}, today)
			Expect(err.Error()).To(Equal("amount must be present"))
		})

		It("rejects moving into the future", func() {
			res := create(owner, "100", "2024-01-05", 1)
			_, err := service.Update(ctx, owner, res.Expense.ID, expense.UpdateExpenseDTO{
				Date: strPtr("2024-02-01"),
			}, today)
			Expect(err.Error()).To(Equal("date cannot be in the future"))
			stored, _ := repo.GetByID(ctx, res.Expense.ID)
			Expect(stored.Date).To(Equal(calendar.Date(2024, time.January, 5)))
		})

		It("checks a changed category", func() {
			res := create(owner, "100", "2024-01-05", 1)
			missing := int64(42)
			_, err := service.Update(ctx, owner, res.Expense.ID, expense.UpdateExpenseDTO{CategoryID: &missing}, today)
			Expect(err).To(MatchError(internal.ErrCategoryNotFound))
		})
	})

	Describe("Delete", func() {
		It("removes the expense and recalculates", func() {
			res := create(owner, "100", "2024-01-05", 1)
			acct, err := service.Delete(ctx, owner, res.Expense.ID, today)
			Expect(err).NotTo(HaveOccurred())
			Expect(acct.RemainingBudget.String()).To(Equal("1000"))
			Expect(repo.expenses).To(BeEmpty())
		})

		It("still deletes when recalculation fails", func() {
			res := create(owner, "100", "2024-01-05", 1)
			ledger.fail = errStore
			acct, err := service.Delete(ctx, owner, res.Expense.ID, today)
			Expect(err).NotTo(HaveOccurred())
			Expect(acct.RemainingBudget.String()).To(Equal("900"))
			Expect(repo.expenses).To(BeEmpty())
		})

		It("returns not found for an unknown id", func() {
			_, err := service.Delete(ctx, owner, 404, today)
			Expect(err).To(MatchError(internal.ErrExpenseNotFound))
		})
	})

	Describe("Filter", func() {
		BeforeEach(func() {
			create(owner, "10", "2024-01-01", 1)
			create(owner, "20", "2024-01-31", 2)
			create(owner, "40", "2023-12-31", 1)
			create(stranger, "1000", "2024-01-10", 1)
		})

		It("returns everything the user owns without filters", func() {
			res, err := service.Filter(ctx, owner, expense.FilterParams{})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Expenses).To(HaveLen(3))
			Expect(res.Total.String()).To(Equal("70"))
		})

		It("sums only the filtered set", func() {
			res, err := service.Filter(ctx, owner, expense.FilterParams{StartDate: "2024-01-01", EndDate: "2024-01-31"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Expenses).To(HaveLen(2))
			Expect(res.Total.String()).To(Equal("30"))
		})

		It("narrows by category", func() {
			res, err := service.Filter(ctx, owner, expense.FilterParams{CategoryID: "2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Expenses).To(HaveLen(1))
			Expect(res.Total.String()).To(Equal("20"))
		})

		It("returns not found for an unknown category", func() {
			_, err := service.Filter(ctx, owner, expense.FilterParams{CategoryID: "77"})
			Expect(err).To(MatchError(internal.ErrCategoryNotFound))
		})

		It("validates ranges before looking up the category", func() {
			_, err := service.Filter(ctx, owner, expense.FilterParams{MinPrice: "100", MaxPrice: "50", CategoryID: "77"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInvalidRange))
		})
	})

	Describe("Statistics", func() {
		It("sums each window", func() {
			create(owner, "10", "2024-01-20", 1)
			create(owner, "20", "2024-01-10", 1)
			create(owner, "30", "2023-12-15", 1)
			create(owner, "40", "2023-06-01", 1)

			stats, err := service.Statistics(ctx, owner, today)
			Expect(err).NotTo(HaveOccurred())
			resp := stats.ToResponse()
			Expect(resp.ThisMonth).To(Equal("30.00"))
			Expect(resp.LastWeek).To(Equal("20.00"))
			Expect(resp.LastMonth).To(Equal("30.00"))
			Expect(resp.LastQuarter).To(Equal("60.00"))
			Expect(resp.LastYear).To(Equal("70.00"))
		})
	})
})
