package expense_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/budget"
	budgetPostgres "github.com/frahmantamala/budget-ledger/internal/budget/postgres"
	"github.com/frahmantamala/budget-ledger/internal/category"
	categoryPostgres "github.com/frahmantamala/budget-ledger/internal/category/postgres"
	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	categoryDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/expense"
	userDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/user"
	"github.com/frahmantamala/budget-ledger/internal/expense"
	expensePostgres "github.com/frahmantamala/budget-ledger/internal/expense/postgres"
)

var _ = Describe("Expense Handler Integration", func() {
	var (
		db     *gorm.DB
		cache  *category.Cache
		router *chi.Mux
		user   *userDatamodel.User
		other  *userDatamodel.User
		foodID int64
		today  time.Time
	)

	serveAs := func(userID int64, method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		}
		req = req.WithContext(internal.ContextWithUserID(req.Context(), userID))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		return serveAs(user.ID, method, path, body)
	}

	remaining := func() string {
		var u userDatamodel.User
		Expect(db.First(&u, user.ID).Error).To(Succeed())
		return u.RemainingBudget.StringFixed(2)
	}

	createBody := func(amount, date string) string {
		return `{"amount":` + amount + `,"date":"` + date + `","description":"coffee","category_id":` +
			strconv.FormatInt(foodID, 10) + `}`
	}

	newUser := func(email string) *userDatamodel.User {
		u := &userDatamodel.User{
			Email:           email,
			FirstName:       "Test",
			LastName:        "User",
			PasswordHash:    "x",
			MaximumBudget:   decimal.NewFromInt(1000),
			RemainingBudget: decimal.NewFromInt(1000),
			ResetDate:       calendar.Date(2024, time.February, 1),
			DefaultCurrency: "USD",
			IsActive:        true,
		}
		Expect(db.Create(u).Error).To(Succeed())
		return u
	}

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		today = calendar.Date(2024, time.January, 31)

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&userDatamodel.User{}, &categoryDatamodel.Category{}, &expenseDatamodel.Expense{})).To(Succeed())

		cache, err = category.NewCache(1000, 100, time.Minute)
		Expect(err).NotTo(HaveOccurred())
		categories := category.NewService(categoryPostgres.NewCategoryRepository(db), cache, slogger)
		ledger := budget.NewLedger(budgetPostgres.NewBudgetRepository(db), nil, slogger)
		service := expense.NewService(expensePostgres.NewExpenseRepository(db), categories, ledger, slogger)
		handler := expense.NewHandler(service, calendar.FixedClock{At: today.Add(15 * time.Hour)})

		router = chi.NewRouter()
		router.Get("/expenses", handler.ListExpenses)
		router.Post("/expenses", handler.CreateExpense)
		router.Get("/expenses/filter", handler.FilterExpenses)
		router.Get("/expenses/statistics", handler.GetStatistics)
		router.Get("/expenses/{id}", handler.GetExpense)
		router.Patch("/expenses/{id}", handler.UpdateExpense)
		router.Delete("/expenses/{id}", handler.DeleteExpense)

		food := &categoryDatamodel.Category{Name: "Food"}
		Expect(db.Create(food).Error).To(Succeed())
		foodID = food.ID

		user = newUser("owner@example.com")
		other = newUser("other@example.com")
	})

	AfterEach(func() {
		cache.Close()
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	It("creates an expense and returns the new remaining budget", func() {
		w := serve(http.MethodPost, "/expenses", createBody("100", "2024-01-05"))
		Expect(w.Code).To(Equal(http.StatusCreated))

		var resp expense.ExpenseWriteResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Expense.Amount).To(Equal("100.00"))
		Expect(resp.Expense.Date).To(Equal("2024-01-05"))
		Expect(resp.RemainingBudget).To(Equal("900.00"))
		Expect(remaining()).To(Equal("900.00"))
	})

	It("lets the remaining budget go negative", func() {
		Expect(serve(http.MethodPost, "/expenses", createBody("1200", "2024-01-05")).Code).To(Equal(http.StatusCreated))
		Expect(remaining()).To(Equal("-200.00"))
	})

	It("ignores expenses outside the current month", func() {
		Expect(serve(http.MethodPost, "/expenses", createBody("300", "2023-12-31")).Code).To(Equal(http.StatusCreated))
		Expect(remaining()).To(Equal("1000.00"))
	})

	It("rejects 0 and accepts 0.01", func() {
		w := serve(http.MethodPost, "/expenses", createBody("0", "2024-01-05"))
		Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
		Expect(w.Body.String()).To(ContainSubstring("amount must be greater than 0"))

		w = serve(http.MethodPost, "/expenses", createBody("0.01", "2024-01-05"))
		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(remaining()).To(Equal("999.99"))
	})

	It("accepts today and rejects tomorrow", func() {
		Expect(serve(http.MethodPost, "/expenses", createBody("5", "2024-01-31")).Code).To(Equal(http.StatusCreated))

		w := serve(http.MethodPost, "/expenses", createBody("5", "2024-02-01"))
		Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
		Expect(w.Body.String()).To(ContainSubstring("date cannot be in the future"))
		Expect(remaining()).To(Equal("995.00"))
	})

	It("lists every invalid field", func() {
		w := serve(http.MethodPost, "/expenses", `{}`)
		Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))

		var resp struct {
			Error struct {
				Details internal.ValidationErrors `json:"details"`
			} `json:"error"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Error.Details.Fields()).To(Equal([]string{"amount", "date", "description", "category_id"}))
	})

	It("returns 404 for an unknown category", func() {
		w := serve(http.MethodPost, "/expenses", `{"amount":5,"date":"2024-01-05","description":"x","category_id":999}`)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("patches, then deletes, keeping the budget in step", func() {
		w := serve(http.MethodPost, "/expenses", createBody("100", "2024-01-05"))
		var created expense.ExpenseWriteResponse
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		path := "/expenses/" + strconv.FormatInt(created.Expense.ID, 10)

		w = serve(http.MethodPatch, path, `{"amount":"40.50"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		var updated expense.ExpenseWriteResponse
		Expect(json.NewDecoder(w.Body).Decode(&updated)).To(Succeed())
		Expect(updated.Expense.Description).To(Equal("coffee"))
		Expect(updated.RemainingBudget).To(Equal("959.50"))

		w = serve(http.MethodDelete, path, "")
		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(remaining()).To(Equal("1000.00"))

		Expect(serve(http.MethodGet, path, "").Code).To(Equal(http.StatusNotFound))
	})

	It("hides other users' expenses", func() {
		w := serve(http.MethodPost, "/expenses", createBody("100", "2024-01-05"))
		var created expense.ExpenseWriteResponse
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		path := "/expenses/" + strconv.FormatInt(created.Expense.ID, 10)

		Expect(serveAs(other.ID, http.MethodGet, path, "").Code).To(Equal(http.StatusNotFound))
		Expect(serveAs(other.ID, http.MethodDelete, path, "").Code).To(Equal(http.StatusNotFound))
		Expect(remaining()).To(Equal("900.00"))
	})

	Describe("filter", func() {
		BeforeEach(func() {
			Expect(serve(http.MethodPost, "/expenses", createBody("10", "2024-01-01")).Code).To(Equal(http.StatusCreated))
			Expect(serve(http.MethodPost, "/expenses", createBody("20", "2024-01-31")).Code).To(Equal(http.StatusCreated))
			// after today, so it cannot go through the API
			Expect(db.Create(&expenseDatamodel.Expense{
				UserID:      user.ID,
				CategoryID:  foodID,
				Amount:      decimal.NewFromInt(40),
				Date:        calendar.Date(2024, time.February, 1),
				Description: "later",
			}).Error).To(Succeed())
		})

		It("includes both boundary days and sums them", func() {
			w := serve(http.MethodGet, "/expenses/filter?start_date=2024-01-01&end_date=2024-01-31", "")
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp expense.FilterResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Expenses).To(HaveLen(2))
			Expect(resp.Expenses[0].Date).To(Equal("2024-01-01"))
			Expect(resp.Expenses[1].Date).To(Equal("2024-01-31"))
			Expect(resp.Total).To(Equal("30.00"))
		})

		It("filters by price", func() {
			w := serve(http.MethodGet, "/expenses/filter?min_price=15&max_price=40", "")
			var resp expense.FilterResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Expenses).To(HaveLen(2))
			Expect(resp.Total).To(Equal("60.00"))
		})

		It("returns 400 for an inverted price range", func() {
			w := serve(http.MethodGet, "/expenses/filter?min_price=100&max_price=50", "")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring(string(internal.ErrorTypeInvalidRange)))
		})

		It("returns 400 when one date is missing", func() {
			w := serve(http.MethodGet, "/expenses/filter?start_date=2024-01-01", "")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("param is missing or the value is empty: end_date"))
		})

		It("returns 404 for an unknown category", func() {
			w := serve(http.MethodGet, "/expenses/filter?category_id=999", "")
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("does not include other users' expenses", func() {
			w := serveAs(other.ID, http.MethodGet, "/expenses/filter", "")
			var resp expense.FilterResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Expenses).To(BeEmpty())
			Expect(resp.Total).To(Equal("0.00"))
		})
	})

	It("reports statistics", func() {
		Expect(serve(http.MethodPost, "/expenses", createBody("12.5", "2024-01-19")).Code).To(Equal(http.StatusCreated))
		w := serve(http.MethodGet, "/expenses/statistics", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp expense.StatisticsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.ThisMonth).To(Equal("12.50"))
		Expect(resp.LastYear).To(Equal("0.00"))
	})
})
