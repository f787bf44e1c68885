package user_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	userDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/user"
	"github.com/frahmantamala/budget-ledger/internal/user"
	"github.com/frahmantamala/budget-ledger/internal/user/postgres"
)

var _ = Describe("Service", func() {
	var (
		db      *gorm.DB
		service *user.Service
		ctx     context.Context
		today   time.Time
	)

	register := func(email string) (*user.User, error) {
		return service.Register(ctx, user.RegisterParams{
			Email:        email,
			FirstName:    " Ada ",
			LastName:     "Lovelace",
			PasswordHash: "hash",
		}, today)
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&userDatamodel.User{})).To(Succeed())

		ctx = context.Background()
		today = calendar.Date(2024, time.December, 15)
		service = user.NewService(postgres.NewUserRepository(db), user.AccountDefaults{
			MaximumBudget: decimal.NewFromInt(1000),
			Currency:      "usd",
		}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Register", func() {
		It("seeds the ledger defaults", func() {
			u, err := register("Ada@Example.com ")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(BeNumerically(">", 0))
			Expect(u.Email).To(Equal("ada@example.com"))
			Expect(u.FirstName).To(Equal("Ada"))
			Expect(u.IsActive).To(BeTrue())
			Expect(u.Account.MaximumBudget.StringFixed(2)).To(Equal("1000.00"))
			Expect(u.Account.RemainingBudget.StringFixed(2)).To(Equal("1000.00"))
			Expect(u.Account.ResetDate).To(Equal(calendar.Date(2025, time.January, 1)))
			Expect(u.Account.DefaultCurrency).To(Equal("USD"))
		})

		It("rejects a duplicate email regardless of case", func() {
			_, err := register("ada@example.com")
			Expect(err).NotTo(HaveOccurred())

			_, err = register("ADA@example.com")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmailTaken))
		})
	})

	Describe("lookups", func() {
		It("finds by id and email", func() {
			created, err := register("ada@example.com")
			Expect(err).NotTo(HaveOccurred())

			byID, err := service.GetByID(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(byID.Email).To(Equal("ada@example.com"))

			byEmail, err := service.GetByEmail(ctx, "ADA@EXAMPLE.COM")
			Expect(err).NotTo(HaveOccurred())
			Expect(byEmail.ID).To(Equal(created.ID))
			Expect(byEmail.PasswordHash).To(Equal("hash"))
		})

		It("reports unknown users as not found", func() {
			_, err := service.GetByID(ctx, 42)
			Expect(err).To(MatchError(internal.ErrUserNotFound))

			_, err = service.GetByEmail(ctx, "nobody@example.com")
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("Handler", func() {
		It("returns the current user with the budget view", func() {
			created, err := register("ada@example.com")
			Expect(err).NotTo(HaveOccurred())

			handler := user.NewHandler(service)
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req = req.WithContext(internal.ContextWithUserID(req.Context(), created.ID))
			rec := httptest.NewRecorder()
			handler.GetCurrentUser(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var resp user.UserResponse
			Expect(json.NewDecoder(rec.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Email).To(Equal("ada@example.com"))
			Expect(resp.Budget.RemainingBudget).To(Equal("1000.00"))
			Expect(resp.Budget.ResetDate).To(Equal("2025-01-01"))
		})

		It("returns 401 without a user in context", func() {
			rec := httptest.NewRecorder()
			user.NewHandler(service).GetCurrentUser(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
