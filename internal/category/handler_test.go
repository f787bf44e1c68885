package category_test

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

	"github.com/frahmantamala/budget-ledger/internal/category"
	categoryPostgres "github.com/frahmantamala/budget-ledger/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/expense"
	"github.com/frahmantamala/budget-ledger/internal/transport"
)

var _ = Describe("Category Handler Integration", func() {
	var (
		db      *gorm.DB
		cache   *category.Cache
		router  *chi.Mux
		slogger *slog.Logger
		foodID  int64
	)

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		var err error
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(db.AutoMigrate(&categoryDatamodel.Category{}, &expenseDatamodel.Expense{})).To(Succeed())

		repo := categoryPostgres.NewCategoryRepository(db)
		cache, err = category.NewCache(1000, 100, time.Minute)
		Expect(err).NotTo(HaveOccurred())
		service := category.NewService(repo, cache, slogger)
		handler := category.NewHandler(transport.NewBaseHandler(slogger), service)

		router = chi.NewRouter()
		router.Get("/categories", handler.GetCategories)
		router.Post("/categories", handler.CreateCategory)
		router.Get("/categories/{id}", handler.GetCategory)
		router.Put("/categories/{id}", handler.UpdateCategory)
		router.Delete("/categories/{id}", handler.DeleteCategory)

		food := &categoryDatamodel.Category{Name: "Food", Description: "Meals"}
		Expect(db.Create(food).Error).To(Succeed())
		Expect(db.Create(&categoryDatamodel.Category{Name: "Travel", Description: "Trips"}).Error).To(Succeed())
		foodID = food.ID
	})

	AfterEach(func() {
		cache.Close()
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	It("should handle GET /categories request successfully", func() {
		w := serve(http.MethodGet, "/categories", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response category.CategoriesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())

		names := make([]string, len(response.Categories))
		for i, cat := range response.Categories {
			names[i] = cat.Name
		}
		Expect(names).To(Equal([]string{"Food", "Travel"}))
	})

	It("should create a category", func() {
		w := serve(http.MethodPost, "/categories", `{"name":"Rent"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var response category.CategoryResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Name).To(Equal("Rent"))
		Expect(response.ID).To(BeNumerically(">", 0))
	})

	It("should return 409 for duplicate names", func() {
		w := serve(http.MethodPost, "/categories", `{"name":"food"}`)
		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("should return 404 for an unknown category", func() {
		w := serve(http.MethodGet, "/categories/999", "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should return 400 for a malformed id", func() {
		w := serve(http.MethodGet, "/categories/abc", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should update a category", func() {
		w := serve(http.MethodPut, "/categories/"+itoa(foodID), `{"name":"Groceries"}`)
		Expect(w.Code).To(Equal(http.StatusOK))

		w = serve(http.MethodGet, "/categories/"+itoa(foodID), "")
		Expect(w.Body.String()).To(ContainSubstring("Groceries"))
	})

	It("should reject deleting a category that expenses reference", func() {
		Expect(db.Create(&expenseDatamodel.Expense{
			UserID:      1,
			CategoryID:  foodID,
			Amount:      decimal.NewFromInt(5),
			Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Description: "lunch",
		}).Error).To(Succeed())

		w := serve(http.MethodDelete, "/categories/"+itoa(foodID), "")
		Expect(w.Code).To(Equal(http.StatusConflict))

		w = serve(http.MethodGet, "/categories/"+itoa(foodID), "")
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("should delete an unreferenced category", func() {
		w := serve(http.MethodDelete, "/categories/"+itoa(foodID), "")
		Expect(w.Code).To(Equal(http.StatusNoContent))

		w = serve(http.MethodGet, "/categories/"+itoa(foodID), "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
