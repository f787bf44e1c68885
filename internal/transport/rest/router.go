package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/budget-ledger/api"
	"github.com/frahmantamala/budget-ledger/internal/auth"
	"github.com/frahmantamala/budget-ledger/internal/budget"
	"github.com/frahmantamala/budget-ledger/internal/category"
	"github.com/frahmantamala/budget-ledger/internal/expense"
	"github.com/frahmantamala/budget-ledger/internal/transport/middleware"
	"github.com/frahmantamala/budget-ledger/internal/transport/swagger"
	"github.com/frahmantamala/budget-ledger/internal/user"
)

// Handlers groups the HTTP handlers mounted under /api/v1. A nil handler
// leaves its routes unregistered.
type Handlers struct {
	Health   *HealthHandler
	Auth     *auth.Handler
	User     *user.Handler
	Budget   *budget.Handler
	Expense  *expense.Handler
	Category *category.Handler
}

type RouterOptions struct {
	AllowedOrigins string
	Logger         *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts RouterOptions) {
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.LoggingMiddleware(opts.Logger))
	router.Use(middleware.RecoveryMiddleware(opts.Logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.OpenAPI)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/signup", h.Auth.Signup)
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		if h.Category != nil {
			r.Get("/categories", h.Category.GetCategories)
			r.Get("/categories/{id}", h.Category.GetCategory)
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Route("/users/me", func(ur chi.Router) {
				if h.User != nil {
					ur.Get("/", h.User.GetCurrentUser)
				}
				if h.Budget != nil {
					ur.Get("/budget", h.Budget.GetBudget)
					ur.Get("/maximum-budget", h.Budget.GetMaximumBudget)
					ur.Put("/maximum-budget", h.Budget.UpdateMaximumBudget)
					ur.Get("/remaining-budget", h.Budget.GetRemainingBudget)
					ur.Get("/default-currency", h.Budget.GetDefaultCurrency)
					ur.Put("/default-currency", h.Budget.UpdateDefaultCurrency)
				}
			})

			if h.Category != nil {
				pr.Post("/categories", h.Category.CreateCategory)
				pr.Put("/categories/{id}", h.Category.UpdateCategory)
				pr.Delete("/categories/{id}", h.Category.DeleteCategory)
			}

			if h.Expense != nil {
				pr.Route("/expenses", func(er chi.Router) {
					er.Post("/", h.Expense.CreateExpense)
					er.Get("/", h.Expense.ListExpenses)
					er.Get("/filter", h.Expense.FilterExpenses)
					er.Get("/statistics", h.Expense.GetStatistics)
					er.Get("/{id}", h.Expense.GetExpense)
					er.Patch("/{id}", h.Expense.UpdateExpense)
					er.Delete("/{id}", h.Expense.DeleteExpense)
				})
			}
		})
	})
}
