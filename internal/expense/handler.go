package expense

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/budget-ledger/internal/budget"
	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	"github.com/frahmantamala/budget-ledger/internal/transport"
	"github.com/frahmantamala/budget-ledger/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, userID int64, dto CreateExpenseDTO, today time.Time) (*WriteResult, error)
	GetByID(ctx context.Context, userID, id int64) (*Expense, error)
	List(ctx context.Context, userID int64) ([]*Expense, error)
	Update(ctx context.Context, userID, id int64, dto UpdateExpenseDTO, today time.Time) (*WriteResult, error)
	Delete(ctx context.Context, userID, id int64, today time.Time) (*budget.Account, error)
	Filter(ctx context.Context, userID int64, params FilterParams) (*FilterResult, error)
	Statistics(ctx context.Context, userID int64, today time.Time) (*Statistics, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Clock   calendar.Clock
}

func NewHandler(service ServiceAPI, clock calendar.Clock) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Clock:       clock,
	}
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.CurrentUserID(w, r)
	if !ok {
		return
	}

	var dto CreateExpenseDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.Create(r.Context(), userID, dto, calendar.Today(h.Clock))
	if err != nil {
		h.Logger.Warn("CreateExpense: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result.ToResponse())
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.CurrentUserID(w, r)
	if !ok {
		return
	}

	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	e, err := h.Service.GetByID(r.Context(), userID, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e.ToResponse())
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.CurrentUserID(w, r)
	if !ok {
		return
	}

	expenses, err := h.Service.List(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ExpensesResponse{Expenses: ToResponses(expenses)})
}

// UpdateExpense handles PATCH /expenses/{id}
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.CurrentUserID(w, r)
	if !ok {
		return
	}

	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateExpenseDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.Update(r.Context(), userID, id, dto, calendar.Today(h.Clock))
	if err != nil {
		h.Logger.Warn("UpdateExpense: service error", "error", err, "expense_id", id, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result.ToResponse())
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.CurrentUserID(w, r)
	if !ok {
		return
	}

	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if _, err := h.Service.Delete(r.Context(), userID, id, calendar.Today(h.Clock)); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FilterExpenses handles GET /expenses/filter
func (h *Handler) FilterExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.CurrentUserID(w, r)
	if !ok {
		return
	}

	result, err := h.Service.Filter(r.Context(), userID, FilterParamsFromQuery(r.URL.Query()))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result.ToResponse())
}

func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.CurrentUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.Service.Statistics(r.Context(), userID, calendar.Today(h.Clock))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats.ToResponse())
}
