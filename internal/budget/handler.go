package budget

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	"github.com/frahmantamala/budget-ledger/internal/core/common/validation"
	"github.com/frahmantamala/budget-ledger/internal/transport"
	"github.com/frahmantamala/budget-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

type LedgerAPI interface {
	GetAccount(ctx context.Context, userID int64) (*Account, error)
	UpdateMaximumBudget(ctx context.Context, userID int64, value *decimal.Decimal, today time.Time) (*Account, error)
	UpdateDefaultCurrency(ctx context.Context, userID int64, code string) (*Account, error)
}

type Handler struct {
	*transport.BaseHandler
	Ledger LedgerAPI
	Clock  calendar.Clock
}

func NewHandler(ledger LedgerAPI, clock calendar.Clock) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Ledger:      ledger,
		Clock:       clock,
	}
}

// GetBudget handles GET /users/me/budget
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.CurrentUserID(w, r)
	if !ok {
		return
	}

	acct, err := h.Ledger.GetAccount(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, acct.ToResponse())
}

func (h *Handler) GetMaximumBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.CurrentUserID(w, r)
	if !ok {
		return
	}

	acct, err := h.Ledger.GetAccount(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MaximumBudgetResponse{
		MaximumBudget:   acct.MaximumBudget.StringFixed(2),
		RemainingBudget: acct.RemainingBudget.StringFixed(2),
	})
}

// UpdateMaximumBudget handles PUT /users/me/maximum-budget
func (h *Handler) UpdateMaximumBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.CurrentUserID(w, r)
	if !ok {
		return
	}

	var dto UpdateMaximumBudgetDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	value, appErr := validation.ParseDecimal("maximum_budget", dto.MaximumBudget)
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	acct, err := h.Ledger.UpdateMaximumBudget(r.Context(), userID, value, calendar.Today(h.Clock))
	if err != nil {
		h.Logger.Warn("UpdateMaximumBudget: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MaximumBudgetResponse{
		MaximumBudget:   acct.MaximumBudget.StringFixed(2),
		RemainingBudget: acct.RemainingBudget.StringFixed(2),
	})
}

func (h *Handler) GetRemainingBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.CurrentUserID(w, r)
	if !ok {
		return
	}

	acct, err := h.Ledger.GetAccount(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RemainingBudgetResponse{
		RemainingBudget: acct.RemainingBudget.StringFixed(2),
		ResetDate:       acct.ResetDate.Format(calendar.DateLayout),
	})
}

func (h *Handler) GetDefaultCurrency(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.CurrentUserID(w, r)
	if !ok {
		return
	}

	acct, err := h.Ledger.GetAccount(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, DefaultCurrencyResponse{DefaultCurrency: acct.DefaultCurrency})
}

// UpdateDefaultCurrency handles PUT /users/me/default-currency
func (h *Handler) UpdateDefaultCurrency(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.CurrentUserID(w, r)
	if !ok {
		return
	}

	var dto UpdateDefaultCurrencyDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	acct, err := h.Ledger.UpdateDefaultCurrency(r.Context(), userID, dto.DefaultCurrency)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, DefaultCurrencyResponse{DefaultCurrency: acct.DefaultCurrency})
}
