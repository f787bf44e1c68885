package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeBudgetRecalculated = "budget.recalculated"
	EventTypeBudgetReset        = "budget.reset"
)

// UserEvent is implemented by events that belong to a single ledger owner.
type UserEvent interface {
	Event
	OwnerID() int64
}

type BudgetRecalculatedEvent struct {
	BaseEvent
	UserID          int64           `json:"user_id"`
	MaximumBudget   decimal.Decimal `json:"maximum_budget"`
	RemainingBudget decimal.Decimal `json:"remaining_budget"`
	PeriodStart     time.Time       `json:"period_start"`
}

func NewBudgetRecalculatedEvent(userID int64, maximum, remaining decimal.Decimal, periodStart time.Time) *BudgetRecalculatedEvent {
	return &BudgetRecalculatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeBudgetRecalculated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":          userID,
				"maximum_budget":   maximum.StringFixed(2),
				"remaining_budget": remaining.StringFixed(2),
				"period_start":     periodStart.Format("2006-01-02"),
			},
		},
		UserID:          userID,
		MaximumBudget:   maximum,
		RemainingBudget: remaining,
		PeriodStart:     periodStart,
	}
}

func (e *BudgetRecalculatedEvent) OwnerID() int64 {
	return e.UserID
}

type BudgetResetEvent struct {
	BaseEvent
	UserID            int64           `json:"user_id"`
	PreviousResetDate time.Time       `json:"previous_reset_date"`
	ResetDate         time.Time       `json:"reset_date"`
	RemainingBudget   decimal.Decimal `json:"remaining_budget"`
}

func NewBudgetResetEvent(userID int64, previous, next time.Time, remaining decimal.Decimal) *BudgetResetEvent {
	return &BudgetResetEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeBudgetReset,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":             userID,
				"previous_reset_date": previous.Format("2006-01-02"),
				"reset_date":          next.Format("2006-01-02"),
				"remaining_budget":    remaining.StringFixed(2),
			},
		},
		UserID:            userID,
		PreviousResetDate: previous,
		ResetDate:         next,
		RemainingBudget:   remaining,
	}
}

func (e *BudgetResetEvent) OwnerID() int64 {
	return e.UserID
}
