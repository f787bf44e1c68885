package expense_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/budget"
	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	expenseDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/expense"
	"github.com/frahmantamala/budget-ledger/internal/expense"
)

type MockRepository struct {
	mu       sync.Mutex
	nextID   int64
	expenses map[int64]*expenseDatamodel.Expense
	failNext error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{expenses: make(map[int64]*expenseDatamodel.Expense)}
}

func (m *MockRepository) take() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *MockRepository) Create(ctx context.Context, e *expenseDatamodel.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.take(); err != nil {
		return err
	}
	m.nextID++
	e.ID = m.nextID
	cp := *e
	m.expenses[e.ID] = &cp
	return nil
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*expenseDatamodel.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok {
		return nil, internal.ErrExpenseNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *MockRepository) Update(ctx context.Context, e *expenseDatamodel.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.take(); err != nil {
		return err
	}
	if _, ok := m.expenses[e.ID]; !ok {
		return internal.ErrExpenseNotFound
	}
	cp := *e
	m.expenses[e.ID] = &cp
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.take(); err != nil {
		return err
	}
	if _, ok := m.expenses[id]; !ok {
		return internal.ErrExpenseNotFound
	}
	delete(m.expenses, id)
	return nil
}

func (m *MockRepository) ListByUser(ctx context.Context, userID int64) ([]*expenseDatamodel.Expense, error) {
	return m.Find(ctx, userID, expense.Criteria{})
}

// Find returns the user's expenses unfiltered so tests exercise the
// service-side predicate pass.
func (m *MockRepository) Find(ctx context.Context, userID int64, c expense.Criteria) ([]*expenseDatamodel.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*expenseDatamodel.Expense
	for _, e := range m.expenses {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockRepository) SumBetween(ctx context.Context, userID int64, r expense.DateRange) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, e := range m.expenses {
		if e.UserID == userID && !e.Date.Before(r.Start) && !e.Date.After(r.End) {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (m *MockRepository) sumMonth(userID int64, today time.Time) decimal.Decimal {
	period := calendar.MonthOf(today)
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, e := range m.expenses {
		if e.UserID == userID && period.Contains(e.Date) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

type MockCategories struct {
	ids map[int64]bool
}

func (m *MockCategories) Exists(ctx context.Context, id int64) (bool, error) {
	return m.ids[id], nil
}

// MockLedger recomputes from the mock repository the way the real ledger
// does and records every call.
type MockLedger struct {
	repo    *MockRepository
	maximum decimal.Decimal
	calls   []time.Time
	fail    error
	readErr error
	stored  *budget.Account
}

func (m *MockLedger) Recalculate(ctx context.Context, userID int64, today time.Time) (*budget.Account, error) {
	m.calls = append(m.calls, today)
	if m.fail != nil {
		return nil, m.fail
	}
	m.stored = &budget.Account{
		UserID:          userID,
		MaximumBudget:   m.maximum,
		RemainingBudget: m.maximum.Sub(m.repo.sumMonth(userID, today)),
		ResetDate:       calendar.NextMonthStart(today),
		DefaultCurrency: "USD",
	}
	cp := *m.stored
	return &cp, nil
}

// GetAccount returns the last recalculated account, or a fresh one when
// nothing has been recalculated yet.
func (m *MockLedger) GetAccount(ctx context.Context, userID int64) (*budget.Account, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	if m.stored == nil {
		return &budget.Account{UserID: userID, MaximumBudget: m.maximum, RemainingBudget: m.maximum, DefaultCurrency: "USD"}, nil
	}
	cp := *m.stored
	return &cp, nil
}

var errStore = errors.New("store unavailable")
