package expense

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/budget"
	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	"github.com/frahmantamala/budget-ledger/internal/core/common/validation"
	expenseDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/expense"
	"github.com/shopspring/decimal"
)

type RepositoryAPI interface {
	Create(ctx context.Context, expense *expenseDatamodel.Expense) error
	// GetByID returns ErrExpenseNotFound when nothing matches.
	GetByID(ctx context.Context, id int64) (*expenseDatamodel.Expense, error)
	Update(ctx context.Context, expense *expenseDatamodel.Expense) error
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID int64) ([]*expenseDatamodel.Expense, error)
	Find(ctx context.Context, userID int64, criteria Criteria) ([]*expenseDatamodel.Expense, error)
	SumBetween(ctx context.Context, userID int64, r DateRange) (decimal.Decimal, error)
}

type CategoryChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// BudgetRecalculator is the ledger operation run after every committed
// expense write. GetAccount backs the response when recalculation fails.
type BudgetRecalculator interface {
	Recalculate(ctx context.Context, userID int64, today time.Time) (*budget.Account, error)
	GetAccount(ctx context.Context, userID int64) (*budget.Account, error)
}

// WriteResult pairs a stored expense with the owner's account after
// recalculation.
type WriteResult struct {
	Expense *Expense
	Account *budget.Account
}

func (r *WriteResult) ToResponse() ExpenseWriteResponse {
	return ExpenseWriteResponse{
		Expense:         r.Expense.ToResponse(),
		RemainingBudget: r.Account.RemainingBudget.StringFixed(2),
	}
}

type FilterResult struct {
	Expenses []*Expense
	Total    decimal.Decimal
}

func (r *FilterResult) ToResponse() FilterResponse {
	return FilterResponse{
		Expenses: ToResponses(r.Expenses),
		Total:    r.Total.StringFixed(2),
	}
}

type Service struct {
	repo       RepositoryAPI
	categories CategoryChecker
	ledger     BudgetRecalculator
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, categories CategoryChecker, ledger BudgetRecalculator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		categories: categories,
		ledger:     ledger,
		logger:     logger,
	}
}

func (s *Service) Create(ctx context.Context, userID int64, dto CreateExpenseDTO, today time.Time) (*WriteResult, error) {
	amount, appErr := parseAmount(dto.Amount)
	if appErr != nil {
		return nil, appErr
	}
	date, appErr := parseExpenseDate(dto.Date)
	if appErr != nil {
		return nil, appErr
	}

	candidate := Candidate{
		Amount:      amount,
		Date:        date,
		Description: strings.TrimSpace(dto.Description),
		CategoryID:  dto.CategoryID,
	}
	if err := Validate(candidate, today); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, candidate.CategoryID); err != nil {
		return nil, err
	}

	model := &expenseDatamodel.Expense{
		UserID:      userID,
		CategoryID:  candidate.CategoryID,
		Amount:      *candidate.Amount,
		Date:        *candidate.Date,
		Description: candidate.Description,
	}
	if err := s.repo.Create(ctx, model); err != nil {
		s.logger.Error("failed to create expense", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("expense created",
		"expense_id", model.ID,
		"user_id", userID,
		"amount", model.Amount.String(),
		"date", model.Date.Format(calendar.DateLayout))

	return s.afterWrite(ctx, userID, FromDataModel(model), today)
}

// GetByID hides other users' expenses behind ErrExpenseNotFound.
func (s *Service) GetByID(ctx context.Context, userID, id int64) (*Expense, error) {
	model, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(model), nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]*Expense, error) {
	models, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list expenses", "error", err, "user_id", userID)
		return nil, err
	}
	return fromDataModels(models), nil
}

// Update merges the supplied fields onto the stored expense and validates
// the result as a whole.
func (s *Service) Update(ctx context.Context, userID, id int64, dto UpdateExpenseDTO, today time.Time) (*WriteResult, error) {
	model, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	current := FromDataModel(model)
	candidate := current.candidate()

	if dto.Amount != nil {
		amount, appErr := parseAmount(dto.Amount)
		if appErr != nil {
			return nil, appErr
		}
		candidate.Amount = amount
	}
	if dto.Date != nil {
		date, appErr := parseExpenseDate(*dto.Date)
		if appErr != nil {
			return nil, appErr
		}
		candidate.Date = date
	}
	if dto.Description != nil {
		candidate.Description = strings.TrimSpace(*dto.Description)
	}
	if dto.CategoryID != nil {
		candidate.CategoryID = *dto.CategoryID
	}

	if err := Validate(candidate, today); err != nil {
		return nil, err
	}
	if candidate.CategoryID != current.CategoryID {
		if err := s.ensureCategory(ctx, candidate.CategoryID); err != nil {
			return nil, err
		}
	}

	model.Amount = *candidate.Amount
	model.Date = *candidate.Date
	model.Description = candidate.Description
	model.CategoryID = candidate.CategoryID
	if err := s.repo.Update(ctx, model); err != nil {
		s.logger.Error("failed to update expense", "error", err, "expense_id", id, "user_id", userID)
		return nil, err
	}

	s.logger.Info("expense updated", "expense_id", id, "user_id", userID)
	return s.afterWrite(ctx, userID, FromDataModel(model), today)
}

func (s *Service) Delete(ctx context.Context, userID, id int64, today time.Time) (*budget.Account, error) {
	if _, err := s.loadOwned(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete expense", "error", err, "expense_id", id, "user_id", userID)
		return nil, err
	}

	s.logger.Info("expense deleted", "expense_id", id, "user_id", userID)

	return s.settle(ctx, userID, id, today)
}

// Filter returns the user's expenses matching every supplied predicate and
// the sum over that result.
func (s *Service) Filter(ctx context.Context, userID int64, params FilterParams) (*FilterResult, error) {
	criteria, err := ParseCriteria(params)
	if err != nil {
		return nil, err
	}
	if criteria.CategoryID != nil {
		if err := s.ensureCategory(ctx, *criteria.CategoryID); err != nil {
			return nil, err
		}
	}

	models, err := s.repo.Find(ctx, userID, criteria)
	if err != nil {
		s.logger.Error("failed to filter expenses", "error", err, "user_id", userID)
		return nil, err
	}

	// total covers exactly the returned set
	expenses := criteria.Apply(fromDataModels(models))
	return &FilterResult{
		Expenses: expenses,
		Total:    Total(expenses),
	}, nil
}

func (s *Service) Statistics(ctx context.Context, userID int64, today time.Time) (*Statistics, error) {
	thisMonth, lastWeek, lastMonth, lastQuarter, lastYear := StatisticsWindows(today)

	var stats Statistics
	windows := []struct {
		r   DateRange
		dst *decimal.Decimal
	}{
		{thisMonth, &stats.ThisMonth},
		{lastWeek, &stats.LastWeek},
		{lastMonth, &stats.LastMonth},
		{lastQuarter, &stats.LastQuarter},
		{lastYear, &stats.LastYear},
	}
	for _, w := range windows {
		total, err := s.repo.SumBetween(ctx, userID, w.r)
		if err != nil {
			s.logger.Error("failed to compute expense statistics", "error", err, "user_id", userID)
			return nil, err
		}
		*w.dst = total
	}
	return &stats, nil
}

func (s *Service) afterWrite(ctx context.Context, userID int64, e *Expense, today time.Time) (*WriteResult, error) {
	acct, err := s.settle(ctx, userID, e.ID, today)
	if err != nil {
		return nil, err
	}
	return &WriteResult{Expense: e, Account: acct}, nil
}

// settle recalculates after a committed write. The write already happened,
// so a failed recalculation falls back to the stored account; the next
// write or reset recomputes the balance from scratch.
func (s *Service) settle(ctx context.Context, userID, expenseID int64, today time.Time) (*budget.Account, error) {
	acct, err := s.ledger.Recalculate(ctx, userID, today)
	if err == nil {
		return acct, nil
	}
	s.logger.Warn("recalculation after expense write failed, returning stored account",
		"error", err, "user_id", userID, "expense_id", expenseID)

	acct, err = s.ledger.GetAccount(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load account after expense write", "error", err, "user_id", userID, "expense_id", expenseID)
		return nil, err
	}
	return acct, nil
}

func (s *Service) loadOwned(ctx context.Context, userID, id int64) (*expenseDatamodel.Expense, error) {
	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if model.UserID != userID {
		return nil, errors.ErrExpenseNotFound
	}
	return model, nil
}

func (s *Service) ensureCategory(ctx context.Context, id int64) error {
	ok, err := s.categories.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrCategoryNotFound
	}
	return nil
}

// parseAmount rounds to cents before validation so the checked value is the
// stored one.
func parseAmount(raw json.RawMessage) (*decimal.Decimal, *errors.AppError) {
	amount, appErr := validation.ParseDecimal("amount", raw)
	if appErr != nil || amount == nil {
		return nil, appErr
	}
	rounded := amount.Round(2)
	return &rounded, nil
}

func parseExpenseDate(raw string) (*time.Time, *errors.AppError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	date, err := calendar.ParseDate(raw)
	if err != nil {
		return nil, errors.NewInvalidFormatError("date", dateFormatMessage("date"))
	}
	return &date, nil
}

func fromDataModels(models []*expenseDatamodel.Expense) []*Expense {
	out := make([]*Expense, 0, len(models))
	for _, m := range models {
		out = append(out, FromDataModel(m))
	}
	return out
}
