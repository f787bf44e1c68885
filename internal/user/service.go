package user

import (
	"context"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/budget"
	userDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/user"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// GetByID returns ErrUserNotFound when nothing matches.
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	// GetByEmail returns nil, nil when nothing matches.
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
}

// AccountDefaults seed the ledger of every new user.
type AccountDefaults struct {
	MaximumBudget decimal.Decimal
	Currency      string
}

type Service struct {
	repo     Repository
	defaults AccountDefaults
	logger   *slog.Logger
}

func NewService(repo Repository, defaults AccountDefaults, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		defaults: defaults,
		logger:   logger,
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(u), nil
}

// GetByEmail matches case-insensitively and returns ErrUserNotFound when
// nothing matches.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errors.ErrUserNotFound
	}
	return FromDataModel(u), nil
}

// Register stores a new active user whose ledger starts at the configured
// allowance with the first reset on the first day of next month.
func (s *Service) Register(ctx context.Context, params RegisterParams, today time.Time) (*User, error) {
	email := NormalizeEmail(params.Email)

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.NewConflictError("email has already been taken", errors.ErrCodeEmailTaken)
	}

	u := &User{
		Email:        email,
		FirstName:    strings.TrimSpace(params.FirstName),
		LastName:     strings.TrimSpace(params.LastName),
		PasswordHash: params.PasswordHash,
		IsActive:     true,
		Account:      budget.NewAccountDefaults(today, s.defaults.MaximumBudget, s.defaults.Currency),
	}

	model := ToDataModel(u)
	if err := s.repo.Create(ctx, model); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", email)
		return nil, err
	}

	s.logger.Info("user registered", "user_id", model.ID, "reset_date", u.Account.ResetDate.Format("2006-01-02"))
	return FromDataModel(model), nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
