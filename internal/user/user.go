package user

import (
	"time"

	"github.com/frahmantamala/budget-ledger/internal/budget"
	userDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/user"
)

type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsActive     bool
	Account      budget.Account
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Budget:    u.Account.ToResponse(),
		CreatedAt: u.CreatedAt,
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		PasswordHash:    u.PasswordHash,
		MaximumBudget:   u.Account.MaximumBudget,
		RemainingBudget: u.Account.RemainingBudget,
		ResetDate:       u.Account.ResetDate,
		DefaultCurrency: u.Account.DefaultCurrency,
		IsActive:        u.IsActive,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		Account:      *budget.FromDataModel(u),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
