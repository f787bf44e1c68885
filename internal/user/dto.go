package user

import (
	"time"

	"github.com/frahmantamala/budget-ledger/internal/budget"
)

type UserResponse struct {
	ID        int64                  `json:"id"`
	Email     string                 `json:"email"`
	FirstName string                 `json:"first_name"`
	LastName  string                 `json:"last_name"`
	Budget    budget.AccountResponse `json:"budget"`
	CreatedAt time.Time              `json:"created_at"`
}

// RegisterParams is a new user with an already hashed password.
type RegisterParams struct {
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
}
