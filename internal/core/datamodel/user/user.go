package user

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID              int64           `gorm:"primaryKey"`
	Email           string          `gorm:"column:email;uniqueIndex;not null"`
	FirstName       string          `gorm:"column:first_name;not null"`
	LastName        string          `gorm:"column:last_name;not null"`
	PasswordHash    string          `gorm:"column:password_hash;not null"`
	MaximumBudget   decimal.Decimal `gorm:"column:maximum_budget;type:numeric(12,2);not null"`
	RemainingBudget decimal.Decimal `gorm:"column:remaining_budget;type:numeric(12,2);not null"`
	ResetDate       time.Time       `gorm:"column:reset_date;type:date;not null"`
	DefaultCurrency string          `gorm:"column:default_currency;size:3;not null"`
	IsActive        bool            `gorm:"column:is_active;default:true"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
