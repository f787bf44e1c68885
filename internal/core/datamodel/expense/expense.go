package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          int64           `gorm:"primaryKey"`
	UserID      int64           `gorm:"column:user_id;not null;index:idx_expenses_user_date,priority:1"`
	CategoryID  int64           `gorm:"column:category_id;not null;index"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Date        time.Time       `gorm:"column:date;type:date;not null;index:idx_expenses_user_date,priority:2"`
	Description string          `gorm:"column:description;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Expense) TableName() string {
	return "expenses"
}
