package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Setting keys.
const (
	SettingTotalInvestment = "total_investment"
	SettingInventoryValue  = "inventory_value"
)

// Setting stores a single user-editable or fetched dashboard figure.
type Setting struct {
	Name      string          `gorm:"primaryKey"`
	Value     decimal.Decimal `gorm:"type:decimal(14,4)"`
	UpdatedAt time.Time
}
