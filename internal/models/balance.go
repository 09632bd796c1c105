package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PlatformBalance is the last successfully fetched wallet balance of a marketplace.
// There is at most one row per platform.
type PlatformBalance struct {
	gorm.Model
	Platform  string          `gorm:"uniqueIndex;not null"`
	Balance   decimal.Decimal `gorm:"type:decimal(14,4)"`
	FetchedAt time.Time
}
