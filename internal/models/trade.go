package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TradeRecord is a purchase, or a sale of an earlier purchase, of one marketplace item.
// A non-empty SaleDate is the only thing that marks a record as sell-side.
type TradeRecord struct {
	gorm.Model   `json:"-"`
	ItemName     string              `json:"item_name" gorm:"index;not null"`
	ItemURL      string              `json:"item_url,omitempty"`
	Quantity     int                 `json:"quantity" gorm:"not null"`
	UnitPrice    decimal.Decimal     `json:"unit_price" gorm:"type:decimal(14,4)"`
	TotalPrice   decimal.Decimal     `json:"total_price" gorm:"type:decimal(14,4)"`
	PurchaseDate string              `json:"purchase_date,omitempty"`
	SalePrice    decimal.NullDecimal `json:"sale_price,omitempty" gorm:"type:decimal(14,4)"`
	SaleDate     string              `json:"sale_date,omitempty"`
	Platform     string              `json:"platform"`
}

// IsSale reports whether the record represents a completed sale.
func (t TradeRecord) IsSale() bool {
	return t.SaleDate != ""
}

// IsPurchase reports whether the record carries a purchase date.
func (t TradeRecord) IsPurchase() bool {
	return t.PurchaseDate != ""
}
