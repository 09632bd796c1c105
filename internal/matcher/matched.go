package matcher

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Profit classes used when rendering the completed trades table.
const (
	ProfitClassGain    = "gain"
	ProfitClassLoss    = "loss"
	ProfitClassUnknown = ""
)

// UnknownPurchaseDate is shown when no buy record dates a sale.
const UnknownPurchaseDate = "-"

// MatchedTrade is a sell-side record paired with the buy-side cost of the same item.
// UnitPrice and TotalPrice are invalid when no usable buy record was found.
type MatchedTrade struct {
	ItemName     string              `json:"item_name"`
	ItemURL      string              `json:"item_url,omitempty"`
	Platform     string              `json:"platform"`
	PurchaseDate string              `json:"purchase_date"`
	SaleDate     string              `json:"sale_date"`
	Quantity     int                 `json:"quantity"`
	UnitPrice    decimal.NullDecimal `json:"unit_price"`
	TotalPrice   decimal.NullDecimal `json:"total_price"`
	SalePrice    decimal.Decimal     `json:"sale_price"`
}

// Profit is SalePrice minus TotalPrice, or invalid when the cost is unknown.
func (m MatchedTrade) Profit() decimal.NullDecimal {
	if !m.TotalPrice.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(m.SalePrice.Sub(m.TotalPrice.Decimal))
}

// ProfitClass classifies the profit as a gain (including zero) or a loss.
func (m MatchedTrade) ProfitClass() string {
	profit := m.Profit()
	switch {
	case !profit.Valid:
		return ProfitClassUnknown
	case profit.Decimal.IsNegative():
		return ProfitClassLoss
	default:
		return ProfitClassGain
	}
}

// DisplayPlaces is the number of decimal places amounts are rounded to on the wire.
const DisplayPlaces = 2

func roundNull(d decimal.NullDecimal) decimal.NullDecimal {
	if !d.Valid {
		return d
	}
	return decimal.NewNullDecimal(d.Decimal.Round(DisplayPlaces))
}

// MarshalJSON adds the derived profit fields and rounds amounts to DisplayPlaces.
func (m MatchedTrade) MarshalJSON() ([]byte, error) {
	type plain MatchedTrade
	out := plain(m)
	out.UnitPrice = roundNull(m.UnitPrice)
	out.TotalPrice = roundNull(m.TotalPrice)
	out.SalePrice = m.SalePrice.Round(DisplayPlaces)
	return json.Marshal(struct {
		plain
		Profit      decimal.NullDecimal `json:"profit"`
		ProfitClass string              `json:"profit_class"`
	}{
		plain:       out,
		Profit:      roundNull(m.Profit()),
		ProfitClass: m.ProfitClass(),
	})
}

// Result maps item names to their MatchedTrade, ordered by first sell-side encounter.
type Result struct {
	order  []string
	trades map[string]MatchedTrade
}

func newResult() *Result {
	return &Result{trades: make(map[string]MatchedTrade)}
}

// Get returns the entry for itemName.
func (r *Result) Get(itemName string) (MatchedTrade, bool) {
	trade, ok := r.trades[itemName]
	return trade, ok
}

// Len returns the number of matched items.
func (r *Result) Len() int {
	return len(r.order)
}

// Trades returns the entries in insertion order.
func (r *Result) Trades() []MatchedTrade {
	out := make([]MatchedTrade, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.trades[name])
	}
	return out
}

// MarshalJSON encodes the result as an ordered array.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Trades())
}

func (r *Result) put(trade MatchedTrade) {
	if _, ok := r.trades[trade.ItemName]; !ok {
		r.order = append(r.order, trade.ItemName)
	}
	r.trades[trade.ItemName] = trade
}
