package matcher

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"skin-trade-dashboard-go/internal/models"
)

// ErrInvalidRecord is returned when an input record cannot take part in matching.
var ErrInvalidRecord = errors.New("invalid trade record")

// Matcher pairs sell-side trade records with buy-side costs per item.
// It holds configuration only, so one Matcher can be shared between goroutines.
type Matcher struct {
	bulkMarkers []string
}

// New creates a Matcher. With no markers, DefaultBulkMarkers is used.
func New(bulkMarkers ...string) *Matcher {
	if len(bulkMarkers) == 0 {
		bulkMarkers = DefaultBulkMarkers
	}
	markers := make([]string, len(bulkMarkers))
	copy(markers, bulkMarkers)
	return &Matcher{bulkMarkers: markers}
}

// IsBulk reports whether sell-side records of itemName are aggregated.
func (m *Matcher) IsBulk(itemName string) bool {
	return isBulk(itemName, m.bulkMarkers)
}

// buyCandidate is the cost information a record offers when treated as a purchase.
type buyCandidate struct {
	unitPrice    decimal.NullDecimal
	totalPrice   decimal.Decimal
	purchaseDate string
	quantity     int
}

// Match builds one MatchedTrade per item name that has at least one sell-side record.
func (m *Matcher) Match(records []models.TradeRecord) (*Result, error) {
	if err := validate(records); err != nil {
		return nil, err
	}

	candidates := indexBuyCandidates(records)
	result := newResult()
	for _, record := range records {
		if !record.IsSale() {
			continue
		}
		m.fold(result, candidates, record)
	}
	return result, nil
}

func validate(records []models.TradeRecord) error {
	for i, record := range records {
		if record.ItemName == "" {
			return fmt.Errorf("%w: record %d has no item_name", ErrInvalidRecord, i)
		}
		if record.Quantity < 0 {
			return fmt.Errorf("%w: record %d (%s) has negative quantity %d", ErrInvalidRecord, i, record.ItemName, record.Quantity)
		}
	}
	return nil
}

// indexBuyCandidates treats every record, sold or not, as a potential purchase.
func indexBuyCandidates(records []models.TradeRecord) map[string][]buyCandidate {
	index := make(map[string][]buyCandidate)
	for _, record := range records {
		index[record.ItemName] = append(index[record.ItemName], buyCandidate{
			unitPrice:    impliedUnitPrice(record.TotalPrice, record.Quantity),
			totalPrice:   record.TotalPrice,
			purchaseDate: record.PurchaseDate,
			quantity:     record.Quantity,
		})
	}
	return index
}

// impliedUnitPrice is total/quantity; a zero quantity gives an unknown price.
func impliedUnitPrice(total decimal.Decimal, quantity int) decimal.NullDecimal {
	if quantity == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(total.Div(decimal.NewFromInt(int64(quantity))))
}

// findBuyCandidate prefers a candidate bought on purchaseDate and falls back to the first one.
func findBuyCandidate(candidates []buyCandidate, purchaseDate string) (buyCandidate, bool) {
	if len(candidates) == 0 {
		return buyCandidate{}, false
	}
	for _, c := range candidates {
		if c.purchaseDate == purchaseDate {
			return c, true
		}
	}
	return candidates[0], true
}

func (m *Matcher) fold(result *Result, candidates map[string][]buyCandidate, record models.TradeRecord) {
	bulk := m.IsBulk(record.ItemName)
	if existing, ok := result.Get(record.ItemName); ok {
		if bulk {
			result.put(mergeBulk(existing, record))
		}
		// First sale of a non-bulk item wins; later ones are dropped.
		return
	}
	result.put(newMatchedTrade(record, candidates[record.ItemName], bulk))
}

func newMatchedTrade(record models.TradeRecord, candidates []buyCandidate, bulk bool) MatchedTrade {
	quantity := 1
	if bulk {
		quantity = record.Quantity
	}

	trade := MatchedTrade{
		ItemName:     record.ItemName,
		ItemURL:      record.ItemURL,
		Platform:     record.Platform,
		PurchaseDate: UnknownPurchaseDate,
		SaleDate:     record.SaleDate,
		Quantity:     quantity,
		SalePrice:    record.SalePrice.Decimal,
	}

	buy, ok := findBuyCandidate(candidates, record.PurchaseDate)
	if !ok {
		return trade
	}
	if buy.purchaseDate != "" {
		trade.PurchaseDate = buy.purchaseDate
	}
	trade.UnitPrice = buy.unitPrice
	if buy.unitPrice.Valid {
		// A whole lot costs exactly the buy total.
		total := buy.totalPrice.Mul(decimal.NewFromInt(int64(quantity))).Div(decimal.NewFromInt(int64(buy.quantity)))
		trade.TotalPrice = decimal.NewNullDecimal(total)
	}
	return trade
}

// mergeBulk folds a later sale of a bulk item into its entry.
func mergeBulk(acc MatchedTrade, record models.TradeRecord) MatchedTrade {
	acc.Quantity += record.Quantity
	acc.SalePrice = acc.SalePrice.Add(record.SalePrice.Decimal)
	if acc.TotalPrice.Valid {
		acc.TotalPrice = decimal.NewNullDecimal(acc.TotalPrice.Decimal.Add(record.TotalPrice))
	}
	return acc
}
