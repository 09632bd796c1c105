package ledger

import (
	"sort"
	"strings"

	"skin-trade-dashboard-go/internal/models"
)

// MatchThreshold is the minimum name similarity for two records to describe the same item.
const MatchThreshold = 0.6

type consolidated struct {
	record       models.TradeRecord
	wear         string
	standardized string
	platforms    map[string]struct{}
}

// Consolidate merges records of the same item, possibly listed under slightly
// different names on different platforms, into one record per item.
// A sale keeps the highest sale price seen and a purchase the lowest unit price.
func Consolidate(records []models.TradeRecord) []models.TradeRecord {
	var merged []*consolidated

	for _, record := range records {
		if record.ItemName == "" || record.Platform == "" {
			continue
		}
		wear, remaining := WearLevel(record.ItemName)
		standardized := StandardizeName(remaining)

		existing := findMatch(merged, wear, standardized)
		if existing == nil {
			item := record
			item.Quantity = 1
			item.TotalPrice = record.UnitPrice
			merged = append(merged, &consolidated{
				record:       item,
				wear:         wear,
				standardized: standardized,
				platforms:    map[string]struct{}{record.Platform: {}},
			})
			continue
		}
		existing.absorb(record)
	}

	out := make([]models.TradeRecord, 0, len(merged))
	for _, item := range merged {
		platforms := make([]string, 0, len(item.platforms))
		for p := range item.platforms {
			platforms = append(platforms, p)
		}
		sort.Strings(platforms)
		item.record.Platform = strings.Join(platforms, "/")
		out = append(out, item.record)
	}
	return out
}

func findMatch(merged []*consolidated, wear, standardized string) *consolidated {
	for _, item := range merged {
		if wearCompatible(wear, item.wear) && Similarity(standardized, item.standardized) >= MatchThreshold {
			return item
		}
	}
	return nil
}

func (c *consolidated) absorb(record models.TradeRecord) {
	existing := &c.record
	if record.IsSale() {
		if !existing.IsSale() || record.UnitPrice.GreaterThan(existing.SalePrice.Decimal) {
			existing.SaleDate = record.SaleDate
			existing.SalePrice.Decimal = record.UnitPrice
			existing.SalePrice.Valid = true
			c.platforms[record.Platform] = struct{}{}
		}
		return
	}
	if !existing.IsPurchase() || record.UnitPrice.LessThan(existing.UnitPrice) {
		existing.PurchaseDate = record.PurchaseDate
		existing.UnitPrice = record.UnitPrice
		existing.TotalPrice = record.TotalPrice
		c.platforms[record.Platform] = struct{}{}
	}
}
