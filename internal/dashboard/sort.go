package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"skin-trade-dashboard-go/internal/ledger"
	"skin-trade-dashboard-go/internal/matcher"
)

// ErrUnknownColumn is returned when sorting by a column the table does not have.
var ErrUnknownColumn = errors.New("unknown sort column")

type sortKind int

const (
	sortText sortKind = iota
	sortNumber
	sortDate
)

var sortColumns = map[string]sortKind{
	"item_name":     sortText,
	"platform":      sortText,
	"purchase_date": sortDate,
	"sale_date":     sortDate,
	"quantity":      sortNumber,
	"unit_price":    sortNumber,
	"total_price":   sortNumber,
	"sale_price":    sortNumber,
	"profit":        sortNumber,
}

// SortMatched returns a copy of trades stably sorted by column.
// Unknown prices sort as zero and unparsable dates sort first.
func SortMatched(trades []matcher.MatchedTrade, column string, desc bool) ([]matcher.MatchedTrade, error) {
	kind, ok := sortColumns[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	sorted := make([]matcher.MatchedTrade, len(trades))
	copy(sorted, trades)

	var compare func(a, b matcher.MatchedTrade) int
	switch kind {
	case sortNumber:
		compare = func(a, b matcher.MatchedTrade) int {
			return numberValue(a, column).Cmp(numberValue(b, column))
		}
	case sortDate:
		compare = func(a, b matcher.MatchedTrade) int {
			return dateValue(a, column).Compare(dateValue(b, column))
		}
	default:
		compare = func(a, b matcher.MatchedTrade) int {
			return strings.Compare(textValue(a, column), textValue(b, column))
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		c := compare(sorted[i], sorted[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return sorted, nil
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

func numberValue(t matcher.MatchedTrade, column string) decimal.Decimal {
	switch column {
	case "quantity":
		return decimal.NewFromInt(int64(t.Quantity))
	case "unit_price":
		return orZero(t.UnitPrice)
	case "total_price":
		return orZero(t.TotalPrice)
	case "sale_price":
		return t.SalePrice
	default:
		return orZero(t.Profit())
	}
}

func dateValue(t matcher.MatchedTrade, column string) time.Time {
	raw := t.SaleDate
	if column == "purchase_date" {
		raw = t.PurchaseDate
	}
	parsed, err := time.Parse(ledger.StandardDateLayout, ledger.StandardizeDate(raw))
	if err != nil {
		if d, err := time.Parse(time.DateOnly, raw); err == nil {
			return d
		}
		return time.Time{}
	}
	return parsed
}

func textValue(t matcher.MatchedTrade, column string) string {
	if column == "platform" {
		return t.Platform
	}
	return t.ItemName
}
