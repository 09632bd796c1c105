package ledger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"skin-trade-dashboard-go/internal/models"
)

// Platform is a marketplace whose exports live in their own sub directory.
type Platform struct {
	Dir         string
	DisplayName string
}

// Platforms lists the export directories in load order.
var Platforms = []Platform{
	{Dir: "buff", DisplayName: "BUFF"},
	{Dir: "youyou", DisplayName: "悠悠"},
	{Dir: "igxe", DisplayName: "IGXE"},
	{Dir: "c5", DisplayName: "C5"},
}

// StandardDateLayout is the layout dates are normalised to.
const StandardDateLayout = "2006-01-02 15:04:05"

const youpinDateLayout = "2006.01.0215:04:05"

// marketRow is the column layout of the BUFF and 悠悠有品 exports.
type marketRow struct {
	Item  string `csv:"饰品"`
	Price string `csv:"价格"`
	Time  string `csv:"时间"`
}

// genericRow is the column layout of every other export.
type genericRow struct {
	Name  string `csv:"name"`
	Price string `csv:"price"`
	Time  string `csv:"time"`
}

var hyperlinkPattern = regexp.MustCompile(`^=HYPERLINK\(\s*"([^"]*)"\s*[,;]\s*"([^"]*)"\s*\)`)

var utf8BOM = []byte("\xef\xbb\xbf")

// Loader reads per-platform buy and sale CSV exports from a data directory.
type Loader struct {
	root string
	log  *zap.Logger
}

// NewLoader creates a Loader rooted at dir.
func NewLoader(dir string, log *zap.Logger) *Loader {
	return &Loader{root: dir, log: log.Named("ledger")}
}

// Load returns one record per CSV row, in platform then file order.
// Unreadable files and rows with an unparsable price are skipped.
func (l *Loader) Load() ([]models.TradeRecord, error) {
	var records []models.TradeRecord
	for _, platform := range Platforms {
		dir := filepath.Join(l.root, platform.Dir)
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			l.log.Debug("No export directory for platform", zap.String("dir", dir))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", dir, err)
		}

		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".csv") {
				continue
			}
			lower := strings.ToLower(name)
			isBuy := strings.Contains(lower, "buy")
			isSale := strings.Contains(lower, "sale")
			if !isBuy && !isSale {
				l.log.Warn("File name has no buy or sale marker, skipping", zap.String("file", name))
				continue
			}

			path := filepath.Join(dir, name)
			rows, err := l.loadFile(path, platform, isBuy)
			if err != nil {
				l.log.Error("Failed to load export", zap.String("file", path), zap.Error(err))
				continue
			}
			l.log.Debug("Loaded export", zap.String("file", path), zap.Int("rows", len(rows)))
			records = append(records, rows...)
		}
	}
	l.log.Info("Loaded trade exports", zap.Int("records", len(records)))
	return records, nil
}

func (l *Loader) loadFile(path string, platform Platform, isBuy bool) ([]models.TradeRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	var cells []rowCells
	switch platform.Dir {
	case "buff", "youyou":
		var rows []*marketRow
		if err := gocsv.Unmarshal(bytes.NewReader(raw), &rows); err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		for _, r := range rows {
			cells = append(cells, rowCells{item: r.Item, price: r.Price, time: r.Time})
		}
	default:
		var rows []*genericRow
		if err := gocsv.Unmarshal(bytes.NewReader(raw), &rows); err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		for _, r := range rows {
			cells = append(cells, rowCells{item: r.Name, price: r.Price, time: r.Time})
		}
	}

	records := make([]models.TradeRecord, 0, len(cells))
	for i, c := range cells {
		record, ok := l.toRecord(c, platform, isBuy)
		if !ok {
			l.log.Warn("Skipping row", zap.String("file", path), zap.Int("row", i+1), zap.String("price", c.price))
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

type rowCells struct {
	item, price, time string
}

func (l *Loader) toRecord(c rowCells, platform Platform, isBuy bool) (models.TradeRecord, bool) {
	itemName, itemURL := ParseHyperlink(strings.TrimSpace(c.item))
	if itemName == "" {
		return models.TradeRecord{}, false
	}
	price, err := ParsePrice(c.price)
	if err != nil {
		return models.TradeRecord{}, false
	}

	record := models.TradeRecord{
		ItemName:   itemName,
		ItemURL:    itemURL,
		Quantity:   1,
		UnitPrice:  price,
		TotalPrice: price,
		Platform:   platform.DisplayName,
	}
	date := StandardizeDate(strings.TrimSpace(c.time))
	if isBuy {
		record.PurchaseDate = date
	} else {
		record.SaleDate = date
		record.SalePrice = decimal.NewNullDecimal(price)
	}
	return record, true
}

// ParseHyperlink splits a spreadsheet =HYPERLINK("url","name") cell.
// Any other cell is returned unchanged as the name.
func ParseHyperlink(cell string) (name, url string) {
	m := hyperlinkPattern.FindStringSubmatch(cell)
	if m == nil {
		return cell, ""
	}
	return m[2], m[1]
}

// ParsePrice parses an export price, ignoring currency signs.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer("¥", "", "￥", "", ",", "").Replace(s)
	return decimal.NewFromString(strings.TrimSpace(s))
}

// StandardizeDate converts 悠悠有品 style dates (2025.02.2114:02:00) to StandardDateLayout.
// Anything else is returned unchanged.
func StandardizeDate(s string) string {
	if !strings.Contains(s, ".") || len(s) != len(youpinDateLayout) {
		return s
	}
	t, err := time.Parse(youpinDateLayout, s)
	if err != nil {
		return s
	}
	return t.Format(StandardDateLayout)
}

// Split separates open holdings from completed trades. Records with neither date are dropped.
func Split(records []models.TradeRecord) (holdings, completed []models.TradeRecord) {
	holdings = []models.TradeRecord{}
	completed = []models.TradeRecord{}
	for _, record := range records {
		switch {
		case record.IsSale():
			completed = append(completed, record)
		case record.IsPurchase():
			holdings = append(holdings, record)
		}
	}
	return holdings, completed
}
