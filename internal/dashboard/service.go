package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"skin-trade-dashboard-go/internal/config"
	"skin-trade-dashboard-go/internal/ledger"
	"skin-trade-dashboard-go/internal/matcher"
	"skin-trade-dashboard-go/internal/models"
	"skin-trade-dashboard-go/internal/platform"
	"skin-trade-dashboard-go/internal/store"
)

// AllPlatforms selects every balance source in UpdateBalance.
const AllPlatforms = "all"

// buffDisplayName is the platform value of trades imported from BUFF exports.
const buffDisplayName = "BUFF"

var (
	// ErrUnknownPlatform is returned for a balance refresh of an unknown platform.
	ErrUnknownPlatform = errors.New("unknown platform")
	// ErrInvalidInvestment is returned for a negative total investment.
	ErrInvalidInvestment = errors.New("total investment must not be negative")
)

// Dependencies are the collaborators of a Service. Valuer and Lister are optional.
type Dependencies struct {
	Store     *store.Store
	Matcher   *matcher.Matcher
	Loader    *ledger.Loader
	Fetchers  []platform.BalanceFetcher
	Valuer    platform.InventoryValuer
	Lister    platform.InventoryLister
	Valuation config.Valuation
}

// Service assembles the dashboard figures and runs the refresh operations behind the API.
type Service struct {
	logger    *zap.Logger
	store     *store.Store
	matcher   *matcher.Matcher
	loader    *ledger.Loader
	fetchers  map[string]platform.BalanceFetcher
	valuer    platform.InventoryValuer
	lister    platform.InventoryLister
	valuation config.Valuation

	// balanceMu serialises balance refreshes from the API and the refresher.
	balanceMu sync.Mutex
	importMu  sync.Mutex
}

// NewService creates a new dashboard Service.
func NewService(logger *zap.Logger, deps Dependencies) *Service {
	fetchers := make(map[string]platform.BalanceFetcher, len(deps.Fetchers))
	for _, f := range deps.Fetchers {
		fetchers[f.Name()] = f
	}
	m := deps.Matcher
	if m == nil {
		m = matcher.New()
	}
	return &Service{
		logger:    logger.Named("dashboard"),
		store:     deps.Store,
		matcher:   m,
		loader:    deps.Loader,
		fetchers:  fetchers,
		valuer:    deps.Valuer,
		lister:    deps.Lister,
		valuation: deps.Valuation,
	}
}

// Balances are the stored per-platform wallet balances.
type Balances struct {
	Buff   decimal.Decimal `json:"buff_balance"`
	Youpin decimal.Decimal `json:"youpin_balance"`
	IGXE   decimal.Decimal `json:"igxe_balance"`
	C5     decimal.Decimal `json:"c5_balance"`
	Total  decimal.Decimal `json:"total_balance"`
}

func newBalances(stored map[string]decimal.Decimal) Balances {
	b := Balances{
		Buff:   stored[platform.Buff].Round(2),
		Youpin: stored[platform.Youpin].Round(2),
		IGXE:   stored[platform.IGXE].Round(2),
		C5:     stored[platform.C5].Round(2),
	}
	total := decimal.Zero
	for _, name := range platform.Names {
		total = total.Add(stored[name])
	}
	b.Total = total.Round(2)
	return b
}

// Snapshot is the full dashboard payload.
type Snapshot struct {
	TotalInvestment decimal.Decimal `json:"total_investment"`
	InventoryValue  decimal.Decimal `json:"inventory_value"`
	TotalValue      decimal.Decimal `json:"total_value"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
	ProfitRatio     decimal.Decimal `json:"profit_ratio"`
	Balances
	BuffTotalBuy    decimal.Decimal      `json:"buff_total_buy"`
	BuffTotalSale   decimal.Decimal      `json:"buff_total_sale"`
	BuffNetProfit   decimal.Decimal      `json:"buff_net_profit"`
	Holdings        []models.TradeRecord `json:"holdings"`
	CompletedTrades []models.TradeRecord `json:"completed_trades"`
	MatchedTrades   *matcher.Result      `json:"matched_trades"`
}

// Snapshot computes the dashboard figures from the stored trades, balances and settings.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	trades, err := s.store.ListTrades(ctx)
	if err != nil {
		return nil, err
	}
	holdings, completed := ledger.Split(trades)

	customInvestment, err := s.setting(ctx, models.SettingTotalInvestment)
	if err != nil {
		return nil, err
	}
	inventoryValue, err := s.setting(ctx, models.SettingInventoryValue)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.Balances(ctx)
	if err != nil {
		return nil, err
	}

	totalInvestment := customInvestment
	if !customInvestment.IsPositive() {
		totalInvestment = sumTotalPrice(holdings, "")
	}

	balances := newBalances(stored)
	totalBalance := decimal.Zero
	for _, name := range platform.Names {
		totalBalance = totalBalance.Add(stored[name])
	}
	totalValue := totalBalance.Mul(decimal.NewFromFloat(s.valuation.BalanceFactor)).
		Add(inventoryValue.Mul(decimal.NewFromFloat(s.valuation.InventoryFactor)))
	totalProfit := totalValue.Sub(totalInvestment)
	profitRatio := decimal.Zero
	if totalInvestment.IsPositive() {
		profitRatio = totalProfit.Div(totalInvestment).Mul(decimal.NewFromInt(100))
	}

	buffBuy := sumTotalPrice(holdings, buffDisplayName)
	buffSale := sumSalePrice(completed, buffDisplayName)

	matched, err := s.matcher.Match(completed)
	if err != nil {
		return nil, fmt.Errorf("failed to match trades: %w", err)
	}

	s.logger.Debug("Built snapshot",
		zap.Int("holdings", len(holdings)),
		zap.Int("completed", len(completed)),
		zap.Int("matched", matched.Len()),
	)

	return &Snapshot{
		TotalInvestment: totalInvestment.Round(2),
		InventoryValue:  inventoryValue.Round(2),
		TotalValue:      totalValue.Round(2),
		TotalProfit:     totalProfit.Round(2),
		ProfitRatio:     profitRatio.Round(2),
		Balances:        balances,
		BuffTotalBuy:    buffBuy.Round(2),
		BuffTotalSale:   buffSale.Round(2),
		BuffNetProfit:   buffSale.Sub(buffBuy).Round(2),
		Holdings:        holdings,
		CompletedTrades: completed,
		MatchedTrades:   matched,
	}, nil
}

// MatchedTrades matches the stored completed trades and orders them by column.
// An empty column keeps the matcher order.
func (s *Service) MatchedTrades(ctx context.Context, column string, desc bool) ([]matcher.MatchedTrade, error) {
	trades, err := s.store.ListTrades(ctx)
	if err != nil {
		return nil, err
	}
	_, completed := ledger.Split(trades)
	result, err := s.matcher.Match(completed)
	if err != nil {
		return nil, fmt.Errorf("failed to match trades: %w", err)
	}
	if column == "" {
		return result.Trades(), nil
	}
	return SortMatched(result.Trades(), column, desc)
}

// Match runs the matcher over an arbitrary record list.
func (s *Service) Match(records []models.TradeRecord) (*matcher.Result, error) {
	return s.matcher.Match(records)
}

// SetTotalInvestment stores the custom total investment. Zero reverts to the sum of holdings.
func (s *Service) SetTotalInvestment(ctx context.Context, value decimal.Decimal) error {
	if value.IsNegative() {
		return ErrInvalidInvestment
	}
	if err := s.store.SaveSetting(ctx, models.SettingTotalInvestment, value); err != nil {
		return err
	}
	s.logger.Info("Total investment updated", zap.String("value", value.String()))
	return nil
}

func (s *Service) setting(ctx context.Context, key string) (decimal.Decimal, error) {
	value, err := s.store.Setting(ctx, key)
	if errors.Is(err, store.ErrSettingNotFound) {
		return decimal.Zero, nil
	}
	return value, err
}

func sumTotalPrice(records []models.TradeRecord, platformName string) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		if platformName == "" || r.Platform == platformName {
			sum = sum.Add(r.TotalPrice)
		}
	}
	return sum
}

func sumSalePrice(records []models.TradeRecord, platformName string) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		if r.Platform == platformName && r.SalePrice.Valid {
			sum = sum.Add(r.SalePrice.Decimal)
		}
	}
	return sum
}
