package dashboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"skin-trade-dashboard-go/internal/config"
	"skin-trade-dashboard-go/internal/database"
	"skin-trade-dashboard-go/internal/ledger"
	"skin-trade-dashboard-go/internal/models"
	"skin-trade-dashboard-go/internal/platform"
	"skin-trade-dashboard-go/internal/store"
)

// MockFetcher is a mock platform client.
type MockFetcher struct {
	mock.Mock
	name string
}

func (m *MockFetcher) Name() string {
	return m.name
}

func (m *MockFetcher) FetchBalance(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockFetcher) FetchInventoryValue(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockFetcher) FetchInventory(ctx context.Context) ([]platform.InventoryItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]platform.InventoryItem), args.Error(1)
}

func newMockFetcher(name string) *MockFetcher {
	return &MockFetcher{name: name}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setupStore(t *testing.T) *store.Store {
	db, err := database.NewDatabase(&config.Database{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	return store.New(db)
}

var testValuation = config.Valuation{BalanceFactor: 0.99, InventoryFactor: 0.965}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	st := setupStore(t)
	require.NoError(t, st.ReplaceTrades(ctx, []models.TradeRecord{
		{ItemName: "AK-47 | 红线 (久经沙场)", Quantity: 1, UnitPrice: dec("80"), TotalPrice: dec("80"), PurchaseDate: "2024-01-01", Platform: "BUFF"},
		{ItemName: "M4A1 | 氮化处理 (略有磨损)", Quantity: 1, UnitPrice: dec("20"), TotalPrice: dec("20"), PurchaseDate: "2024-01-03", Platform: "IGXE"},
		{ItemName: "梦魇武器箱", Quantity: 2, UnitPrice: dec("5"), TotalPrice: dec("10"), PurchaseDate: "2024-01-02",
			SalePrice: decimal.NewNullDecimal(dec("16")), SaleDate: "2024-02-01", Platform: "BUFF"},
	}))
	require.NoError(t, st.SaveBalance(ctx, platform.Buff, dec("100")))
	require.NoError(t, st.SaveBalance(ctx, platform.C5, dec("50")))
	require.NoError(t, st.SaveSetting(ctx, models.SettingInventoryValue, dec("200")))

	svc := NewService(zap.NewNop(), Dependencies{Store: st, Valuation: testValuation})

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	// No custom investment: sum of holdings.
	assert.True(t, dec("100").Equal(snap.TotalInvestment), "total_investment %s", snap.TotalInvestment)
	assert.True(t, dec("150").Equal(snap.Total))
	assert.True(t, dec("100").Equal(snap.Buff))
	assert.True(t, snap.Youpin.IsZero())
	// 150*0.99 + 200*0.965
	assert.True(t, dec("341.5").Equal(snap.TotalValue), "total_value %s", snap.TotalValue)
	assert.True(t, dec("241.5").Equal(snap.TotalProfit))
	assert.True(t, dec("241.5").Equal(snap.ProfitRatio))
	assert.True(t, dec("80").Equal(snap.BuffTotalBuy))
	assert.True(t, dec("16").Equal(snap.BuffTotalSale))
	assert.True(t, dec("-64").Equal(snap.BuffNetProfit))
	assert.Len(t, snap.Holdings, 2)
	assert.Len(t, snap.CompletedTrades, 1)

	require.Equal(t, 1, snap.MatchedTrades.Len())
	matched, ok := snap.MatchedTrades.Get("梦魇武器箱")
	require.True(t, ok)
	assert.Equal(t, 2, matched.Quantity)
	assert.True(t, dec("6").Equal(matched.Profit().Decimal))

	t.Run("CustomInvestment", func(t *testing.T) {
		require.NoError(t, svc.SetTotalInvestment(ctx, dec("300")))
		snap, err := svc.Snapshot(ctx)
		require.NoError(t, err)
		assert.True(t, dec("300").Equal(snap.TotalInvestment))
		assert.True(t, dec("41.5").Equal(snap.TotalProfit))
		assert.True(t, dec("13.83").Equal(snap.ProfitRatio), "profit_ratio %s", snap.ProfitRatio)
	})

	t.Run("ZeroInvestmentRevertsToHoldings", func(t *testing.T) {
		require.NoError(t, svc.SetTotalInvestment(ctx, decimal.Zero))
		snap, err := svc.Snapshot(ctx)
		require.NoError(t, err)
		assert.True(t, dec("100").Equal(snap.TotalInvestment))
	})
}

func TestSnapshot_Empty(t *testing.T) {
	svc := NewService(zap.NewNop(), Dependencies{Store: setupStore(t), Valuation: testValuation})

	snap, err := svc.Snapshot(context.Background())

	require.NoError(t, err)
	assert.True(t, snap.TotalInvestment.IsZero())
	assert.True(t, snap.ProfitRatio.IsZero())
	assert.NotNil(t, snap.Holdings)
	assert.NotNil(t, snap.CompletedTrades)
	assert.Equal(t, 0, snap.MatchedTrades.Len())
}

func TestSetTotalInvestment_Negative(t *testing.T) {
	svc := NewService(zap.NewNop(), Dependencies{Store: setupStore(t)})

	err := svc.SetTotalInvestment(context.Background(), dec("-1"))

	assert.ErrorIs(t, err, ErrInvalidInvestment)
}

func TestUpdateBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("AllKeepsPreviousOnFailure", func(t *testing.T) {
		st := setupStore(t)
		require.NoError(t, st.SaveBalance(ctx, platform.IGXE, dec("42")))

		buff := newMockFetcher(platform.Buff)
		buff.On("FetchBalance", mock.Anything).Return(dec("10.5"), nil)
		igxe := newMockFetcher(platform.IGXE)
		igxe.On("FetchBalance", mock.Anything).Return(decimal.Zero, errors.New("login expired"))
		c5 := newMockFetcher(platform.C5)
		c5.On("FetchBalance", mock.Anything).Return(dec("7"), nil)

		svc := NewService(zap.NewNop(), Dependencies{Store: st, Fetchers: []platform.BalanceFetcher{buff, igxe, c5}})

		update, err := svc.UpdateBalance(ctx, AllPlatforms)

		require.NoError(t, err)
		assert.Equal(t, map[string]bool{
			"buff_balance":   true,
			"youpin_balance": false,
			"igxe_balance":   false,
			"c5_balance":     true,
		}, update.UpdateStatus)
		assert.True(t, dec("10.5").Equal(update.Buff))
		assert.True(t, dec("42").Equal(update.IGXE))
		assert.True(t, dec("7").Equal(update.C5))
		assert.True(t, dec("59.5").Equal(update.Total))
		buff.AssertExpectations(t)
		igxe.AssertExpectations(t)
		c5.AssertExpectations(t)
	})

	t.Run("SinglePlatform", func(t *testing.T) {
		buff := newMockFetcher(platform.Buff)
		c5 := newMockFetcher(platform.C5)
		c5.On("FetchBalance", mock.Anything).Return(dec("3"), nil)
		svc := NewService(zap.NewNop(), Dependencies{Store: setupStore(t), Fetchers: []platform.BalanceFetcher{buff, c5}})

		update, err := svc.UpdateBalance(ctx, platform.C5)

		require.NoError(t, err)
		assert.True(t, update.UpdateStatus["c5_balance"])
		assert.False(t, update.UpdateStatus["buff_balance"])
		buff.AssertNotCalled(t, "FetchBalance", mock.Anything)
	})

	t.Run("EmptyMeansAll", func(t *testing.T) {
		youpin := newMockFetcher(platform.Youpin)
		youpin.On("FetchBalance", mock.Anything).Return(dec("1"), nil)
		svc := NewService(zap.NewNop(), Dependencies{Store: setupStore(t), Fetchers: []platform.BalanceFetcher{youpin}})

		update, err := svc.UpdateBalance(ctx, "")

		require.NoError(t, err)
		assert.True(t, update.UpdateStatus["youpin_balance"])
	})

	t.Run("UnknownPlatform", func(t *testing.T) {
		svc := NewService(zap.NewNop(), Dependencies{Store: setupStore(t)})

		_, err := svc.UpdateBalance(ctx, "steam")

		assert.ErrorIs(t, err, ErrUnknownPlatform)
	})

	t.Run("UnconfiguredPlatform", func(t *testing.T) {
		svc := NewService(zap.NewNop(), Dependencies{Store: setupStore(t)})

		update, err := svc.UpdateBalance(ctx, platform.Buff)

		require.NoError(t, err)
		assert.False(t, update.UpdateStatus["buff_balance"])
		assert.True(t, update.Total.IsZero())
	})
}

func TestUpdateInventoryValue(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		st := setupStore(t)
		valuer := newMockFetcher(platform.Buff)
		valuer.On("FetchInventoryValue", mock.Anything).Return(dec("1234.5"), nil)
		svc := NewService(zap.NewNop(), Dependencies{Store: st, Valuer: valuer})

		value, err := svc.UpdateInventoryValue(ctx)

		require.NoError(t, err)
		assert.True(t, dec("1234.5").Equal(value))
		stored, err := st.Setting(ctx, models.SettingInventoryValue)
		require.NoError(t, err)
		assert.True(t, dec("1234.5").Equal(stored))
	})

	t.Run("FallsBackToStoredValue", func(t *testing.T) {
		st := setupStore(t)
		require.NoError(t, st.SaveSetting(ctx, models.SettingInventoryValue, dec("900")))
		valuer := newMockFetcher(platform.Buff)
		valuer.On("FetchInventoryValue", mock.Anything).Return(decimal.Zero, errors.New("timeout"))
		svc := NewService(zap.NewNop(), Dependencies{Store: st, Valuer: valuer})

		value, err := svc.UpdateInventoryValue(ctx)

		require.NoError(t, err)
		assert.True(t, dec("900").Equal(value))
	})

	t.Run("FailsWithoutStoredValue", func(t *testing.T) {
		valuer := newMockFetcher(platform.Buff)
		valuer.On("FetchInventoryValue", mock.Anything).Return(decimal.Zero, errors.New("timeout"))
		svc := NewService(zap.NewNop(), Dependencies{Store: setupStore(t), Valuer: valuer})

		_, err := svc.UpdateInventoryValue(ctx)

		assert.Error(t, err)
	})

	t.Run("NoValuer", func(t *testing.T) {
		svc := NewService(zap.NewNop(), Dependencies{Store: setupStore(t)})

		_, err := svc.UpdateInventoryValue(ctx)

		assert.ErrorIs(t, err, platform.ErrUnsupported)
	})
}

func TestSteamInventory(t *testing.T) {
	lister := newMockFetcher(platform.C5)
	lister.On("FetchInventory", mock.Anything).Return([]platform.InventoryItem{
		{Name: "梦魇武器箱"},
		{Name: "AK-47 | 红线 (久经沙场)"},
		{Name: "梦魇武器箱"},
		{ShortName: "印花 | Natus Vincere"},
	}, nil)
	svc := NewService(zap.NewNop(), Dependencies{Store: setupStore(t), Lister: lister})

	entries, err := svc.SteamInventory(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []InventoryEntry{
		{ItemName: "梦魇武器箱", Quantity: 2},
		{ItemName: "AK-47 | 红线 (久经沙场)", Quantity: 1},
		{ItemName: "印花 | Natus Vincere", Quantity: 1},
	}, entries)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "c5"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "c5", "buy.csv"),
		[]byte("name,price,time\nAK-47 | 红线 (久经沙场),80,2024-01-01 10:00:00\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "c5", "sale.csv"),
		[]byte("name,price,time\nAK-47 | 红线 (久经沙场),95,2024-02-01 10:00:00\n"), 0o644))

	st := setupStore(t)
	svc := NewService(zap.NewNop(), Dependencies{Store: st, Loader: ledger.NewLoader(root, zap.NewNop())})

	result, err := svc.Import(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Loaded)
	assert.Equal(t, 1, result.Stored)
	trades, err := st.ListTrades(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "2024-01-01 10:00:00", trades[0].PurchaseDate)
	assert.Equal(t, "2024-02-01 10:00:00", trades[0].SaleDate)

	t.Run("NoLoader", func(t *testing.T) {
		_, err := NewService(zap.NewNop(), Dependencies{Store: st}).Import(ctx)
		assert.ErrorIs(t, err, ErrNoLoader)
	})
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{
		Ledger:    config.Ledger{DataDir: t.TempDir()},
		Valuation: testValuation,
	}

	svc := NewFromConfig(cfg, setupStore(t), zap.NewNop())

	assert.Len(t, svc.fetchers, len(platform.Names))
	for _, name := range platform.Names {
		assert.Contains(t, svc.fetchers, name)
	}
	assert.NotNil(t, svc.valuer)
	assert.NotNil(t, svc.lister)
	assert.True(t, svc.matcher.IsBulk("梦魇武器箱"))

	// No credentials: every refresh fails without touching stored balances.
	update, err := svc.UpdateBalance(context.Background(), AllPlatforms)
	require.NoError(t, err)
	for _, ok := range update.UpdateStatus {
		assert.False(t, ok)
	}
}
