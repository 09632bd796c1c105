package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skin-trade-dashboard-go/internal/models"
)

// ErrSettingNotFound is returned when a setting has never been saved.
var ErrSettingNotFound = errors.New("setting not found")

// Store is the persistence layer for trades, balances and dashboard settings.
type Store struct {
	db *gorm.DB
}

// New creates a Store backed by db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ReplaceTrades swaps the whole trade table for records in one transaction.
func (s *Store) ReplaceTrades(ctx context.Context, records []models.TradeRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("1 = 1").Delete(&models.TradeRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear trades: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		rows := make([]models.TradeRecord, len(records))
		copy(rows, records)
		for i := range rows {
			rows[i].ID = 0
		}
		if err := tx.CreateInBatches(&rows, 200).Error; err != nil {
			return fmt.Errorf("failed to insert trades: %w", err)
		}
		return nil
	})
}

// ListTrades returns every stored trade in insertion order.
func (s *Store) ListTrades(ctx context.Context) ([]models.TradeRecord, error) {
	var trades []models.TradeRecord
	if err := s.db.WithContext(ctx).Order("id asc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}

// Balances returns the last stored balance per platform.
func (s *Store) Balances(ctx context.Context) (map[string]decimal.Decimal, error) {
	var rows []models.PlatformBalance
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load balances: %w", err)
	}
	balances := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		balances[row.Platform] = row.Balance
	}
	return balances, nil
}

// SaveBalance upserts the balance of platform.
func (s *Store) SaveBalance(ctx context.Context, platform string, balance decimal.Decimal) error {
	row := models.PlatformBalance{Platform: platform, Balance: balance, FetchedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance", "fetched_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save %s balance: %w", platform, err)
	}
	return nil
}

// Setting returns the value stored under key, or ErrSettingNotFound.
func (s *Store) Setting(ctx context.Context, key string) (decimal.Decimal, error) {
	var setting models.Setting
	err := s.db.WithContext(ctx).Where("name = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, ErrSettingNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load setting %s: %w", key, err)
	}
	return setting.Value, nil
}

// SaveSetting upserts the value stored under key.
func (s *Store) SaveSetting(ctx context.Context, key string, value decimal.Decimal) error {
	setting := models.Setting{Name: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}
