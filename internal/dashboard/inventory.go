package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"skin-trade-dashboard-go/internal/models"
	"skin-trade-dashboard-go/internal/platform"
	"skin-trade-dashboard-go/internal/store"
)

// InventoryEntry is one row of the Steam inventory listing.
type InventoryEntry struct {
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

// UpdateInventoryValue fetches the inventory valuation and stores it.
// When the upstream fails the last stored value is returned instead.
func (s *Service) UpdateInventoryValue(ctx context.Context) (decimal.Decimal, error) {
	if s.valuer == nil {
		return decimal.Zero, fmt.Errorf("inventory value: %w", platform.ErrUnsupported)
	}

	value, fetchErr := s.valuer.FetchInventoryValue(ctx)
	if fetchErr == nil {
		if err := s.store.SaveSetting(ctx, models.SettingInventoryValue, value); err != nil {
			return decimal.Zero, err
		}
		s.logger.Info("Inventory value updated", zap.String("value", value.String()))
		return value, nil
	}

	stored, err := s.store.Setting(ctx, models.SettingInventoryValue)
	if errors.Is(err, store.ErrSettingNotFound) {
		return decimal.Zero, fmt.Errorf("failed to update inventory value: %w", fetchErr)
	}
	if err != nil {
		return decimal.Zero, err
	}
	s.logger.Warn("Failed to fetch inventory value, using stored value",
		zap.String("value", stored.String()), zap.Error(fetchErr))
	return stored, nil
}

// SteamInventory lists the Steam inventory, one entry per item name in first-seen order.
func (s *Service) SteamInventory(ctx context.Context) ([]InventoryEntry, error) {
	if s.lister == nil {
		return nil, fmt.Errorf("steam inventory: %w", platform.ErrUnsupported)
	}
	items, err := s.lister.FetchInventory(ctx)
	if err != nil {
		return nil, err
	}

	entries := []InventoryEntry{}
	index := make(map[string]int)
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = item.ShortName
		}
		if i, ok := index[name]; ok {
			entries[i].Quantity++
			continue
		}
		index[name] = len(entries)
		entries = append(entries, InventoryEntry{ItemName: name, Quantity: 1})
	}
	return entries, nil
}
