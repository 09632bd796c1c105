package dashboard

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"skin-trade-dashboard-go/internal/ledger"
)

// ErrNoLoader is returned by Import when no export directory is configured.
var ErrNoLoader = errors.New("no trade export loader configured")

// ImportResult summarises one import of the trade exports.
type ImportResult struct {
	Loaded int `json:"loaded"`
	Stored int `json:"stored"`
}

// Import reloads the CSV exports, consolidates cross-platform duplicates and replaces the stored trades.
func (s *Service) Import(ctx context.Context) (ImportResult, error) {
	if s.loader == nil {
		return ImportResult{}, ErrNoLoader
	}
	s.importMu.Lock()
	defer s.importMu.Unlock()

	records, err := s.loader.Load()
	if err != nil {
		return ImportResult{}, err
	}
	merged := ledger.Consolidate(records)
	if err := s.store.ReplaceTrades(ctx, merged); err != nil {
		return ImportResult{}, err
	}
	s.logger.Info("Imported trades", zap.Int("loaded", len(records)), zap.Int("stored", len(merged)))
	return ImportResult{Loaded: len(records), Stored: len(merged)}, nil
}
