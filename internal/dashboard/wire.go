package dashboard

import (
	"go.uber.org/zap"

	"skin-trade-dashboard-go/internal/config"
	"skin-trade-dashboard-go/internal/ledger"
	"skin-trade-dashboard-go/internal/matcher"
	"skin-trade-dashboard-go/internal/platform"
	"skin-trade-dashboard-go/internal/store"
)

// NewFromConfig builds a Service with the platform clients described by cfg.
func NewFromConfig(cfg *config.Config, st *store.Store, logger *zap.Logger) *Service {
	buff := platform.NewBuffClient(&cfg.Platforms, logger)
	c5 := platform.NewC5Client(&cfg.Platforms, logger)

	return NewService(logger, Dependencies{
		Store:   st,
		Matcher: matcher.New(cfg.Matcher.BulkMarkers...),
		Loader:  ledger.NewLoader(cfg.Ledger.DataDir, logger),
		Fetchers: []platform.BalanceFetcher{
			buff,
			platform.NewYoupinClient(&cfg.Platforms, logger),
			platform.NewIGXEClient(&cfg.Platforms, logger),
			c5,
		},
		Valuer:    buff,
		Lister:    c5,
		Valuation: cfg.Valuation,
	})
}
