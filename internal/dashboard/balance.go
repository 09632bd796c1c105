package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"skin-trade-dashboard-go/internal/platform"
)

// BalanceUpdate is the result of a balance refresh.
type BalanceUpdate struct {
	Balances
	UpdateStatus map[string]bool `json:"update_status"`
}

type fetchResult struct {
	name    string
	balance decimal.Decimal
	err     error
}

func statusKey(name string) string {
	return name + "_balance"
}

// UpdateBalance refreshes the balance of one platform, or of every platform for AllPlatforms.
// A failed fetch keeps the previously stored balance and reports false in UpdateStatus.
func (s *Service) UpdateBalance(ctx context.Context, name string) (*BalanceUpdate, error) {
	if name == "" {
		name = AllPlatforms
	}
	targets, err := s.targets(name)
	if err != nil {
		return nil, err
	}

	s.balanceMu.Lock()
	defer s.balanceMu.Unlock()

	status := make(map[string]bool, len(platform.Names))
	for _, n := range platform.Names {
		status[statusKey(n)] = false
	}

	// Fetch concurrently, persist sequentially.
	var wg sync.WaitGroup
	results := make([]fetchResult, len(targets))
	for i, f := range targets {
		wg.Add(1)
		go func(i int, f platform.BalanceFetcher) {
			defer wg.Done()
			balance, err := f.FetchBalance(ctx)
			results[i] = fetchResult{name: f.Name(), balance: balance, err: err}
		}(i, f)
	}
	wg.Wait()

	for _, r := range results {
		l := s.logger.With(zap.String("platform", r.name))
		if r.err != nil {
			if errors.Is(r.err, platform.ErrNotConfigured) {
				l.Warn("Platform not configured, keeping previous balance")
			} else {
				l.Error("Failed to fetch balance, keeping previous balance", zap.Error(r.err))
			}
			continue
		}
		if err := s.store.SaveBalance(ctx, r.name, r.balance); err != nil {
			l.Error("Failed to save balance", zap.Error(err))
			continue
		}
		status[statusKey(r.name)] = true
		l.Info("Balance updated", zap.String("balance", r.balance.String()))
	}

	stored, err := s.store.Balances(ctx)
	if err != nil {
		return nil, err
	}
	return &BalanceUpdate{Balances: newBalances(stored), UpdateStatus: status}, nil
}

func (s *Service) targets(name string) ([]platform.BalanceFetcher, error) {
	if name == AllPlatforms {
		var targets []platform.BalanceFetcher
		for _, n := range platform.Names {
			if f, ok := s.fetchers[n]; ok {
				targets = append(targets, f)
			}
		}
		return targets, nil
	}
	for _, n := range platform.Names {
		if n != name {
			continue
		}
		// An unconfigured platform is reported as a failed refresh.
		if f, ok := s.fetchers[n]; ok {
			return []platform.BalanceFetcher{f}, nil
		}
		s.logger.Warn("Platform not configured", zap.String("platform", n))
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
}
