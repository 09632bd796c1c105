package platform

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"skin-trade-dashboard-go/internal/config"
)

const csAppID = "730"

// C5Client talks to the C5 open API.
type C5Client struct {
	*restClient
	appKey  string
	steamID string
}

var (
	_ BalanceFetcher  = (*C5Client)(nil)
	_ InventoryLister = (*C5Client)(nil)
)

// NewC5Client creates a C5 open API client.
func NewC5Client(cfg *config.Platforms, logger *zap.Logger) *C5Client {
	return &C5Client{
		restClient: newRestClient(cfg.C5.BaseURL, cfg, logger.Named("c5")),
		appKey:     cfg.C5.AppKey,
		steamID:    cfg.C5.SteamID,
	}
}

// Name returns the platform key.
func (c *C5Client) Name() string {
	return C5
}

type c5Envelope struct {
	Success  bool   `json:"success"`
	ErrorMsg string `json:"errorMsg"`
}

type c5BalanceResponse struct {
	c5Envelope
	Data struct {
		Balance decimal.Decimal `json:"balance"`
	} `json:"data"`
}

type c5InventoryResponse struct {
	c5Envelope
	Data struct {
		List []InventoryItem `json:"list"`
	} `json:"data"`
}

// FetchBalance returns the account balance (accountType 0).
func (c *C5Client) FetchBalance(ctx context.Context) (decimal.Decimal, error) {
	if c.appKey == "" {
		return decimal.Zero, fmt.Errorf("c5: %w", ErrNotConfigured)
	}

	req := c.client.R().
		SetHeader("app-key", c.appKey).
		SetQueryParam("app-key", c.appKey).
		SetQueryParam("accountType", "0").
		SetResult(&c5BalanceResponse{})

	resp, err := c.doRequest(ctx, "GET", "/merchant/account/v1/balance", req)
	if err != nil {
		c.logger.Error("Failed to get balance", zap.Error(err))
		return decimal.Zero, fmt.Errorf("failed to get c5 balance: %w", err)
	}

	result := resp.Result().(*c5BalanceResponse)
	if !result.Success {
		return decimal.Zero, fmt.Errorf("failed to get c5 balance: %s", result.ErrorMsg)
	}
	return result.Data.Balance, nil
}

// FetchInventory lists the CS2 inventory of the configured Steam account.
func (c *C5Client) FetchInventory(ctx context.Context) ([]InventoryItem, error) {
	if c.appKey == "" || c.steamID == "" {
		return nil, fmt.Errorf("c5: %w", ErrNotConfigured)
	}

	req := c.client.R().
		SetHeader("app-key", c.appKey).
		SetPathParams(map[string]string{"steamId": c.steamID, "appId": csAppID}).
		SetQueryParams(map[string]string{
			"app-key":      c.appKey,
			"language":     "zh",
			"startAssetId": "0",
		}).
		SetResult(&c5InventoryResponse{})

	resp, err := c.doRequest(ctx, "GET", "/merchant/inventory/v2/{steamId}/{appId}", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get c5 inventory: %w", err)
	}

	result := resp.Result().(*c5InventoryResponse)
	if !result.Success {
		return nil, fmt.Errorf("failed to get c5 inventory: %s", result.ErrorMsg)
	}
	c.logger.Info("Fetched inventory", zap.Int("items", len(result.Data.List)))
	return result.Data.List, nil
}
