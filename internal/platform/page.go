package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"skin-trade-dashboard-go/internal/config"
)

// ErrElementNotFound is returned when a page lacks the element holding the amount.
var ErrElementNotFound = errors.New("amount element not found")

// Page locates an amount on a marketplace web page.
type Page struct {
	Path     string
	Selector string
}

// Known account pages.
var (
	BuffBalancePage   = Page{Path: "/user-center/asset/recharge/", Selector: "#cash_amount"}
	IGXEBalancePage   = Page{Path: "/cashout", Selector: ".wallet-tixian--money .c-4"}
	YoupinBalancePage = Page{Path: "/mine?menu=wallet", Selector: "div.total____0lXK span:nth-child(2)"}

	buffInventorySelector = ".l_Right.export-btns.brief-info strong.c_Yellow.f_Normal:nth-child(2)"
)

// PageClient reads amounts from cookie-authenticated marketplace pages.
type PageClient struct {
	*restClient
	name      string
	cookie    string
	balance   Page
	valuation *Page
}

var (
	_ BalanceFetcher  = (*PageClient)(nil)
	_ InventoryValuer = (*PageClient)(nil)
)

// NewPageClient creates a client for one site whose balance is shown on balance.
func NewPageClient(name string, site *config.Page, balance Page, cfg *config.Platforms, logger *zap.Logger) *PageClient {
	return &PageClient{
		restClient: newRestClient(site.BaseURL, cfg, logger.Named(name)),
		name:       name,
		cookie:     site.Cookie,
		balance:    balance,
	}
}

// NewBuffClient creates the BUFF client, which also values the Steam inventory.
func NewBuffClient(cfg *config.Platforms, logger *zap.Logger) *PageClient {
	c := NewPageClient(Buff, &cfg.Buff, BuffBalancePage, cfg, logger)
	if cfg.Buff.SteamID != "" {
		c.valuation = &Page{
			Path:     "/market/steam_inventory?game=csgo&state=all&steamid=" + url.QueryEscape(cfg.Buff.SteamID),
			Selector: buffInventorySelector,
		}
	}
	return c
}

// NewIGXEClient creates the IGXE client.
func NewIGXEClient(cfg *config.Platforms, logger *zap.Logger) *PageClient {
	return NewPageClient(IGXE, &cfg.IGXE, IGXEBalancePage, cfg, logger)
}

// NewYoupinClient creates the 悠悠有品 client.
func NewYoupinClient(cfg *config.Platforms, logger *zap.Logger) *PageClient {
	return NewPageClient(Youpin, &cfg.Youpin, YoupinBalancePage, cfg, logger)
}

// Name returns the platform key.
func (c *PageClient) Name() string {
	return c.name
}

// FetchBalance reads the wallet balance page.
func (c *PageClient) FetchBalance(ctx context.Context) (decimal.Decimal, error) {
	balance, err := c.scrape(ctx, c.balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get %s balance: %w", c.name, err)
	}
	return balance, nil
}

// FetchInventoryValue reads the inventory valuation page.
func (c *PageClient) FetchInventoryValue(ctx context.Context) (decimal.Decimal, error) {
	if c.valuation == nil {
		return decimal.Zero, fmt.Errorf("%s inventory value: %w", c.name, ErrUnsupported)
	}
	value, err := c.scrape(ctx, *c.valuation)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get %s inventory value: %w", c.name, err)
	}
	return value, nil
}

func (c *PageClient) scrape(ctx context.Context, page Page) (decimal.Decimal, error) {
	if c.cookie == "" {
		return decimal.Zero, ErrNotConfigured
	}

	req := c.client.R().
		SetHeader("Cookie", c.cookie).
		SetHeader("Accept", "text/html")

	resp, err := c.doRequest(ctx, "GET", page.Path, req)
	if err != nil {
		return decimal.Zero, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse page: %w", err)
	}

	text := strings.TrimSpace(doc.Find(page.Selector).First().Text())
	if text == "" {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrElementNotFound, page.Selector)
	}
	amount, err := ParseAmount(text)
	if err != nil {
		return decimal.Zero, err
	}
	c.logger.Debug("Scraped amount", zap.String("path", page.Path), zap.String("amount", amount.String()))
	return amount, nil
}

// ParseAmount parses a displayed currency amount such as "¥ 1,234.50".
func ParseAmount(text string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("¥", "", "￥", "", ",", "", " ", "").Replace(text)
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", text, err)
	}
	return amount, nil
}
