package platform

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"skin-trade-dashboard-go/internal/config"
)

// Platform keys, as used by the balance refresh endpoint.
const (
	Buff   = "buff"
	Youpin = "youpin"
	IGXE   = "igxe"
	C5     = "c5"
)

// Names lists every balance source in refresh order.
var Names = []string{Buff, Youpin, IGXE, C5}

var (
	// ErrNotConfigured is returned when a platform has no credentials.
	ErrNotConfigured = errors.New("platform credentials not configured")
	// ErrUnsupported is returned when a platform cannot serve a request kind.
	ErrUnsupported = errors.New("operation not supported by platform")
)

// BalanceFetcher reads the wallet balance of one marketplace account.
type BalanceFetcher interface {
	Name() string
	FetchBalance(ctx context.Context) (decimal.Decimal, error)
}

// InventoryValuer reads the marketplace's valuation of the Steam inventory.
type InventoryValuer interface {
	FetchInventoryValue(ctx context.Context) (decimal.Decimal, error)
}

// InventoryLister lists the items of the Steam inventory.
type InventoryLister interface {
	FetchInventory(ctx context.Context) ([]InventoryItem, error)
}

// InventoryItem is one asset of the Steam inventory.
type InventoryItem struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

const maxRetries = 3

// restClient wraps resty with rate limiting and retry logic shared by all platforms.
type restClient struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
	backoff time.Duration
}

func newRestClient(baseURL string, cfg *config.Platforms, logger *zap.Logger) *restClient {
	client := resty.New().SetBaseURL(baseURL)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	// rate.Limit is requests per second.
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateLimitBurst
	if burst < 1 {
		burst = 1
	}

	return &restClient{
		client:  client,
		logger:  logger,
		limiter: rate.NewLimiter(limit, burst),
		backoff: time.Second,
	}
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *restClient) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	req.SetContext(ctx)

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if err == nil && resp != nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests || statusCode == 418 {
				shouldRetry = true
				if seconds, convErr := strconv.Atoi(resp.Header().Get("Retry-After")); convErr == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
			if !shouldRetry {
				return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
			}
		} else { // Network or other client-side errors
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			shouldRetry = true
		}

		if i == maxRetries-1 {
			break
		}

		// Exponential backoff: 1x, 2x, 4x
		if retryAfter == 0 {
			retryAfter = time.Duration(math.Pow(2, float64(i))) * c.backoff
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err == nil && resp != nil {
		err = fmt.Errorf("status %s", resp.Status())
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}
