package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"skin-trade-dashboard-go/internal/dashboard"
	"skin-trade-dashboard-go/internal/matcher"
	"skin-trade-dashboard-go/internal/models"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log *zap.Logger
	svc *dashboard.Service
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, svc *dashboard.Service) *APIHandler {
	return &APIHandler{log: log, svc: svc}
}

// Register mounts the dashboard endpoints on r.
func (h *APIHandler) Register(r gin.IRouter) {
	g := r.Group("/api")
	g.GET("/data", h.DataHandler)
	g.GET("/matched_trades", h.MatchedTradesHandler)
	g.POST("/match_trades", h.MatchTradesHandler)
	g.POST("/update_balance", h.UpdateBalanceHandler)
	g.POST("/update_total_investment", h.UpdateTotalInvestmentHandler)
	g.POST("/update_inventory_value", h.UpdateInventoryValueHandler)
	g.GET("/steam_inventory", h.SteamInventoryHandler)
	g.POST("/import", h.ImportHandler)
}

func isBadRequest(err error) bool {
	return errors.Is(err, dashboard.ErrUnknownPlatform) ||
		errors.Is(err, dashboard.ErrInvalidInvestment) ||
		errors.Is(err, dashboard.ErrUnknownColumn) ||
		errors.Is(err, matcher.ErrInvalidRecord)
}

func (h *APIHandler) fail(c *gin.Context, msg string, err error) {
	status := http.StatusInternalServerError
	if isBadRequest(err) {
		status = http.StatusBadRequest
	}
	h.log.Error(msg, zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}

// DataHandler returns the dashboard figures and trade tables.
func (h *APIHandler) DataHandler(c *gin.Context) {
	snap, err := h.svc.Snapshot(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to build dashboard data", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// MatchedTradesHandler returns the matched trades, optionally sorted by ?sort=<column>&order=asc|desc.
func (h *APIHandler) MatchedTradesHandler(c *gin.Context) {
	desc := strings.EqualFold(c.Query("order"), "desc")
	trades, err := h.svc.MatchedTrades(c.Request.Context(), c.Query("sort"), desc)
	if err != nil {
		h.fail(c, "Failed to match trades", err)
		return
	}
	c.JSON(http.StatusOK, trades)
}

// matchRecord is a posted TradeRecord whose quantity must be present.
// An explicit zero is allowed and yields unknown prices.
type matchRecord struct {
	models.TradeRecord
	Quantity *int `json:"quantity"`
}

func toTradeRecords(posted []matchRecord) ([]models.TradeRecord, error) {
	records := make([]models.TradeRecord, 0, len(posted))
	for i, p := range posted {
		if p.Quantity == nil {
			return nil, fmt.Errorf("%w: record %d (%s) has no quantity", matcher.ErrInvalidRecord, i, p.ItemName)
		}
		record := p.TradeRecord
		record.Quantity = *p.Quantity
		records = append(records, record)
	}
	return records, nil
}

// MatchTradesHandler matches a posted TradeRecord array without touching storage.
func (h *APIHandler) MatchTradesHandler(c *gin.Context) {
	var posted []matchRecord
	if err := c.ShouldBindJSON(&posted); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	records, err := toTradeRecords(posted)
	if err != nil {
		h.fail(c, "Rejected posted trades", err)
		return
	}
	result, err := h.svc.Match(records)
	if err != nil {
		h.fail(c, "Failed to match posted trades", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateBalanceHandler refreshes ?platform=buff|youpin|igxe|c5|all.
func (h *APIHandler) UpdateBalanceHandler(c *gin.Context) {
	update, err := h.svc.UpdateBalance(c.Request.Context(), c.DefaultQuery("platform", dashboard.AllPlatforms))
	if err != nil {
		h.fail(c, "Failed to update balance", err)
		return
	}
	c.JSON(http.StatusOK, update)
}

type totalInvestmentRequest struct {
	TotalInvestment *decimal.Decimal `json:"total_investment"`
}

// UpdateTotalInvestmentHandler stores the custom total investment.
func (h *APIHandler) UpdateTotalInvestmentHandler(c *gin.Context) {
	var req totalInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TotalInvestment == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}
	if err := h.svc.SetTotalInvestment(c.Request.Context(), *req.TotalInvestment); err != nil {
		status := http.StatusInternalServerError
		if isBadRequest(err) {
			status = http.StatusBadRequest
		}
		h.log.Error("Failed to update total investment", zap.Error(err))
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateInventoryValueHandler refreshes the inventory valuation.
func (h *APIHandler) UpdateInventoryValueHandler(c *gin.Context) {
	value, err := h.svc.UpdateInventoryValue(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to update inventory value", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "inventory_value": value})
}

// SteamInventoryHandler lists the Steam inventory aggregated by item name.
func (h *APIHandler) SteamInventoryHandler(c *gin.Context) {
	entries, err := h.svc.SteamInventory(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to get steam inventory", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ImportHandler reloads the CSV trade exports.
func (h *APIHandler) ImportHandler(c *gin.Context) {
	result, err := h.svc.Import(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to import trades", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
