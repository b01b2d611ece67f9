package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/datmedevil17/magic-market/internal/engine"
	"github.com/datmedevil17/magic-market/internal/models"
	"github.com/datmedevil17/magic-market/internal/repository"
	"github.com/datmedevil17/magic-market/internal/service"
)

type TradeHandler struct {
	Trading *service.TradingService
	Repo    repository.Repository
	Logger  *zap.Logger
}

func (h *TradeHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/markets")
	g.GET("/:id/price", h.price)
	g.POST("/:id/buy", h.buy)
	g.POST("/:id/sell", h.sell)
	g.GET("/:id/trades", h.listTrades)
}

type buyRequest struct {
	User         string `json:"user"`
	Side         string `json:"side"`
	AmountIn     uint64 `json:"amount_in"`
	MinSharesOut uint64 `json:"min_shares_out"`
}

type sellRequest struct {
	User         string `json:"user"`
	Side         string `json:"side"`
	SharesIn     uint64 `json:"shares_in"`
	MinAmountOut uint64 `json:"min_amount_out"`
}

type tradeReceipt struct {
	Trade    *models.Trade    `json:"trade"`
	Position *models.Position `json:"position"`
	Pool     *models.Pool     `json:"pool"`
	Prices   marketPrices     `json:"prices"`
}

type sidePrice struct {
	MarketID     string `json:"market_id"`
	Side         string `json:"side"`
	Price        uint64 `json:"price"`
	PriceDecimal string `json:"price_decimal"`
}

// @Summary Spot price for one side of a market
// @Tags trading
// @Param id path string true "market id"
// @Param side query string true "yes|no"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id}/price [get]
func (h *TradeHandler) price(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	side, err := engine.NormalizeSide(c.Query("side"))
	if err != nil {
		fail(c, err)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	market, err := h.Repo.GetMarketByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if market == nil {
		fail(c, service.ErrMarketNotFound)
		return
	}
	pool, err := h.Repo.GetPoolByMarketID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	price, err := engine.PriceFor(pool, side)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, sidePrice{
		MarketID:     id,
		Side:         side,
		Price:        price,
		PriceDecimal: service.PriceDecimal(price).String(),
	}, nil)
}

// @Summary Buy outcome shares with collateral
// @Tags trading
// @Param id path string true "market id"
// @Param body body buyRequest true "order"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id}/buy [post]
func (h *TradeHandler) buy(c *gin.Context) {
	if h.Trading == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req buyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	result, err := h.Trading.Buy(c.Request.Context(), id, strings.TrimSpace(req.User), req.Side, req.AmountIn, req.MinSharesOut)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("buy failed", zap.String("market", id), zap.Error(err))
		}
		fail(c, err)
		return
	}
	Ok(c, tradeReceipt{
		Trade:    result.Trade,
		Position: result.Position,
		Pool:     result.Pool,
		Prices:   pricesOf(result.Pool),
	}, nil)
}

// @Summary Sell outcome shares for collateral
// @Tags trading
// @Param id path string true "market id"
// @Param body body sellRequest true "order"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id}/sell [post]
func (h *TradeHandler) sell(c *gin.Context) {
	if h.Trading == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req sellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	result, err := h.Trading.Sell(c.Request.Context(), id, strings.TrimSpace(req.User), req.Side, req.SharesIn, req.MinAmountOut)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("sell failed", zap.String("market", id), zap.Error(err))
		}
		fail(c, err)
		return
	}
	Ok(c, tradeReceipt{
		Trade:    result.Trade,
		Position: result.Position,
		Pool:     result.Pool,
		Prices:   pricesOf(result.Pool),
	}, nil)
}

// @Summary Trade history for a market
// @Tags trading
// @Param id path string true "market id"
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Param user query string false "user"
// @Param kind query string false "buy|sell"
// @Param side query string false "yes|no"
// @Param ascending query bool false "ascending by time"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id}/trades [get]
func (h *TradeHandler) listTrades(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	params := repository.ListTradesParams{
		Limit:    limit,
		Offset:   offset,
		MarketID: &id,
		User:     strQueryPtr(c, "user"),
		Kind:     parseTradeKind(c.Query("kind")),
		Side:     parseTradeSide(c.Query("side")),
		Asc:      boolQueryPtr(c, "ascending"),
	}
	items, err := h.Repo.ListTrades(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountTrades(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

func parseTradeKind(value string) *string {
	switch v := strings.ToLower(strings.TrimSpace(value)); v {
	case models.TradeKindBuy, models.TradeKindSell:
		return &v
	default:
		return nil
	}
}

func parseTradeSide(value string) *string {
	if side, err := engine.NormalizeSide(value); err == nil {
		return &side
	}
	return nil
}
