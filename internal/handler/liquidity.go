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

type LiquidityHandler struct {
	Liquidity *service.LiquidityService
	Repo      repository.Repository
	Logger    *zap.Logger
}

func (h *LiquidityHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/markets")
	g.POST("/:id/pool", h.initialize)
	g.GET("/:id/pool", h.getPool)
	g.POST("/:id/liquidity", h.add)
	g.POST("/:id/liquidity/remove", h.remove)
	g.GET("/:id/lp-positions/:user", h.getLPPosition)
}

type initializePoolRequest struct {
	User             string `json:"user"`
	InitialLiquidity uint64 `json:"initial_liquidity"`
}

type addLiquidityRequest struct {
	User        string `json:"user"`
	Amount      uint64 `json:"amount"`
	MinLPTokens uint64 `json:"min_lp_tokens"`
}

type removeLiquidityRequest struct {
	User         string `json:"user"`
	LPTokens     uint64 `json:"lp_tokens"`
	MinAmountOut uint64 `json:"min_amount_out"`
}

type liquidityReceipt struct {
	Pool       *models.Pool           `json:"pool"`
	LPPosition *models.LPPosition     `json:"lp_position"`
	Event      *models.LiquidityEvent `json:"event"`
	Prices     marketPrices           `json:"prices"`
}

// @Summary Initialize a market's liquidity pool
// @Tags liquidity
// @Param id path string true "market id"
// @Param body body initializePoolRequest true "initial deposit"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id}/pool [post]
func (h *LiquidityHandler) initialize(c *gin.Context) {
	if h.Liquidity == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req initializePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	result, err := h.Liquidity.Initialize(c.Request.Context(), id, strings.TrimSpace(req.User), req.InitialLiquidity)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("initialize pool failed", zap.String("market", id), zap.Error(err))
		}
		fail(c, err)
		return
	}
	Ok(c, liquidityReceipt{
		Pool:       result.Pool,
		LPPosition: result.LPPosition,
		Event:      result.Event,
		Prices:     pricesOf(result.Pool),
	}, nil)
}

// @Summary Pool state
// @Tags liquidity
// @Param id path string true "market id"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id}/pool [get]
func (h *LiquidityHandler) getPool(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
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
	if pool == nil {
		fail(c, engine.ErrPoolNotInitialized)
		return
	}
	Ok(c, liquidityReceipt{Pool: pool, Prices: pricesOf(pool)}, nil)
}

// @Summary Add liquidity to a pool
// @Tags liquidity
// @Param id path string true "market id"
// @Param body body addLiquidityRequest true "deposit"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id}/liquidity [post]
func (h *LiquidityHandler) add(c *gin.Context) {
	if h.Liquidity == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req addLiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	result, err := h.Liquidity.Add(c.Request.Context(), id, strings.TrimSpace(req.User), req.Amount, req.MinLPTokens)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("add liquidity failed", zap.String("market", id), zap.Error(err))
		}
		fail(c, err)
		return
	}
	Ok(c, liquidityReceipt{
		Pool:       result.Pool,
		LPPosition: result.LPPosition,
		Event:      result.Event,
		Prices:     pricesOf(result.Pool),
	}, nil)
}

// @Summary Remove liquidity from a pool
// @Tags liquidity
// @Param id path string true "market id"
// @Param body body removeLiquidityRequest true "withdrawal"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id}/liquidity/remove [post]
func (h *LiquidityHandler) remove(c *gin.Context) {
	if h.Liquidity == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req removeLiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	result, err := h.Liquidity.Remove(c.Request.Context(), id, strings.TrimSpace(req.User), req.LPTokens, req.MinAmountOut)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("remove liquidity failed", zap.String("market", id), zap.Error(err))
		}
		fail(c, err)
		return
	}
	Ok(c, liquidityReceipt{
		Pool:       result.Pool,
		LPPosition: result.LPPosition,
		Event:      result.Event,
		Prices:     pricesOf(result.Pool),
	}, nil)
}

// @Summary LP token balance for a user
// @Tags liquidity
// @Param id path string true "market id"
// @Param user path string true "user"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id}/lp-positions/{user} [get]
func (h *LiquidityHandler) getLPPosition(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	user := strings.TrimSpace(c.Param("user"))
	item, err := h.Repo.GetLPPosition(c.Request.Context(), id, user)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		fail(c, engine.ErrInvalidPosition)
		return
	}
	Ok(c, item, nil)
}
