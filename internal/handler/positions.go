package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/datmedevil17/magic-market/internal/engine"
	"github.com/datmedevil17/magic-market/internal/repository"
	"github.com/datmedevil17/magic-market/internal/service"
)

type PositionHandler struct {
	Claims *service.ClaimService
	Repo   repository.Repository
	Logger *zap.Logger
}

func (h *PositionHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1")
	g.GET("/markets/:id/positions/:user", h.getPosition)
	g.POST("/markets/:id/claim", h.claim)
	g.POST("/markets/:id/refund", h.refund)
	g.GET("/positions", h.listPositions)
}

type settleRequest struct {
	User string `json:"user"`
}

// @Summary Position for a user in a market
// @Tags positions
// @Param id path string true "market id"
// @Param user path string true "user"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id}/positions/{user} [get]
func (h *PositionHandler) getPosition(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	user := strings.TrimSpace(c.Param("user"))
	item, err := h.Repo.GetPosition(c.Request.Context(), id, user)
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

// @Summary List positions across markets
// @Tags positions
// @Param user query string false "user"
// @Param market_id query string false "market id"
// @Param claimed query bool false "claimed"
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Param ascending query bool false "ascending by update time"
// @Success 200 {object} apiResponse
// @Router /api/v1/positions [get]
func (h *PositionHandler) listPositions(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	params := repository.ListPositionsParams{
		Limit:    limit,
		Offset:   offset,
		MarketID: strQueryPtr(c, "market_id"),
		User:     strQueryPtr(c, "user"),
		Claimed:  boolQueryPtr(c, "claimed"),
		Asc:      boolQueryPtr(c, "ascending"),
	}
	items, err := h.Repo.ListPositions(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountPositions(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Claim winnings after resolution
// @Tags positions
// @Param id path string true "market id"
// @Param body body settleRequest true "claimant"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id}/claim [post]
func (h *PositionHandler) claim(c *gin.Context) {
	if h.Claims == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req settleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	payout, err := h.Claims.Claim(c.Request.Context(), id, strings.TrimSpace(req.User))
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("claim failed", zap.String("market", id), zap.Error(err))
		}
		fail(c, err)
		return
	}
	Ok(c, payout, nil)
}

// @Summary Refund cost basis after cancellation
// @Tags positions
// @Param id path string true "market id"
// @Param body body settleRequest true "claimant"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id}/refund [post]
func (h *PositionHandler) refund(c *gin.Context) {
	if h.Claims == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req settleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	payout, err := h.Claims.Refund(c.Request.Context(), id, strings.TrimSpace(req.User))
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("refund failed", zap.String("market", id), zap.Error(err))
		}
		fail(c, err)
		return
	}
	Ok(c, payout, nil)
}
