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

type SettlementHandler struct {
	Settlement *service.SettlementService
	Repo       repository.Repository
	Logger     *zap.Logger
}

func (h *SettlementHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1")
	g.POST("/markets/:id/delegate", h.delegate)
	g.POST("/markets/:id/commit", h.commit)
	g.POST("/markets/:id/release", h.release)
	g.GET("/settlements", h.listRecords)
}

// @Summary Delegate a market to the settlement bridge
// @Tags settlement
// @Param id path string true "market id"
// @Param body body marketCallerRequest true "caller identity (market authority)"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id}/delegate [post]
func (h *SettlementHandler) delegate(c *gin.Context) {
	if h.Settlement == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req marketCallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	market, err := h.Settlement.Delegate(c.Request.Context(), id, strings.TrimSpace(req.Caller))
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("delegate failed", zap.String("market", id), zap.Error(err))
		}
		fail(c, err)
		return
	}
	Ok(c, market, nil)
}

// @Summary Commit market state to the settlement bridge
// @Tags settlement
// @Param id path string true "market id"
// @Param body body marketCallerRequest true "caller identity (market authority)"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id}/commit [post]
func (h *SettlementHandler) commit(c *gin.Context) {
	h.commitWith(c, false)
}

// @Summary Commit and release the bridge delegation
// @Tags settlement
// @Param id path string true "market id"
// @Param body body marketCallerRequest true "caller identity (market authority)"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id}/release [post]
func (h *SettlementHandler) release(c *gin.Context) {
	h.commitWith(c, true)
}

func (h *SettlementHandler) commitWith(c *gin.Context, release bool) {
	if h.Settlement == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req marketCallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	caller := strings.TrimSpace(req.Caller)
	if caller == "" {
		fail(c, engine.ErrUnauthorized)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	record, err := h.Settlement.Commit(c.Request.Context(), id, caller, release)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("commit failed", zap.String("market", id), zap.Bool("release", release), zap.Error(err))
		}
		fail(c, err)
		return
	}
	Ok(c, record, nil)
}

// @Summary Bridge interaction log
// @Tags settlement
// @Param market_id query string false "market id"
// @Param action query string false "delegate|commit|release"
// @Param status query string false "ok|failed"
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Param ascending query bool false "ascending by time"
// @Success 200 {object} apiResponse
// @Router /api/v1/settlements [get]
func (h *SettlementHandler) listRecords(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	params := repository.ListSettlementRecordsParams{
		Limit:    limit,
		Offset:   offset,
		MarketID: strQueryPtr(c, "market_id"),
		Action:   strQueryPtr(c, "action"),
		Status:   strQueryPtr(c, "status"),
		Asc:      boolQueryPtr(c, "ascending"),
	}
	items, err := h.Repo.ListSettlementRecords(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountSettlementRecords(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}
