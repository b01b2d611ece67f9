package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/datmedevil17/magic-market/internal/engine"
	"github.com/datmedevil17/magic-market/internal/models"
	"github.com/datmedevil17/magic-market/internal/repository"
	"github.com/datmedevil17/magic-market/internal/service"
)

type MarketHandler struct {
	Markets    *service.MarketService
	Resolution *service.ResolutionService
	Repo       repository.Repository
	Logger     *zap.Logger
}

func (h *MarketHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/markets")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("/:id/cancel", h.cancel)
	g.POST("/:id/resolve", h.resolve)
	g.GET("/:id/stats", h.stats)
}

type createMarketRequest struct {
	ID            string    `json:"id"`
	Authority     string    `json:"authority"`
	Description   string    `json:"description"`
	OracleFeed    string    `json:"oracle_feed"`
	StrikePrice   int64     `json:"strike_price"`
	MaxConfidence uint64    `json:"max_confidence"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// @Summary Create a market
// @Tags markets
// @Param body body createMarketRequest true "market definition"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets [post]
func (h *MarketHandler) create(c *gin.Context) {
	if h.Markets == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req createMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	market, err := h.Markets.Create(c.Request.Context(), service.CreateMarketParams{
		ID:            strings.TrimSpace(req.ID),
		Authority:     strings.TrimSpace(req.Authority),
		Description:   req.Description,
		OracleFeed:    strings.TrimSpace(req.OracleFeed),
		StrikePrice:   req.StrikePrice,
		MaxConfidence: req.MaxConfidence,
		ExpiresAt:     req.ExpiresAt,
	})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("create market failed", zap.Error(err))
		}
		fail(c, err)
		return
	}
	Ok(c, market, nil)
}

// @Summary List markets
// @Tags markets
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Param status query string false "active|resolved|cancelled"
// @Param authority query string false "authority"
// @Param oracle_feed query string false "oracle feed id"
// @Param delegated query bool false "delegated to bridge"
// @Param order_by query string false "order by field"
// @Param ascending query bool false "ascending"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets [get]
func (h *MarketHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	params := repository.ListMarketsParams{
		Limit:      limit,
		Offset:     offset,
		Status:     parseStatus(c.Query("status")),
		Authority:  strQueryPtr(c, "authority"),
		OracleFeed: strQueryPtr(c, "oracle_feed"),
		Delegated:  boolQueryPtr(c, "delegated"),
		OrderBy: parseOrder(c.Query("order_by"), map[string]string{
			"created_at": "created_at",
			"expires_at": "expires_at",
			"updated_at": "updated_at",
		}),
		Asc: boolQueryPtr(c, "ascending"),
	}
	items, err := h.Repo.ListMarkets(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountMarkets(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

type marketDetail struct {
	Market *models.Market `json:"market"`
	Pool   *models.Pool   `json:"pool,omitempty"`
	Prices marketPrices   `json:"prices"`
}

// @Summary Get a market with pool state and spot prices
// @Tags markets
// @Param id path string true "market id"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id} [get]
func (h *MarketHandler) get(c *gin.Context) {
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
	Ok(c, marketDetail{Market: market, Pool: pool, Prices: pricesOf(pool)}, nil)
}

type marketCallerRequest struct {
	Caller string `json:"caller"`
}

// @Summary Cancel a market
// @Tags markets
// @Param id path string true "market id"
// @Param body body marketCallerRequest true "caller identity (market authority)"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id}/cancel [post]
func (h *MarketHandler) cancel(c *gin.Context) {
	if h.Markets == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req marketCallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	market, err := h.Markets.Cancel(c.Request.Context(), strings.TrimSpace(c.Param("id")), strings.TrimSpace(req.Caller))
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("cancel market failed", zap.Error(err))
		}
		fail(c, err)
		return
	}
	Ok(c, market, nil)
}

// @Summary Resolve a market against its oracle feed
// @Tags markets
// @Param id path string true "market id"
// @Param body body marketCallerRequest true "caller identity (authority or allowlisted resolver)"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id}/resolve [post]
func (h *MarketHandler) resolve(c *gin.Context) {
	if h.Resolution == nil {
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
	market, err := h.Resolution.Resolve(c.Request.Context(), strings.TrimSpace(c.Param("id")), caller)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("resolve market failed", zap.Error(err))
		}
		fail(c, err)
		return
	}
	Ok(c, market, nil)
}

type marketStats struct {
	MarketID string                 `json:"market_id"`
	Prices   marketPrices           `json:"prices"`
	Snapshot *models.MarketSnapshot `json:"snapshot,omitempty"`
}

// @Summary Latest statistics snapshot with live implied prices
// @Tags markets
// @Param id path string true "market id"
// @Success 200 {object} apiResponse
// @Router /api/v1/markets/{id}/stats [get]
func (h *MarketHandler) stats(c *gin.Context) {
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
	snapshot, err := h.Repo.GetLatestMarketSnapshot(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, marketStats{MarketID: id, Prices: pricesOf(pool), Snapshot: snapshot}, nil)
}

// marketPrices renders spot prices both at the fixed-point scale and as
// decimal strings for display.
type marketPrices struct {
	Yes        uint64 `json:"yes"`
	No         uint64 `json:"no"`
	YesDecimal string `json:"yes_decimal"`
	NoDecimal  string `json:"no_decimal"`
}

func pricesOf(p *models.Pool) marketPrices {
	yes, no := engine.Prices(p)
	return marketPrices{
		Yes:        yes,
		No:         no,
		YesDecimal: service.PriceDecimal(yes).String(),
		NoDecimal:  service.PriceDecimal(no).String(),
	}
}

func parseStatus(value string) *string {
	switch v := strings.ToLower(strings.TrimSpace(value)); v {
	case models.MarketStatusActive, models.MarketStatusResolved, models.MarketStatusCancelled:
		return &v
	default:
		return nil
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func boolQueryPtr(c *gin.Context, key string) *bool {
	if val := c.Query(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return &b
		}
	}
	return nil
}

func strQueryPtr(c *gin.Context, key string) *string {
	if val := strings.TrimSpace(c.Query(key)); val != "" {
		return &val
	}
	return nil
}

func parseOrder(value string, allow map[string]string) string {
	key := strings.TrimSpace(strings.ToLower(value))
	if key == "" {
		return ""
	}
	if mapped, ok := allow[key]; ok {
		return mapped
	}
	return ""
}

func paginationMeta(limit, offset int, total int64) map[string]any {
	if limit <= 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	hasNext := int64(offset+limit) < total
	return map[string]any{
		"limit":    limit,
		"offset":   offset,
		"total":    total,
		"has_next": hasNext,
	}
}
