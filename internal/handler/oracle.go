package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/datmedevil17/magic-market/internal/models"
	"github.com/datmedevil17/magic-market/internal/repository"
)

type OracleHandler struct {
	Repo repository.Repository
}

func (h *OracleHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/oracle")
	g.GET("/feeds/:feed", h.latest)
}

type oracleFeedResponse struct {
	Latest       *models.OracleLatest `json:"latest"`
	PriceDecimal string               `json:"price_decimal"`
	AgeSeconds   int64                `json:"age_seconds"`
}

// @Summary Latest cached oracle price for a feed
// @Tags oracle
// @Param feed path string true "oracle feed id"
// @Success 200 {object} apiResponse
// @Router /api/v1/oracle/feeds/{feed} [get]
func (h *OracleHandler) latest(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	feed := strings.TrimSpace(c.Param("feed"))
	if feed == "" {
		Error(c, http.StatusBadRequest, "invalid feed", nil)
		return
	}
	item, err := h.Repo.GetOracleLatest(c.Request.Context(), feed)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "no price for feed", nil)
		return
	}
	Ok(c, oracleFeedResponse{
		Latest:       item,
		PriceDecimal: decimal.New(item.Price, -8).String(),
		AgeSeconds:   int64(time.Since(item.PublishedAt) / time.Second),
	}, nil)
}
