package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/datmedevil17/magic-market/internal/amm"
	"github.com/datmedevil17/magic-market/internal/engine"
	"github.com/datmedevil17/magic-market/internal/oracle"
	"github.com/datmedevil17/magic-market/internal/service"
	"github.com/datmedevil17/magic-market/internal/vault"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

func fail(c *gin.Context, err error) {
	Error(c, statusFor(err), err.Error(), nil)
}

// statusFor maps engine and service sentinels onto HTTP statuses. Anything
// unrecognized is a 500 so storage faults never masquerade as client errors.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidAmount),
		errors.Is(err, engine.ErrInvalidSide),
		errors.Is(err, engine.ErrInvalidExpiration),
		errors.Is(err, engine.ErrDescriptionTooLong),
		errors.Is(err, service.ErrInvalidUser),
		errors.Is(err, service.ErrInvalidOracleFeed),
		errors.Is(err, service.ErrInvalidMarketID):
		return http.StatusBadRequest

	case errors.Is(err, engine.ErrUnauthorized):
		return http.StatusForbidden

	case errors.Is(err, engine.ErrInvalidPosition),
		errors.Is(err, service.ErrMarketNotFound):
		return http.StatusNotFound

	case errors.Is(err, engine.ErrMarketExists),
		errors.Is(err, engine.ErrMarketNotActive),
		errors.Is(err, engine.ErrMarketNotExpired),
		errors.Is(err, engine.ErrMarketNotResolved),
		errors.Is(err, engine.ErrMarketNotCancelled),
		errors.Is(err, engine.ErrAlreadyClaimed),
		errors.Is(err, engine.ErrPoolNotInitialized),
		errors.Is(err, engine.ErrPoolAlreadyInitialized),
		errors.Is(err, service.ErrAlreadyDelegated),
		errors.Is(err, service.ErrNotDelegated):
		return http.StatusConflict

	// Retriable with adjusted parameters.
	case errors.Is(err, engine.ErrSlippageExceeded),
		errors.Is(err, engine.ErrOutputTooSmall),
		errors.Is(err, engine.ErrTradeExceedsMaxSize),
		errors.Is(err, engine.ErrInsufficientLiquidity),
		errors.Is(err, engine.ErrInsufficientShares),
		errors.Is(err, engine.ErrNoWinnings),
		errors.Is(err, vault.ErrInsufficientFunds),
		errors.Is(err, amm.ErrOverflow):
		return http.StatusUnprocessableEntity

	// Retriable later.
	case errors.Is(err, engine.ErrInvalidOraclePrice),
		errors.Is(err, engine.ErrConfidenceTooHigh),
		errors.Is(err, oracle.ErrUnavailable),
		errors.Is(err, oracle.ErrStalePrice),
		errors.Is(err, service.ErrFeatureDisabled),
		errors.Is(err, service.ErrBridgeNotConfigured):
		return http.StatusServiceUnavailable

	case errors.Is(err, service.ErrBridgeUnavailable):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
