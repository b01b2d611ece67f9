package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/datmedevil17/magic-market/internal/service"
)

type AccountHandler struct {
	Accounts *service.AccountService
	Logger   *zap.Logger
}

func (h *AccountHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/accounts")
	g.POST("/:account/deposit", h.deposit)
	g.POST("/:account/withdraw", h.withdraw)
	g.GET("/:account", h.balance)
}

type accountAmountRequest struct {
	Amount uint64 `json:"amount"`
}

type accountBalance struct {
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
}

// @Summary Deposit collateral into an account
// @Tags accounts
// @Param account path string true "account id"
// @Param body body accountAmountRequest true "amount"
// @Success 200 {object} apiResponse
// @Router /api/v1/accounts/{account}/deposit [post]
func (h *AccountHandler) deposit(c *gin.Context) {
	if h.Accounts == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req accountAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	account := strings.TrimSpace(c.Param("account"))
	balance, err := h.Accounts.Deposit(c.Request.Context(), account, req.Amount)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("deposit failed", zap.String("account", account), zap.Error(err))
		}
		fail(c, err)
		return
	}
	Ok(c, accountBalance{Account: account, Balance: balance}, nil)
}

// @Summary Withdraw collateral from an account
// @Tags accounts
// @Param account path string true "account id"
// @Param body body accountAmountRequest true "amount"
// @Success 200 {object} apiResponse
// @Router /api/v1/accounts/{account}/withdraw [post]
func (h *AccountHandler) withdraw(c *gin.Context) {
	if h.Accounts == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req accountAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	account := strings.TrimSpace(c.Param("account"))
	balance, err := h.Accounts.Withdraw(c.Request.Context(), account, req.Amount)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("withdraw failed", zap.String("account", account), zap.Error(err))
		}
		fail(c, err)
		return
	}
	Ok(c, accountBalance{Account: account, Balance: balance}, nil)
}

// @Summary Account balance
// @Tags accounts
// @Param account path string true "account id"
// @Success 200 {object} apiResponse
// @Router /api/v1/accounts/{account} [get]
func (h *AccountHandler) balance(c *gin.Context) {
	if h.Accounts == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	account := strings.TrimSpace(c.Param("account"))
	balance, err := h.Accounts.Balance(c.Request.Context(), account)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, accountBalance{Account: account, Balance: balance}, nil)
}
