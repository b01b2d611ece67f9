package bridge

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# Magic Market Engine

Binary-outcome prediction markets on a constant-product AMM. Collateral
lives in per-user accounts; every trade settles instantly against the
market's pool.

## Auth

When the server is started with an API token, write routes require
"Authorization: Bearer <token>". Reads and health stay open.

## Notable Routes

- GET  /healthz
- GET  /readyz
- GET  /swagger/index.html
- POST /api/v1/accounts/deposit
- POST /api/v1/accounts/withdraw
- GET  /api/v1/accounts/:user/balance
- POST /api/v1/markets
- GET  /api/v1/markets
- GET  /api/v1/markets/:id
- POST /api/v1/markets/:id/cancel
- POST /api/v1/markets/:id/resolve
- POST /api/v1/markets/:id/pool
- GET  /api/v1/markets/:id/pool
- GET  /api/v1/markets/:id/price
- POST /api/v1/markets/:id/buy
- POST /api/v1/markets/:id/sell
- POST /api/v1/markets/:id/liquidity
- DELETE /api/v1/markets/:id/liquidity
- GET  /api/v1/markets/:id/lp-positions
- POST /api/v1/markets/:id/claim
- POST /api/v1/markets/:id/refund
- GET  /api/v1/positions
- GET  /api/v1/trades
- GET  /api/v1/markets/:id/stats
- POST /api/v1/markets/:id/delegate
- POST /api/v1/markets/:id/commit
- POST /api/v1/markets/:id/release
- GET  /api/v1/settlements
- GET  /api/v1/oracle/feeds/:feed
- GET  /api/v1/settings
- PUT  /api/v1/settings/:key
`)
	})
}
