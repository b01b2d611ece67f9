package bridge

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

type ctxKey int

const clientCtxKey ctxKey = 1

func WithClient(ctx context.Context, c *Client) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, clientCtxKey, c)
}

func ClientFromContext(ctx context.Context) *Client {
	if ctx == nil {
		return nil
	}
	v := ctx.Value(clientCtxKey)
	c, _ := v.(*Client)
	return c
}

func InjectClientMiddleware(b *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if b != nil && c.Request != nil {
			c.Request = c.Request.WithContext(WithClient(c.Request.Context(), b))
		}
		c.Next()
	}
}

func ClientFromGin(c *gin.Context) *Client {
	if c == nil || c.Request == nil {
		return nil
	}
	return ClientFromContext(c.Request.Context())
}

// AuditBestEffort ships one audit entry from a handler without letting the
// bridge's availability affect the response.
func AuditBestEffort(c *gin.Context, action, level string, details map[string]any) {
	b := ClientFromGin(c)
	AuditBestEffortClient(b, action, level, details)
}

// AuditBestEffortCtx is the service-side twin of AuditBestEffort.
func AuditBestEffortCtx(ctx context.Context, action, level string, details map[string]any) {
	b := ClientFromContext(ctx)
	AuditBestEffortClient(b, action, level, details)
}

func AuditBestEffortClient(b *Client, action, level string, details map[string]any) {
	if b == nil || !b.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = b.Audit(ctx, AuditRequest{
		Agent:   "magic-market",
		Action:  action,
		Level:   level,
		Details: details,
	})
}
