package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-obligations/internal/services"
)

// ActorHeader names the caller recorded in audit entries. Authentication is
// handled upstream; the engine trusts this header.
const ActorHeader = "X-Actor"

// AuditContext attaches the caller identity to the request context
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader(ActorHeader)
		if actor != "" {
			c.Set("actor", actor)
		}
		ctx := services.WithAuditMeta(c.Request.Context(), services.AuditMeta{
			Actor:     actor,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
