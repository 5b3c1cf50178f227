package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/claimdesk/tool"
)

func OnlyAllowLocal(c *gin.Context) {
	if c.ClientIP() == "127.0.0.1" || c.ClientIP() == "::1" {
		c.Next()
	} else {
		c.AbortWithStatusJSON(http.StatusForbidden, tool.FastReturnError("Forbidden"))
	}
}

// AllowAllCORS lets the intake page be served from another origin (a phone
// opening the QR link, a dev server).
func AllowAllCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Accept")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
