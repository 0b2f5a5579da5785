package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// corsMiddleware reflects trusted origins and answers preflight
// requests. A "*" entry trusts every origin.
func corsMiddleware(trustedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Add("Vary", "Origin")
		c.Writer.Header().Add("Vary", "Access-Control-Request-Method")

		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		for _, o := range trustedOrigins {
			if origin != o && o != "*" {
				continue
			}
			c.Header("Access-Control-Allow-Origin", origin)
			if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
				c.Header("Access-Control-Allow-Methods", "OPTIONS, GET, POST, PUT, DELETE")
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
			break
		}
		c.Next()
	}
}
