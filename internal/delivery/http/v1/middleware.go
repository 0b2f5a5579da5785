package v1

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDCtxKey = "user_id"

// HandleAuthMiddleware admits requests carrying a valid bearer token
// and stores the authenticated user's id in the context.
func (h *Handler) HandleAuthMiddleware(c *gin.Context) {
	c.Header("Vary", "Authorization")

	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Debug().Msg("authorization header required")
		abort(c, newUnauthorizedError(msgNotAuthorized))
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != bearerPrefix {
		h.logger.Debug().Msg("invalid authorization header")
		abort(c, newUnauthorizedError(msgNotAuthorized))
		return
	}

	user, err := h.auth.Authenticate(c, parts[1])
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.Set(userIDCtxKey, user.ID)
	c.Next()
}

func userIDFromContext(c *gin.Context) string {
	return c.GetString(userIDCtxKey)
}
