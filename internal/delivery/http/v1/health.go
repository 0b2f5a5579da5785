package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthPingTimeout = 2 * time.Second

type healthResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	Storage     string `json:"storage"`
}

func (h *Handler) HandleHealthcheck(c *gin.Context) {
	resp := healthResponse{
		Status:      "available",
		Environment: h.opts.Environment,
		Version:     h.opts.Version,
		Storage:     "ok",
	}
	code := http.StatusOK

	if h.storage != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()

		err := h.storage.Ping(ctx)
		if err != nil {
			h.logger.Error().
				Err(err).
				Msg("storage ping failed")
			resp.Status = "degraded"
			resp.Storage = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}
	c.JSON(code, resp)
}
