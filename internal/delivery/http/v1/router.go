package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type RateLimitOptions struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type RouterOptions struct {
	TrustedOrigins []string
	RateLimit      RateLimitOptions
	// Registry receives the HTTP metrics and backs GET /metrics.
	// A fresh registry is used when nil.
	Registry *prometheus.Registry
}

func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	router := gin.New()
	router.Use(requestLogger(h.logger))
	router.Use(gin.CustomRecovery(h.handlePanic))
	router.Use(newMetrics(registry).handle)
	router.Use(corsMiddleware(opts.TrustedOrigins))
	if opts.RateLimit.Enabled {
		router.Use(newIPRateLimiter(opts.RateLimit.RPS, opts.RateLimit.Burst).handle)
	}

	router.GET("/metrics", gin.WrapH(metricsHandler(registry)))
	h.RegisterRoutes(router.Group("/api"))
	return router
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/healthcheck", h.HandleHealthcheck)

	usersRouter := router.Group("/users")
	usersRouter.POST("/register", h.HandleRegister)
	usersRouter.POST("/login", h.HandleLogin)
	usersRouter.GET("/me", h.HandleAuthMiddleware, h.HandleMe)

	tasksRouter := router.Group("/tasks", h.HandleAuthMiddleware)
	tasksRouter.GET("", h.HandleGetTasks)
	tasksRouter.POST("", h.HandleCreateTask)
	tasksRouter.GET("/archived", h.HandleGetArchivedTasks)
	tasksRouter.GET("/:id", h.HandleGetTask)
	tasksRouter.PUT("/:id", h.HandleUpdateTask)
	tasksRouter.DELETE("/:id", h.HandleDeleteTask)
	tasksRouter.PUT("/:id/archive", h.HandleArchiveTask)
}

func (h *Handler) handlePanic(c *gin.Context, recovered any) {
	h.logger.Error().
		Interface("panic", recovered).
		Str("path", c.Request.URL.Path).
		Msg("recovered from panic")

	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", recovered)
	}
	abort(c, h.newInternalError(err))
}
