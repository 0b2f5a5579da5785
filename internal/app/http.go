package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/adanyl0v/go-tms/internal/config"
	"github.com/adanyl0v/go-tms/internal/delivery/http/v1"
	"github.com/adanyl0v/go-tms/internal/services"
)

const version = "1.0.0"

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	server := &http.Server{
		Addr:         net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler:      newRouter(cfg),
		ReadTimeout:  httpCfg.ReadTimeout,
		WriteTimeout: httpCfg.WriteTimeout,
		IdleTimeout:  httpCfg.IdleTimeout,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func newRouter(cfg *config.Config) *gin.Engine {
	tokens := services.NewTokenIssuer(cfg.JWT.Issuer, []byte(cfg.JWT.SigningKey), cfg.JWT.TokenTTL)
	authService := services.NewAuthService(globalLogger, globalStore, tokens, newWelcomeSender())
	taskService := services.NewTaskService(globalLogger, globalStore)

	handler := v1.New(globalLogger, authService, taskService, globalStore, v1.Options{
		Development: cfg.Development(),
		Environment: cfg.Env,
		Version:     version,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return v1.NewRouter(handler, v1.RouterOptions{
		TrustedOrigins: cfg.HTTP.TrustedOrigins,
		RateLimit: v1.RateLimitOptions{
			Enabled: cfg.HTTP.RateLimit.Enabled,
			RPS:     cfg.HTTP.RateLimit.RPS,
			Burst:   cfg.HTTP.RateLimit.Burst,
		},
		Registry: registry,
	})
}
