// Package v1 exposes the task management API over HTTP.
package v1

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tms/internal/services"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	// Development exposes the cause of unexpected failures in
	// 500 responses.
	Development bool
	Environment string
	Version     string
}

type Handler struct {
	logger  zerolog.Logger
	auth    services.AuthService
	tasks   services.TaskService
	storage Pinger
	opts    Options
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	taskService services.TaskService,
	storage Pinger,
	opts Options,
) *Handler {
	return &Handler{
		logger:  logger,
		auth:    authService,
		tasks:   taskService,
		storage: storage,
		opts:    opts,
	}
}
