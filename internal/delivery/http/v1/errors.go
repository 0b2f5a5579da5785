package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-tms/internal/services"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgNotAuthorized      = "Not authorized"
	msgInvalidCredentials = "Invalid credentials"
	msgUserAlreadyExists  = "User already exists"
	msgUserNotFound       = "User not found"
	msgTaskNotFound       = "Task not found"
	msgTaskDeleted        = "Task deleted"
	msgRateLimitExceeded  = "rate limit exceeded"
	msgInternal           = "Something went wrong!"
)

type apiError struct {
	Code    int
	Message string
	Fields  map[string]string
	Detail  string
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	body := gin.H{"message": err.Message}
	if len(err.Fields) > 0 {
		body["errors"] = err.Fields
	}
	if err.Detail != "" {
		body["error"] = err.Detail
	}
	c.AbortWithStatusJSON(err.Code, body)
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func (h *Handler) newInternalError(err error) apiError {
	e := newAPIError(http.StatusInternalServerError, msgInternal)
	if h.opts.Development && err != nil {
		e.Detail = err.Error()
	}
	return e
}

// writeServiceError translates a service error into its HTTP response.
func (h *Handler) writeServiceError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		e := newBadRequestError(verr.Summary())
		e.Fields = verr.Fields
		abort(c, e)
	case errors.Is(err, services.ErrUserAlreadyExists):
		abort(c, newBadRequestError(msgUserAlreadyExists))
	case errors.Is(err, services.ErrInvalidCredentials):
		abort(c, newUnauthorizedError(msgInvalidCredentials))
	case errors.Is(err, services.ErrInvalidToken):
		abort(c, newUnauthorizedError(msgNotAuthorized))
	case errors.Is(err, services.ErrUserNotFound):
		abort(c, newNotFoundError(msgUserNotFound))
	case errors.Is(err, services.ErrTaskNotFound):
		abort(c, newNotFoundError(msgTaskNotFound))
	default:
		h.logger.Error().
			Err(err).
			Str("path", c.FullPath()).
			Msg("unexpected error")
		abort(c, h.newInternalError(err))
	}
}
