package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rideengine/internal/logger"
	"rideengine/internal/repository"
	"rideengine/internal/service"
)

// Error codes returned in ErrorResponse.Error.
const (
	codeNotFound           = "not_found"
	codeValidation         = "validation_failed"
	codePreconditionFailed = "precondition_failed"
	codeUnavailable        = "unavailable"
	codeInternal           = "internal_error"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Internal errors are logged and their message is not exposed.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	code, status := mapError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error(c.Request.Context(), log, "http_request", "request failed", err,
			"method", c.Request.Method,
			"path", c.FullPath(),
		)
		msg = "internal server error"
	}
	_ = c.Error(err)
	c.JSON(status, ErrorResponse{Error: code, Message: msg})
}

// respondBadRequest reports a body or query that could not be decoded.
func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: codeValidation, Message: msg})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapError maps service/repository errors to an error code and HTTP status.
func mapError(err error) (string, int) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return codeNotFound, http.StatusNotFound
	case errors.Is(err, service.ErrValidation):
		return codeValidation, http.StatusBadRequest
	case errors.Is(err, service.ErrPreconditionFailed):
		return codePreconditionFailed, http.StatusConflict
	default:
		return codeInternal, http.StatusInternalServerError
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func stringOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
