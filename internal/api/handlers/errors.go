package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resonata/resonata-api/internal/logger"
	"github.com/resonata/resonata-api/internal/models"
)

// statusFor maps pipeline errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnknownComposer), errors.Is(err, models.ErrPieceNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error body; server errors are reported through the logger
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	fields := logger.WithContext(c)
	fields["status_code"] = status
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", err, fields)
	} else {
		fields["error"] = err.Error()
		logger.Debug("Request rejected", fields)
	}
	c.JSON(status, gin.H{
		"success":    false,
		"error":      err.Error(),
		"request_id": c.GetString("request_id"),
	})
}
