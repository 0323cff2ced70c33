package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	domainchat "skillswap/internal/domain/chat"
	"skillswap/internal/domain/shared/failure"
)

// statusFor maps the failure kinds onto HTTP codes.
func statusFor(err error) int {
	if errors.Is(err, domainchat.ErrContentFiltered) {
		return http.StatusBadRequest
	}
	switch failure.Kind(err) {
	case failure.ErrNotFound:
		return http.StatusNotFound
	case failure.ErrForbidden:
		return http.StatusForbidden
	case failure.ErrValidation:
		return http.StatusBadRequest
	case failure.ErrInvalidState, failure.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *slog.Logger, action string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.Error(action+" failed", "error", err, "request_id", c.GetString("request_id"))
		}
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
