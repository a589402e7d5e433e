package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shortify-be/internal/apperr"
	"shortify-be/internal/middleware"
	"shortify-be/internal/models"
)

// respondError writes the standard error body. Internal failures are logged
// and reported with a generic message.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status, message := apperr.Public(err)

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("request_id", middleware.GetRequestID(c.Request.Context())),
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
	} else {
		logger.DebugContext(c.Request.Context(), "request rejected",
			slog.Int("status", status),
			slog.Any("error", err),
		)
	}

	c.JSON(status, models.StatusResponse{Status: false, Message: message})
}

// respondBindError reports the first validation failure as a 400.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.StatusResponse{
		Status:  false,
		Message: models.ValidationMessage(err),
	})
}
