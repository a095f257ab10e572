package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/classpulse/classpulse-backend/internal/middleware"
	"github.com/classpulse/classpulse-backend/internal/notification"
	"github.com/classpulse/classpulse-backend/internal/response"
	"github.com/gin-gonic/gin"
)

// NotificationHandler exposes the persisted notification log.
type NotificationHandler struct {
	engine *notification.Engine
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(engine *notification.Engine) *NotificationHandler {
	return &NotificationHandler{engine: engine}
}

// List returns the user's active notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)

	notifications, err := h.engine.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.FailError(c, err)
		return
	}
	response.Success(c, http.StatusOK, notifications)
}

// Counts returns unread and urgent counts, excluding dismissed entries.
func (h *NotificationHandler) Counts(c *gin.Context) {
	claims := middleware.GetClaims(c)

	unread, urgent, err := h.engine.Counts(c.Request.Context(), claims.UserID)
	if err != nil {
		response.FailError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread": unread, "urgent": urgent})
}

// MarkRead acknowledges one notification.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	h.mutate(c, h.engine.MarkRead)
}

// Dismiss clears one notification from the active set.
func (h *NotificationHandler) Dismiss(c *gin.Context) {
	h.mutate(c, h.engine.Dismiss)
}

func (h *NotificationHandler) mutate(c *gin.Context, op func(ctx context.Context, userID, id string) error) {
	claims := middleware.GetClaims(c)
	id := c.Param("id")

	if err := op(c.Request.Context(), claims.UserID, id); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.FailError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}
