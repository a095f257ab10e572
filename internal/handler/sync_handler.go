package handler

import (
	"errors"
	"net/http"

	"github.com/classpulse/classpulse-backend/internal/middleware"
	"github.com/classpulse/classpulse-backend/internal/response"
	"github.com/classpulse/classpulse-backend/internal/service"
	"github.com/classpulse/classpulse-backend/internal/syncer"
	"github.com/gin-gonic/gin"
)

// SyncHandler exposes sync cycles, disconnect and the foreground hook.
type SyncHandler struct {
	syncer *syncer.Syncer
	portal *service.PortalService
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(s *syncer.Syncer, portal *service.PortalService) *SyncHandler {
	return &SyncHandler{syncer: s, portal: portal}
}

// TriggerSync runs one sync cycle for the authenticated user.
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	claims := middleware.GetClaims(c)

	report, err := h.syncer.Sync(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, syncer.ErrInProgress) {
			response.Fail(c, http.StatusConflict, response.ErrSyncInProgress)
			return
		}
		response.FailError(c, err)
		return
	}

	response.Success(c, http.StatusOK, report)
}

// Statuses returns the resolved statuses from the user's most recent cycle.
func (h *SyncHandler) Statuses(c *gin.Context) {
	claims := middleware.GetClaims(c)

	report := h.syncer.LastReport(claims.UserID)
	if report == nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"resolved_at": report.FinishedAt,
		"items":       report.Items,
		"summary":     report.Summary,
	})
}

// Disconnect clears the user's platform credential. Idempotent.
func (h *SyncHandler) Disconnect(c *gin.Context) {
	claims := middleware.GetClaims(c)

	if err := h.syncer.Disconnect(c.Request.Context(), claims.UserID); err != nil {
		response.FailError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"disconnected": true})
}

// Foreground signals that the host application regained visibility;
// expired cache entries are dropped so the next read refetches.
func (h *SyncHandler) Foreground(c *gin.Context) {
	h.portal.Foreground()
	response.Success(c, http.StatusOK, gin.H{"revalidated": true})
}
