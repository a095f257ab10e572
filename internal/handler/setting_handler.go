package handler

import (
	"net/http"

	"github.com/classpulse/classpulse-backend/internal/middleware"
	"github.com/classpulse/classpulse-backend/internal/model"
	"github.com/classpulse/classpulse-backend/internal/response"
	"github.com/classpulse/classpulse-backend/internal/service"
	"github.com/classpulse/classpulse-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// SettingHandler exposes per-user notification preferences.
type SettingHandler struct {
	settings *service.SettingsService
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(settings *service.SettingsService) *SettingHandler {
	return &SettingHandler{settings: settings}
}

// Get returns the user's settings.
func (h *SettingHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)

	settings, err := h.settings.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.FailError(c, err)
		return
	}
	response.Success(c, http.StatusOK, settings)
}

// Update applies a partial settings update.
func (h *SettingHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.UpdateSettingsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	updated, err := h.settings.Update(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"detail": err.Error()})
		return
	}
	response.Success(c, http.StatusOK, updated)
}
