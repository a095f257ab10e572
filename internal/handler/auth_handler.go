package handler

import (
	"errors"
	"net/http"

	"github.com/classpulse/classpulse-backend/internal/response"
	"github.com/classpulse/classpulse-backend/internal/service"
	"github.com/classpulse/classpulse-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles API authentication.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	UserID string `json:"user_id" binding:"required,min=1,max=128"`
	APIKey string `json:"api_key" binding:"required"`
}

// Login verifies the API key and issues a bearer token for the user.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, err := h.authService.Login(req.UserID, req.APIKey)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAPIKey) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidAPIKey)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token})
}
