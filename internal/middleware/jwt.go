package middleware

import (
	"net/http"
	"strings"

	"github.com/classpulse/classpulse-backend/internal/response"
	"github.com/classpulse/classpulse-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ContextKeyClaims is the Gin context key for JWT claims.
const ContextKeyClaims = "claims"

// RequireJWT validates a bearer JWT from the Authorization header and
// stores its claims on the context.
func RequireJWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		claims, err := authService.ValidateToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetClaims returns the validated claims set by RequireJWT, or nil.
func GetClaims(c *gin.Context) *service.Claims {
	v, ok := c.Get(ContextKeyClaims)
	if !ok {
		return nil
	}
	claims, ok := v.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}
