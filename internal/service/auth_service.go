package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/classpulse/classpulse-backend/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidAPIKey is returned when the presented API key does not
// match the configured hash.
var ErrInvalidAPIKey = errors.New("invalid API key")

// Claims extends JWT standard claims with the portal user ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// AuthService issues and validates the bearer tokens protecting the
// engine's HTTP surface. Access is granted against a single bcrypt
// hashed API key from config (generate with cmd/hash-key).
type AuthService struct {
	cfg *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// Login verifies the API key and returns a signed JWT bound to userID.
func (s *AuthService) Login(userID, apiKey string) (string, error) {
	if s.cfg.APIKeyHash == "" {
		return "", errors.New("API_KEY_HASH not configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.APIKeyHash), []byte(apiKey)); err != nil {
		return "", ErrInvalidAPIKey
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.UserID == "" {
		return nil, errors.New("token missing user id")
	}
	return claims, nil
}
