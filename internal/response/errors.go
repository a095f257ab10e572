package response

import (
	"errors"
	"net/http"

	"github.com/classpulse/classpulse-backend/internal/apperror"
)

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidAPIKey ErrCode = "INVALID_API_KEY"
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"

	// ─── Platform connection ───────────────────────────────────────────
	ErrNotConnected      ErrCode = "NOT_CONNECTED"
	ErrReconnectRequired ErrCode = "RECONNECT_REQUIRED"
	ErrPlatformForbidden ErrCode = "PLATFORM_FORBIDDEN"
	ErrUpstreamBusy      ErrCode = "UPSTREAM_UNAVAILABLE"
	ErrUpstreamContract  ErrCode = "UPSTREAM_CONTRACT_VIOLATION"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrSyncInProgress ErrCode = "SYNC_IN_PROGRESS"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidAPIKey:
		return "The API key is not valid."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is not valid."
	case ErrNotConnected:
		return "No course platform connection exists for this account."
	case ErrReconnectRequired:
		return "The course platform connection has expired. Please reconnect."
	case ErrPlatformForbidden:
		return "The course platform denied access to this resource."
	case ErrUpstreamBusy:
		return "The course platform is unavailable right now. Please try again later."
	case ErrUpstreamContract:
		return "The course platform returned an unexpected response."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "The request payload is not valid."
	case ErrNotFound:
		return "Resource not found."
	case ErrSyncInProgress:
		return "A sync cycle is already running for this account."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}

// MapAppError maps an engine error onto an HTTP status and error code.
// Unclassified errors surface as 500 INTERNAL_ERROR.
func MapAppError(err error) (int, ErrCode) {
	var e *apperror.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, ErrInternal
	}

	switch e.Kind {
	case apperror.KindUnauthenticated:
		return http.StatusUnauthorized, ErrNotConnected
	case apperror.KindAuthExpired:
		return http.StatusUnauthorized, ErrReconnectRequired
	case apperror.KindForbidden:
		return http.StatusForbidden, ErrPlatformForbidden
	case apperror.KindTransient:
		return http.StatusBadGateway, ErrUpstreamBusy
	case apperror.KindInvalidResponse:
		return http.StatusBadGateway, ErrUpstreamContract
	case apperror.KindValidation:
		return http.StatusBadGateway, ErrUpstreamContract
	default:
		return http.StatusInternalServerError, ErrInternal
	}
}
