package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of this engine or of the remote platform.
// The propagation policy hangs off the kind: Transient is the only
// retryable kind, AuthExpired invalidates the stored credential.
type Kind string

const (
	// KindUnauthenticated means no credential exists for the user.
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	// KindAuthExpired means the remote platform rejected the credential
	// (HTTP 401). Never retried.
	KindAuthExpired Kind = "AUTH_EXPIRED"
	// KindForbidden means the credential lacks permission (HTTP 403).
	KindForbidden Kind = "FORBIDDEN"
	// KindTransient covers rate limiting (HTTP 429) and transport-level
	// failures. Retried with backoff.
	KindTransient Kind = "TRANSIENT"
	// KindInvalidResponse means the remote payload did not have the
	// expected shape. A contract violation, not a connectivity issue.
	KindInvalidResponse Kind = "INVALID_RESPONSE"
	// KindValidation means a domain record was malformed (e.g. missing id).
	KindValidation Kind = "VALIDATION_ERROR"
)

// Error is the error type carried across the engine's boundaries.
type Error struct {
	Kind Kind
	Op   string // The operation that failed, e.g. "platform.ListCourses".
	Err  error  // Underlying cause, may be nil.
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two *Error values by kind, so callers can write
// errors.Is(err, apperror.New(apperror.KindTransient, "", nil)).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an Error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the kind from an error chain. Unclassified errors
// report KindTransient so unknown transport failures stay retryable.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransient
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Retryable reports whether the error should be retried with backoff.
func Retryable(err error) bool {
	return KindOf(err) == KindTransient
}
