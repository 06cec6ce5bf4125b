package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness violation, e.g. a reused SKU.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden indicates insufficient privileges.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized indicates a missing or expired login.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage converts known errors into messages that can be shown to
// end users without leaking internals.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "The requested record does not exist"
	case errors.Is(err, ErrDuplicate):
		return "A record with the same identifier already exists"
	case errors.Is(err, ErrInvalidCredentials):
		return "Username or password is incorrect"
	case errors.Is(err, ErrForbidden):
		return "You do not have access to this resource"
	default:
		return "Something went wrong, please try again"
	}
}
