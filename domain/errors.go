package domain

import (
	"errors"
	"fmt"
	"time"
)

// Authentication errors (401 at the boundary). Credential failures are
// deliberately uniform so callers cannot tell a bad identifier from a bad
// secret.
var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrUnsupportedAuthMode    = errors.New("unsupported authentication mode")
	ErrTokenInvalid           = errors.New("invalid token")
	ErrTokenExpired           = errors.New("token has expired")
	ErrTokenMalformed         = errors.New("malformed token")
	ErrTokenRevoked           = errors.New("token has been revoked")
	ErrRefreshTokenInvalid    = errors.New("invalid or expired refresh token")
	ErrOTPInvalid             = errors.New("invalid or expired otp")
	ErrAPIKeyInvalid          = errors.New("invalid api key or secret")
)

// Policy errors (403, domain-specific).
var (
	ErrAccountNotActive  = errors.New("account not active")
	ErrAccountSuspended  = errors.New("account suspended")
	ErrLoginOutsideHours = errors.New("login not allowed at this time")
)

// Authorization errors (403).
var (
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrPINNotSupported         = errors.New("account kind does not support pin authentication")
)

// Validation errors (400).
var (
	ErrWeakSecret         = errors.New("secret does not meet complexity requirements")
	ErrSecretMismatch     = errors.New("new secrets do not match")
	ErrSecretReused       = errors.New("new secret must differ from the old one")
	ErrOldSecretIncorrect = errors.New("old secret is incorrect")
	ErrOTPThrottled       = errors.New("otp resend throttled")
	ErrUnknownPermission  = errors.New("unknown permission")
	ErrIdentifierRequired = errors.New("email or phone required")
)

// Not-found errors (404).
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrRoleNotFound    = errors.New("role not found")
	ErrAPIKeyNotFound  = errors.New("api key not found")
)

// SuspensionError carries the remaining lockout time so the boundary can
// render a "try again in N minutes" hint. errors.Is matches
// ErrAccountSuspended.
type SuspensionError struct {
	Until time.Time
}

func (e *SuspensionError) Error() string {
	return fmt.Sprintf("account suspended, try again in %d minutes", e.RemainingMinutes())
}

func (e *SuspensionError) Unwrap() error { return ErrAccountSuspended }

func (e *SuspensionError) RemainingMinutes() int {
	rem := time.Until(e.Until)
	if rem <= 0 {
		return 0
	}
	m := int(rem.Minutes())
	if m == 0 {
		m = 1
	}
	return m
}
