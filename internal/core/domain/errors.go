package domain

import "errors"

// ErrorKind classifies a failure for callers that need a stable, machine-readable category.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindConflict     ErrorKind = "conflict"
	KindNotFound     ErrorKind = "not_found"
	KindExpired      ErrorKind = "expired"
	KindUnauthorized ErrorKind = "unauthorized"
	KindDependency   ErrorKind = "dependency"
)

// Error is a failure that is surfaced to the caller as-is. Values are package-level
// sentinels, so errors.Is compares them by identity even after wrapping.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind ErrorKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

var (
	ErrWeakPassword  = newError(KindValidation, "weak_password", "password must be at least 8 characters long")
	ErrOTPRequired   = newError(KindValidation, "otp_required", "email and otp are required")
	ErrInvalidRole   = newError(KindValidation, "invalid_role", "role must be one of: user admin")
	ErrEmailRequired = newError(KindValidation, "email_required", "email is required")

	ErrAlreadyActive = newError(KindConflict, "already_active", "user already exists")

	ErrNoPendingRegistration = newError(KindNotFound, "no_pending_registration", "otp not found, please sign up again")
	ErrUserNotFound          = newError(KindNotFound, "user_not_found", "user not found")

	ErrOTPExpired = newError(KindExpired, "otp_expired", "otp expired, please request a new one")

	ErrInvalidOTP         = newError(KindUnauthorized, "invalid_otp", "invalid otp, please try again")
	ErrInvalidCredentials = newError(KindUnauthorized, "invalid_credentials", "invalid credentials")
)

// KindOf reports the kind of err. Anything that is not a *Error is a dependency failure.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindDependency
}
