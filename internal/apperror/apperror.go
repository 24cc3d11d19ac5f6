package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Account-level sentinels. Each one also wraps one of the generic sentinels
// above (see the constructors), so handlers that only know about
// ErrConflict/ErrUnauthorized/ErrNotFound still map them correctly.
var (
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrNoSuchAccount      = errors.New("no such account")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

type AppError struct {
	Err     error  // actual error
	Kind    error  // optional: account-level sentinel (ErrDuplicateEmail, ...)
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the account-level sentinel as well as Err.
func (e *AppError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized means no user is signed in for the request.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// DuplicateEmail is returned when registering (or changing to) an email that
// another account already uses.
func DuplicateEmail(email string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Kind:    ErrDuplicateEmail,
		Message: fmt.Sprintf("an account with email %s already exists", email),
		Field:   "email",
	}
}

// NoSuchAccount is returned by login when the email is not registered.
func NoSuchAccount(email string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Kind:    ErrNoSuchAccount,
		Message: fmt.Sprintf("no account found for %s", email),
		Field:   "email",
	}
}

// InvalidCredentials is returned when a password does not match.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Kind:    ErrInvalidCredentials,
		Message: "incorrect password",
		Field:   "password",
	}
}

// UserNotFound is a logic error: a caller referenced a user id that no longer
// exists.
func UserNotFound(id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Kind:    ErrUserNotFound,
		Message: fmt.Sprintf("user not found with id %s", id),
	}
}
