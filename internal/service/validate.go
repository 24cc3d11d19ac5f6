package service

import (
	"net/mail"
	"strings"

	"github.com/sakif/robotics-league/internal/apperror"
)

const (
	maxNameLen     = 100
	maxBioLen      = 500
	maxLocationLen = 100
	maxPasswordLen = 72
	maxInterests   = 20
)

// normalizeEmail is the canonical form used for lookups and storage:
// surrounding space removed and lower-cased, so "Ana@Example.com" and
// "ana@example.com" are the same account.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateEmail expects an already normalized address.
func validateEmail(email string) error {
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperror.ValidationFailed("email", "email is not a valid address")
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return apperror.ValidationFailed("name", "name is required")
	}
	if len([]rune(name)) > maxNameLen {
		return apperror.ValidationFailed("name", "name must be 100 characters or fewer")
	}
	return nil
}

func validatePassword(field, password string) error {
	if password == "" {
		return apperror.ValidationFailed(field, "password is required")
	}
	if len(password) > maxPasswordLen {
		return apperror.ValidationFailed(field, "password must be 72 bytes or fewer")
	}
	return nil
}
