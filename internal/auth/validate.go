package auth

import (
	"regexp"

	"github.com/blogify/backend/internal/apperr"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

const minPasswordLen = 6

// ValidateUsername enforces the account username format: 3-20 characters,
// letters, digits, and underscores only.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return apperr.Validation("username must be 3-20 characters, letters, numbers, and underscores only")
	}
	return nil
}

// ValidateEmail enforces a standard local@domain address shape.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperr.Validation("invalid email address")
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return apperr.Validation("password must be at least 6 characters")
	}
	return nil
}

// validateSignup checks the already-trimmed signup fields in order: username,
// then email, then password. Only the first violation is reported.
func validateSignup(username, email, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return ValidatePassword(password)
}
