package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	ErrAuthCredentialsInvalid = errors.New("auth credentials invalid")
	ErrWeakPassword           = errors.New("weak password")
)

const minPasswordRunes = 8

// NormalizeAuthEmail lower-cases and trims an address. It returns "" when
// the result is not a bare address.
func NormalizeAuthEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || validate.Var(email, "email") != nil {
		return ""
	}
	return email
}

func NormalizeCredentialsInput(emailRaw string, passwordRaw string) (string, string, error) {
	email := NormalizeAuthEmail(emailRaw)
	password := strings.TrimSpace(passwordRaw)
	if email == "" || password == "" {
		return "", "", ErrAuthCredentialsInvalid
	}
	return email, password, nil
}

// ValidatePasswordStrength wraps ErrWeakPassword with the first rule the
// password breaks.
func ValidatePasswordStrength(password string) error {
	if len([]rune(password)) < minPasswordRunes {
		return fmt.Errorf("%w: use at least %d characters", ErrWeakPassword, minPasswordRunes)
	}

	var upper, lower, digit bool
	for _, char := range password {
		upper = upper || unicode.IsUpper(char)
		lower = lower || unicode.IsLower(char)
		digit = digit || unicode.IsDigit(char)
	}
	switch {
	case !upper:
		return fmt.Errorf("%w: add an upper-case letter", ErrWeakPassword)
	case !lower:
		return fmt.Errorf("%w: add a lower-case letter", ErrWeakPassword)
	case !digit:
		return fmt.Errorf("%w: add a digit", ErrWeakPassword)
	}
	return nil
}
