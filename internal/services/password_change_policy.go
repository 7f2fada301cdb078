package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordChangeInvalidInput = errors.New("password change invalid input")
	ErrPasswordMismatch           = errors.New("password mismatch")
	ErrInvalidCurrentPassword     = errors.New("invalid current password")
	ErrNewPasswordMustDiffer      = errors.New("new password must differ")
)

func ValidatePasswordChange(passwordHash string, currentPassword string, newPassword string, confirmPassword string) error {
	currentPassword = strings.TrimSpace(currentPassword)
	newPassword = strings.TrimSpace(newPassword)
	confirmPassword = strings.TrimSpace(confirmPassword)

	if currentPassword == "" || newPassword == "" || confirmPassword == "" {
		return ErrPasswordChangeInvalidInput
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCurrentPassword
	}
	if currentPassword == newPassword {
		return ErrNewPasswordMustDiffer
	}
	return ValidatePasswordStrength(newPassword)
}
