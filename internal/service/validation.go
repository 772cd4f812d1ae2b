package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

// ValidateEmail checks the address has a local part, a domain and a dot in the domain.
func ValidateEmail(email string) error {
	if email == "" || !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the password policy, reporting the first rule that fails.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return newError(KindValidation, "Password must be at least 8 characters long")
	}
	if !strings.ContainsAny(password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return newError(KindValidation, "Password must contain at least one uppercase letter")
	}
	if !strings.ContainsAny(password, "abcdefghijklmnopqrstuvwxyz") {
		return newError(KindValidation, "Password must contain at least one lowercase letter")
	}
	if !strings.ContainsAny(password, "0123456789") {
		return newError(KindValidation, "Password must contain at least one number")
	}
	return nil
}
