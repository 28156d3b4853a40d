package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail        = errors.New("invalid email")
	ErrInvalidBusinessName = errors.New("invalid business name")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrInvalidName         = errors.New("invalid name")
)

var (
	emailRegex        = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	businessNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 .,&'-]{2,79}$`)
)

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidateBusinessName(name string) error {
	if !businessNameRegex.MatchString(name) {
		return ErrInvalidBusinessName
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}
	return nil
}

func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len(trimmed) > 120 {
		return ErrInvalidName
	}
	return nil
}
