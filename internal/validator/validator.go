package validator

import (
	"errors"
	"regexp"
	"unicode/utf8"
)

var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPassword = errors.New("password must have at least 8 characters, an uppercase letter, a digit and a symbol")
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,50}$`)
	nifRegex      = regexp.MustCompile(`^\d{8}[A-Za-z]$`)
	phoneRegex    = regexp.MustCompile(`^[0-9]{9,15}$`)
)

func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePassword requires 8 characters, an ASCII uppercase letter, an ASCII
// digit and one character outside [a-zA-Z0-9]. Non-ASCII letters count as symbols.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return ErrInvalidPassword
	}
	var upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
		default:
			symbol = true
		}
	}
	if !upper || !digit || !symbol {
		return ErrInvalidPassword
	}
	return nil
}
