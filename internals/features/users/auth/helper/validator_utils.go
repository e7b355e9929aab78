package helpers

import (
	"errors"
	"regexp"
	"strings"
)

var (
	emailRe  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	letterRe = regexp.MustCompile(`[A-Za-z]`)
	digitRe  = regexp.MustCompile(`[0-9]`)
)

func isAlphaNumeric(s string) bool {
	return letterRe.MatchString(s) && digitRe.MatchString(s)
}

func isValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

func ValidateLoginInput(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return errors.New("email and password are required")
	}
	if !isValidEmail(strings.TrimSpace(email)) {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidateNewPassword: at least 8 characters with letters and digits.
func ValidateNewPassword(pw string) error {
	if len(pw) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if !isAlphaNumeric(pw) {
		return errors.New("password must contain letters and numbers")
	}
	return nil
}
