package utils

import (
	"fmt"
	"regexp"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 \-()]{5,19}$`)
	ctrlRegex  = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidatePhone validates a client phone number
func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("invalid phone format: %s", phone)
	}
	return nil
}

// SanitizeString strips control characters from user-supplied text
func SanitizeString(s string) string {
	return ctrlRegex.ReplaceAllString(s, "")
}
