package utils

import (
	"regexp"
	"strings"
)

const MinPasswordLength = 6

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates an email address
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePassword checks the minimum length accepted at registration
func ValidatePassword(password string) bool {
	return len(password) >= MinPasswordLength
}

// SanitizeEmail trims and lower-cases an email so lookups are case-insensitive
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
