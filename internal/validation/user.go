// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,30}$`)

var reservedUsernames = map[string]struct{}{
	"admin":    {},
	"api":      {},
	"auth":     {},
	"me":       {},
	"media":    {},
	"metrics":  {},
	"posts":    {},
	"search":   {},
	"settings": {},
	"swagger":  {},
	"users":    {},
}

// ValidateUsername validates username format and reserved names.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-30 characters and contain only letters, numbers, underscores, and dots")
	}
	if _, reserved := reservedUsernames[strings.ToLower(username)]; reserved {
		return fmt.Errorf("username %q is reserved", username)
	}
	return nil
}

// emailRegex is a pragmatic format check, not a full RFC 5322 parser.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateEmail validates email address format.
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
