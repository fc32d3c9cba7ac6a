// Package username validates and normalizes profile usernames.
//
// A username is both the profile's unique key and the first path segment of
// its public URL, so it must be URL-safe and must not collide with routes.
package username

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Length limits, in characters.
const (
	MinLength = 3
	MaxLength = 30
)

// User-facing validation messages.
const (
	MsgRequired = "Username is required"
	MsgTooShort = "Username must be at least 3 characters"
	MsgTooLong  = "Username must be less than 30 characters"
	MsgInvalid  = "Username can only contain letters, numbers, hyphens, and underscores"
	MsgReserved = "This username is reserved"
)

// Reserved contains usernames that cannot be claimed. Keys are lowercase.
var Reserved = map[string]bool{
	"admin":   true,
	"api":     true,
	"www":     true,
	"app":     true,
	"support": true,
	"help":    true,
	"about":   true,
	"contact": true,

	// Top-level routes
	"healthz": true,
	"readyz":  true,
	"metrics": true,
	"go":      true,
	"static":  true,
}

var validPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Result is the outcome of Validate. Error is empty when Valid is true.
type Result struct {
	Valid bool   `json:"is_valid"`
	Error string `json:"error,omitempty"`
}

// Validate checks raw against the username rules. The first failing rule
// determines the message.
func Validate(raw string) Result {
	n := utf8.RuneCountInString(raw)

	switch {
	case n == 0:
		return invalid(MsgRequired)
	case n < MinLength:
		return invalid(MsgTooShort)
	case n > MaxLength:
		return invalid(MsgTooLong)
	case !validPattern.MatchString(raw):
		return invalid(MsgInvalid)
	case Reserved[strings.ToLower(raw)]:
		return invalid(MsgReserved)
	}

	return Result{Valid: true}
}

// Normalize returns the stored form of a username.
func Normalize(raw string) string {
	return strings.ToLower(raw)
}

func invalid(msg string) Result {
	return Result{Error: msg}
}
