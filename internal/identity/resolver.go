// Package identity turns a verified login assertion into the workspace namespace.
package identity

import (
	"strings"
	"unicode"

	"aficionado-be/internal/pkg/apperror"
)

// Identity is the per-session view of the logged-in user. Username doubles as the
// storage namespace prefix and never changes for the lifetime of a session.
type Identity struct {
	Email    string
	Username string
}

// Resolve derives the username from an email-shaped identifier: the part before the
// first '@', trimmed and lower-cased. The result must be usable as a key segment and
// must not collide with a reserved storage prefix such as the shared examples.
func Resolve(email string, reserved ...string) (Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Identity{}, apperror.NewUnauthorized("no verified identity present")
	}

	at := strings.Index(email, "@")
	if at < 0 {
		return Identity{}, apperror.NewUnauthorized("identity is not an email address")
	}

	username := strings.ToLower(strings.TrimSpace(email[:at]))
	if err := validateNamespace(username); err != nil {
		return Identity{}, err
	}
	if isReserved(username, reserved) {
		return Identity{}, apperror.NewUnauthorized("identity collides with a reserved namespace")
	}

	return Identity{Email: email, Username: username}, nil
}

func validateNamespace(username string) error {
	if username == "" {
		return apperror.NewUnauthorized("identity has an empty local part")
	}
	if username == "." || username == ".." {
		return apperror.NewUnauthorized("identity is not a valid namespace")
	}
	for _, r := range username {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return apperror.NewUnauthorized("identity contains characters not allowed in a namespace")
		}
	}
	return nil
}

// isReserved compares against the top-level segment of each reserved prefix,
// since a workspace listing covers everything below "<username>/".
func isReserved(username string, reserved []string) bool {
	for _, prefix := range reserved {
		top, _, _ := strings.Cut(strings.Trim(prefix, "/"), "/")
		if top != "" && strings.EqualFold(username, top) {
			return true
		}
	}
	return false
}
