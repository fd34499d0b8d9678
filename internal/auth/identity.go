package auth

import "strings"

// Identity is the authenticated caller of an operation. It is resolved once
// per request from the bearer token and passed explicitly to services.
type Identity struct {
	UserID   string
	Username string
	Role     string
}

// IsZero reports whether the identity carries no user.
func (i Identity) IsZero() bool {
	return strings.TrimSpace(i.UserID) == ""
}
