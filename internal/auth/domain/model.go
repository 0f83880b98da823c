package domain

import "time"

// Identity is the verified caller of a request. It is built from a verified
// ID token and passed explicitly to every service call.
type Identity struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	AuthTime      time.Time `json:"auth_time"`
}

// Authenticated reports whether the identity carries a caller.
func (i *Identity) Authenticated() bool {
	return i != nil && i.UID != ""
}

// AuthenticatedWithin reports whether the caller signed in within window of now.
// A zero window disables the check.
func (i *Identity) AuthenticatedWithin(window time.Duration, now time.Time) bool {
	if window <= 0 {
		return true
	}
	if i == nil || i.AuthTime.IsZero() {
		return false
	}
	return now.Sub(i.AuthTime) <= window
}

// Profile document layout in the users collection.
const (
	UsersCollection    = "users"
	FieldRole          = "role"
	FieldEmailVerified = "emailVerified"

	RoleAdmin = "admin"
	RoleUser  = "user"
)
