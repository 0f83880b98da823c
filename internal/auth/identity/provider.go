package identity

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrRequiresRecentLogin = errors.New("requires recent login")
)

// User is the Authentication record of an account.
type User struct {
	UID           string
	Email         string
	DisplayName   string
	EmailVerified bool
}

// Provider is the privileged side of the Authentication subsystem.
type Provider interface {
	LookupUser(ctx context.Context, uid string) (*User, error)
	DeleteAccount(ctx context.Context, uid string) error
	EmailVerificationLink(ctx context.Context, email string) (string, error)
}
