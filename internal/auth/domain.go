// Package auth handles owner authentication with opaque bearer tokens.
package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// User represents an owner account.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

// Token is an opaque bearer credential issued on login.
type Token struct {
	ID        string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token has lapsed.
func (t Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

var (
	// ErrInvalidCredentials is returned for any login failure; the
	// caller cannot tell a bad email from a bad password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrTokenInvalid is returned for missing, unknown or expired tokens.
	ErrTokenInvalid = errors.New("auth: invalid token")
)
