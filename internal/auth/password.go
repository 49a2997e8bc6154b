// Package auth implements password credentials and JWT session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
)

var ErrWeakPassword = errors.New("password must be at least 8 characters")

// UserStore is the slice of the storage layer the authenticator needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*core.User, error)
	GetUserByUsername(ctx context.Context, username string) (*core.User, error)
}

// PasswordAuthenticator registers users and verifies credentials with
// bcrypt. Hashing is an explicit step here, not a storage hook, so a hash
// can never be re-hashed by an unrelated write.
type PasswordAuthenticator struct {
	users UserStore
}

func NewPasswordAuthenticator(users UserStore) *PasswordAuthenticator {
	return &PasswordAuthenticator{users: users}
}

// Register creates a new account with a bcrypt hash of the password.
// The raw password is never stored or logged.
func (a *PasswordAuthenticator) Register(ctx context.Context, username, password string) (*core.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, core.ErrEmptyUsername
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return a.users.CreateUser(ctx, username, string(hash))
}

// Authenticate verifies username and password. It fails with the same
// error whether the username is unknown or the password mismatches, so
// callers cannot probe for account existence.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, password string) (*core.User, error) {
	user, err := a.users.GetUserByUsername(ctx, username)
	if err != nil || user == nil {
		return nil, core.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, core.ErrInvalidCredentials
	}
	return user, nil
}
