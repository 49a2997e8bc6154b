package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
)

// fakeUserStore keeps users in a map, mimicking the repository contract:
// nil, nil on a username miss and ErrDuplicateUsername on conflict.
type fakeUserStore struct {
	users  map[string]*core.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*core.User)}
}

func (s *fakeUserStore) CreateUser(_ context.Context, username, passwordHash string) (*core.User, error) {
	if _, exists := s.users[username]; exists {
		return nil, core.ErrDuplicateUsername
	}
	s.nextID++
	u := &core.User{ID: s.nextID, Username: username, PasswordHash: passwordHash}
	s.users[username] = u
	return u, nil
}

func (s *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*core.User, error) {
	return s.users[username], nil
}

func TestRegisterHashesPassword(t *testing.T) {
	store := newFakeUserStore()
	a := NewPasswordAuthenticator(store)

	user, err := a.Register(context.Background(), "alice", "hunter2hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.PasswordHash == "hunter2hunter2" {
		t.Fatal("password stored in plain text")
	}
	if !strings.HasPrefix(user.PasswordHash, "$2") {
		t.Fatalf("expected a bcrypt hash, got %q", user.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2hunter2")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	a := NewPasswordAuthenticator(newFakeUserStore())

	if _, err := a.Register(context.Background(), "  ", "longenough"); !errors.Is(err, core.ErrEmptyUsername) {
		t.Fatalf("expected ErrEmptyUsername, got %v", err)
	}
	if _, err := a.Register(context.Background(), "bob", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	a := NewPasswordAuthenticator(newFakeUserStore())
	ctx := context.Background()

	if _, err := a.Register(ctx, "alice", "password-one"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := a.Register(ctx, "alice", "password-two"); !errors.Is(err, core.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestAuthenticateUniformFailure(t *testing.T) {
	store := newFakeUserStore()
	a := NewPasswordAuthenticator(store)
	ctx := context.Background()

	if _, err := a.Register(ctx, "alice", "correct-horse"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Unknown user and wrong password must be indistinguishable.
	_, unknownErr := a.Authenticate(ctx, "nobody", "whatever")
	_, wrongErr := a.Authenticate(ctx, "alice", "battery-staple")
	if !errors.Is(unknownErr, core.ErrInvalidCredentials) || !errors.Is(wrongErr, core.ErrInvalidCredentials) {
		t.Fatalf("expected uniform ErrInvalidCredentials, got %v / %v", unknownErr, wrongErr)
	}

	user, err := a.Authenticate(ctx, "alice", "correct-horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("expected alice, got %s", user.Username)
	}
}
