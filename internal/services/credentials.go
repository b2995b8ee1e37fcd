package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"fintrack/internal/auth"
	"fintrack/internal/core"
)

// dummyHash is compared on the unknown-user path so both failures cost one
// bcrypt comparison.
var dummyHash = sync.OnceValue(func() string {
	h, err := auth.HashPassword("fintrack-unknown-user")
	if err != nil {
		panic(err)
	}
	return h
})

// CredentialService registers and authenticates users.
type CredentialService struct {
	users UserStore
}

func NewCredentialService(users UserStore) *CredentialService {
	return &CredentialService{users: users}
}

// Register creates a user. The username is trimmed; the password is stored
// only as a bcrypt hash. No row is written on failure.
func (s *CredentialService) Register(ctx context.Context, username, password, confirm string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || confirm == "" {
		return 0, &core.ValidationError{Message: "all fields are required"}
	}
	if len(username) > 64 {
		return 0, &core.ValidationError{Field: "username", Message: "username too long (max 64 characters)"}
	}
	if password != confirm {
		return 0, &core.ValidationError{Field: "confirm", Message: "passwords do not match"}
	}

	exists, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("register: %w", err)
	}
	if exists {
		return 0, core.ErrUsernameTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("register: %w", err)
	}
	u, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		if core.IsConflict(err) {
			return 0, err
		}
		return 0, fmt.Errorf("register: %w", err)
	}
	return u.ID, nil
}

// Authenticate returns the user for valid credentials. Unknown users and wrong
// passwords produce the same error.
func (s *CredentialService) Authenticate(ctx context.Context, username, password string) (core.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return core.User{}, core.ErrInvalidCredentials
	}

	u, err := s.users.GetUserByUsername(ctx, username)
	if core.IsNotFound(err) {
		_, _ = auth.CheckPassword(dummyHash(), password)
		return core.User{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, fmt.Errorf("authenticate: %w", err)
	}

	ok, err := auth.CheckPassword(u.PasswordHash, password)
	if err != nil {
		slog.WarnContext(ctx, "Stored password hash is unreadable", "user_id", u.ID, "error", err)
		return core.User{}, core.ErrInvalidCredentials
	}
	if !ok {
		return core.User{}, core.ErrInvalidCredentials
	}
	return u, nil
}

// Verify reports whether password belongs to the user.
func (s *CredentialService) Verify(ctx context.Context, userID int64, password string) (bool, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if core.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("verify: %w", err)
	}
	ok, err := auth.CheckPassword(u.PasswordHash, password)
	if err != nil {
		return false, nil
	}
	return ok, nil
}

// ChangePassword replaces the hash after checking the current password.
func (s *CredentialService) ChangePassword(ctx context.Context, userID int64, current, next, confirm string) error {
	if current == "" || next == "" || confirm == "" {
		return &core.ValidationError{Message: "all fields are required"}
	}
	if next != confirm {
		return &core.ValidationError{Field: "confirm", Message: "passwords do not match"}
	}

	ok, err := s.Verify(ctx, userID, current)
	if err != nil {
		return err
	}
	if !ok {
		return &core.AuthError{Message: "current password is incorrect"}
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	slog.InfoContext(ctx, "Password changed", "user_id", userID)
	return nil
}

// User loads a user by id.
func (s *CredentialService) User(ctx context.Context, userID int64) (core.User, error) {
	return s.users.GetUserByID(ctx, userID)
}
