package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
)

// SessionService issues and resolves browser sessions. A session used after
// half of its lifetime is extended by a full TTL.
type SessionService struct {
	store SessionStore
	ttl   time.Duration
	now   func() time.Time
}

func NewSessionService(store SessionStore, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &SessionService{store: store, ttl: ttl, now: time.Now}
}

func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Start creates a session for userID and purges expired ones.
func (s *SessionService) Start(ctx context.Context, userID int64) (string, time.Time, error) {
	now := s.now()
	if n, err := s.store.CleanExpiredSessions(ctx, now); err != nil {
		slog.WarnContext(ctx, "Failed to clean expired sessions", "error", err)
	} else if n > 0 {
		slog.DebugContext(ctx, "Expired sessions removed", "count", n)
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", time.Time{}, err
	}
	expires := now.Add(s.ttl)
	if err := s.store.CreateSession(ctx, token, userID, expires); err != nil {
		return "", time.Time{}, fmt.Errorf("start session: %w", err)
	}
	return token, expires, nil
}

// Resolve returns the user behind token. renewed is non-zero when the expiry
// was pushed forward and the cookie should be reissued.
func (s *SessionService) Resolve(ctx context.Context, token string) (user core.User, renewed time.Time, err error) {
	if token == "" {
		return core.User{}, time.Time{}, &core.AuthError{Message: "no session"}
	}
	info, err := s.store.GetSession(ctx, token)
	if core.IsNotFound(err) {
		return core.User{}, time.Time{}, &core.AuthError{Message: "session not found"}
	}
	if err != nil {
		return core.User{}, time.Time{}, fmt.Errorf("resolve session: %w", err)
	}

	now := s.now()
	if !info.Session.ExpiresAt.After(now) {
		if err := s.store.DeleteSession(ctx, token); err != nil {
			slog.WarnContext(ctx, "Failed to delete expired session", "error", err)
		}
		return core.User{}, time.Time{}, &core.AuthError{Message: "session expired"}
	}

	if info.Session.ExpiresAt.Sub(now) < s.ttl/2 {
		expires := now.Add(s.ttl)
		if err := s.store.RenewSession(ctx, token, expires); err != nil {
			slog.WarnContext(ctx, "Failed to renew session", "user_id", info.User.ID, "error", err)
		} else {
			renewed = expires
		}
	}
	return info.User, renewed, nil
}

func (s *SessionService) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteSession(ctx, token)
}

// EndAll removes every session of the user.
func (s *SessionService) EndAll(ctx context.Context, userID int64) error {
	return s.store.DeleteUserSessions(ctx, userID)
}
