package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// SessionInfo is a live session joined with its user.
type SessionInfo struct {
	Session core.Session
	User    core.User
}

func (s *Store) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	now := time.Now().UTC()
	_, err := s.exec(ctx,
		`INSERT INTO sessions (token, user_id, created_at, expires_at, last_activity) VALUES (?, ?, ?, ?, ?)`,
		token, userID, now, expiresAt.UTC(), now,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession returns the session and its user. Expiry is checked by the caller.
func (s *Store) GetSession(ctx context.Context, token string) (SessionInfo, error) {
	var info SessionInfo
	err := s.queryRow(ctx, `
		SELECT s.token, s.user_id, s.expires_at, s.last_activity,
		       u.id, u.username, u.password_hash, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = ?`, token,
	).Scan(
		&info.Session.Token, &info.Session.UserID, &info.Session.ExpiresAt, &info.Session.LastActivity,
		&info.User.ID, &info.User.Username, &info.User.PasswordHash, &info.User.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionInfo{}, &core.NotFoundError{Resource: "session"}
	}
	if err != nil {
		return SessionInfo{}, fmt.Errorf("get session: %w", err)
	}
	return info, nil
}

// RenewSession moves the expiry forward and records activity.
func (s *Store) RenewSession(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := s.exec(ctx,
		`UPDATE sessions SET expires_at = ?, last_activity = ? WHERE token = ?`,
		expiresAt.UTC(), time.Now().UTC(), token,
	)
	if err != nil {
		return fmt.Errorf("renew session: %w", err)
	}
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.exec(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteUserSessions logs a user out everywhere.
func (s *Store) DeleteUserSessions(ctx context.Context, userID int64) error {
	if _, err := s.exec(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

// CleanExpiredSessions removes sessions that expired before now.
func (s *Store) CleanExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.exec(ctx, `DELETE FROM sessions WHERE expires_at < ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("clean expired sessions: %w", err)
	}
	return res.RowsAffected()
}
