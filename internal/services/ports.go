package services

import (
	"context"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// UserStore persists credentials.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (core.User, error)
	GetUserByUsername(ctx context.Context, username string) (core.User, error)
	GetUserByID(ctx context.Context, id int64) (core.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error
	ListUsers(ctx context.Context) ([]core.User, error)
}

// SessionStore persists browser sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	GetSession(ctx context.Context, token string) (storage.SessionInfo, error)
	RenewSession(ctx context.Context, token string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, token string) error
	DeleteUserSessions(ctx context.Context, userID int64) error
	CleanExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// CategoryStore persists the catalog.
type CategoryStore interface {
	CountCategories(ctx context.Context) (int, error)
	InsertCategories(ctx context.Context, names []string) error
	ListCategories(ctx context.Context) ([]core.Category, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
}

// CategoryChecker answers whether a category id is in the catalog.
type CategoryChecker interface {
	CategoryExists(ctx context.Context, id int64) (bool, error)
}

// TransactionStore persists owner-scoped ledger rows.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, owner int64, in core.TransactionInput) (int64, error)
	UpdateTransaction(ctx context.Context, owner, id int64, in core.TransactionInput) error
	DeleteTransaction(ctx context.Context, owner, id int64) error
	GetTransaction(ctx context.Context, owner, id int64) (core.Transaction, error)
	ListTransactions(ctx context.Context, owner int64, f storage.TransactionFilter) ([]core.Transaction, error)
}

// LedgerEventPublisher announces ledger writes to other processes.
type LedgerEventPublisher interface {
	PublishLedgerEvent(ctx context.Context, action string, ownerID, transactionID int64) error
}

// Ledger event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)
