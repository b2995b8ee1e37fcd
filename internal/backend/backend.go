// Package backend opens the configured persistence and, optionally, the
// ledger event publisher.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/config"
	"fintrack/internal/services"
)

// Backend is everything the services need from persistence.
type Backend interface {
	services.UserStore
	services.SessionStore
	services.CategoryStore
	services.TransactionStore

	Ping(ctx context.Context) error
	Close() error
}

// BackendResult bundles the store, the optional publisher and the
// function releasing both.
type BackendResult struct {
	Backend Backend
	// Publisher is nil when AMQP is not configured or unreachable.
	Publisher services.LedgerEventPublisher
	Cleanup   func() error
}

type Factory interface {
	CreateBackend(ctx context.Context, cfg Config) (*BackendResult, error)
}

type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string { return string(bt) }

func (bt BackendType) IsValid() bool {
	return bt == SQLiteBackend || bt == PostgresBackend
}

// Config is the subset of the application config the factory reads.
type Config struct {
	Type         BackendType
	SQLiteDBPath string
	DatabaseURL  string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// GetBackendTypeStrings lists the accepted DATA_BACKEND values.
func GetBackendTypeStrings() []string {
	return []string{SQLiteBackend.String(), PostgresBackend.String()}
}

func FromAppConfig(app *config.Config) (Config, error) {
	if app == nil {
		return Config{}, errors.New("app config is nil")
	}
	cfg := Config{
		Type:         BackendType(app.DataBackend),
		SQLiteDBPath: app.SQLiteDBPath,
		DatabaseURL:  app.DatabaseURL,
		AMQPURL:      app.AMQPURL,
		AMQPExchange: app.AMQPExchange,
		AMQPQueue:    app.AMQPQueue,
	}
	if !cfg.Type.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type %q: must be one of [%s]",
			app.DataBackend, strings.Join(GetBackendTypeStrings(), " "))
	}
	return cfg, nil
}

// Validate checks the settings of the selected backend. AMQP is optional
// and left to the client.
func (c Config) Validate() error {
	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case PostgresBackend:
		if c.DatabaseURL == "" {
			return errors.New("database URL is required for postgres backend")
		}
	default:
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	return nil
}
