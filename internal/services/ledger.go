package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// LedgerService is the owner-scoped CRUD layer over transactions. Writes are
// announced on the optional publisher after they are committed.
type LedgerService struct {
	store      TransactionStore
	categories CategoryChecker
	publisher  LedgerEventPublisher
}

func NewLedgerService(store TransactionStore, categories CategoryChecker, publisher LedgerEventPublisher) *LedgerService {
	return &LedgerService{
		store:      store,
		categories: categories,
		publisher:  publisher,
	}
}

func (s *LedgerService) validate(ctx context.Context, in core.TransactionInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	ok, err := s.categories.CategoryExists(ctx, in.CategoryID)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !ok {
		return core.ErrUnknownCategory
	}
	return nil
}

// Add records a new transaction for owner.
func (s *LedgerService) Add(ctx context.Context, owner int64, in core.TransactionInput) (int64, error) {
	if err := s.validate(ctx, in); err != nil {
		return 0, err
	}
	id, err := s.store.InsertTransaction(ctx, owner, in)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}
	s.publish(ctx, ActionCreated, owner, id)
	return id, nil
}

// Edit replaces every mutable field of an owned transaction.
func (s *LedgerService) Edit(ctx context.Context, owner, id int64, in core.TransactionInput) error {
	if err := s.validate(ctx, in); err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(ctx, owner, id, in); err != nil {
		if core.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("update transaction: %w", err)
	}
	s.publish(ctx, ActionUpdated, owner, id)
	return nil
}

// Delete permanently removes an owned transaction.
func (s *LedgerService) Delete(ctx context.Context, owner, id int64) error {
	if err := s.store.DeleteTransaction(ctx, owner, id); err != nil {
		if core.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, ActionDeleted, owner, id)
	return nil
}

func (s *LedgerService) Get(ctx context.Context, owner, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, owner, id)
}

// ListRecent returns at most limit transactions, newest first.
func (s *LedgerService) ListRecent(ctx context.Context, owner int64, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		return []core.Transaction{}, nil
	}
	return s.store.ListTransactions(ctx, owner, storage.TransactionFilter{Limit: limit})
}

// ListByMonth returns the transactions dated in year/month, newest first.
func (s *LedgerService) ListByMonth(ctx context.Context, owner int64, year, month int) ([]core.Transaction, error) {
	rng := core.MonthRange{Year: year, Month: month}
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, owner, storage.TransactionFilter{Range: &rng})
}

// ListAll returns the owner's full history, newest first.
func (s *LedgerService) ListAll(ctx context.Context, owner int64) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, owner, storage.TransactionFilter{})
}

func (s *LedgerService) publish(ctx context.Context, action string, owner, id int64) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No ledger event publisher, skipping event", "action", action)
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, action, owner, id); err != nil {
		// The write is committed; the exporter catches up on its next full run.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"action", action,
			"user_id", owner,
			"id", id,
			"error", err)
	}
}
