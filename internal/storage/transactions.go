package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
)

// Every statement in this file filters on user_id. A row owned by another
// user is indistinguishable from a missing one.

const orderNewestFirst = ` ORDER BY t.date DESC, t.id DESC`

func notFound(id int64) error {
	return &core.NotFoundError{Resource: "transaction", ID: id}
}

func (s *Store) InsertTransaction(ctx context.Context, owner int64, in core.TransactionInput) (int64, error) {
	var id int64
	err := s.queryRow(ctx, `
		INSERT INTO transactions (user_id, category_id, kind, amount, note, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		owner, in.CategoryID, string(in.Kind), in.Amount, in.Note, in.Date.String(), time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"user_id", owner,
		"kind", in.Kind,
		"amount", in.Amount.String(),
		"date", in.Date.String())
	return id, nil
}

// UpdateTransaction replaces all mutable fields of an owned row.
func (s *Store) UpdateTransaction(ctx context.Context, owner, id int64, in core.TransactionInput) error {
	res, err := s.exec(ctx, `
		UPDATE transactions
		SET kind = ?, amount = ?, note = ?, date = ?, category_id = ?
		WHERE id = ? AND user_id = ?`,
		string(in.Kind), in.Amount, in.Note, in.Date.String(), in.CategoryID, id, owner,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireOneRow(res, id)
}

func (s *Store) DeleteTransaction(ctx context.Context, owner, id int64) error {
	res, err := s.exec(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireOneRow(res, id)
}

func requireOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, owner, id int64) (core.Transaction, error) {
	row := s.queryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.id = ? AND t.user_id = ?`, id, owner)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, notFound(id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

// TransactionFilter narrows a listing. Zero values mean no restriction.
type TransactionFilter struct {
	Kind  core.Kind
	Range *core.MonthRange
	Limit int
}

// ListTransactions returns owned rows newest first.
func (s *Store) ListTransactions(ctx context.Context, owner int64, f TransactionFilter) ([]core.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ?`
	args := []any{owner}

	if f.Kind != "" {
		query += ` AND t.kind = ?`
		args = append(args, string(f.Kind))
	}
	if f.Range != nil {
		query += ` AND t.date >= ? AND t.date <= ?`
		args = append(args, f.Range.Start().String(), f.Range.Last().String())
	}
	query += orderNewestFirst
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}
