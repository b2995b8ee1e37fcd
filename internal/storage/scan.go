package storage

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

// dateValue scans a calendar date stored either as YYYY-MM-DD text (SQLite)
// or as a DATE column (PostgreSQL).
type dateValue struct {
	core.Date
}

func (d *dateValue) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Date = core.NewDate(v.Year(), int(v.Month()), v.Day())
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		d.Date = core.Date{}
		return nil
	}
	return fmt.Errorf("unsupported date type %T", src)
}

func (d *dateValue) parse(s string) error {
	if len(s) > len(core.DateLayout) {
		s = s[:len(core.DateLayout)]
	}
	parsed, err := core.ParseDate(s)
	if err != nil {
		return fmt.Errorf("parse stored date %q: %w", s, err)
	}
	d.Date = parsed
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

const transactionColumns = `t.id, t.user_id, t.kind, t.amount, t.note, t.date, t.category_id, c.name, t.created_at`

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t    core.Transaction
		kind string
		date dateValue
	)
	if err := row.Scan(&t.ID, &t.UserID, &kind, &t.Amount, &t.Note, &date, &t.CategoryID, &t.CategoryName, &t.CreatedAt); err != nil {
		return core.Transaction{}, err
	}
	t.Kind = core.Kind(kind)
	t.Date = date.Date
	return t, nil
}
