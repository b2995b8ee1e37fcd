package core

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "Income"
	Expense Kind = "Expense"
)

// DateLayout is the only accepted calendar date format.
const DateLayout = "2006-01-02"

type (
	// Kind discriminates income from expense transactions.
	Kind string

	// Date is a calendar date without a time component, always in UTC.
	Date struct {
		time.Time
	}

	User struct {
		ID           int64     `json:"id"`
		Username     string    `json:"username"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"created_at"`
	}

	Category struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	// Transaction is a single ledger row. CategoryName is filled by reads
	// that join the catalog.
	Transaction struct {
		ID           int64           `json:"id"`
		UserID       int64           `json:"user_id"`
		Kind         Kind            `json:"kind"`
		Amount       decimal.Decimal `json:"amount"`
		Note         string          `json:"note"`
		Date         Date            `json:"date"`
		CategoryID   int64           `json:"category_id"`
		CategoryName string          `json:"category_name,omitempty"`
		CreatedAt    time.Time       `json:"created_at"`
	}

	// TransactionInput holds the mutable fields of a transaction.
	TransactionInput struct {
		Kind       Kind
		Amount     decimal.Decimal
		Note       string
		Date       Date
		CategoryID int64
	}

	// Session is a browser login persisted server side.
	Session struct {
		Token        string
		UserID       int64
		ExpiresAt    time.Time
		LastActivity time.Time
	}
)

// DefaultCategories is the catalog seeded on first start.
var DefaultCategories = []string{
	"Food",
	"Transport",
	"Housing",
	"Entertainment",
	"Education",
	"Health",
	"Salary",
	"Other",
}

// ParseKind accepts the two kinds, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	}
	return "", &ValidationError{Field: "kind", Message: "kind must be Income or Expense"}
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) != len(DateLayout) {
		return Date{}, ErrInvalidDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (in TransactionInput) Validate() error {
	if !in.Kind.Valid() {
		return &ValidationError{Field: "kind", Message: "kind must be Income or Expense"}
	}
	if err := ValidateAmount(in.Amount); err != nil {
		return err
	}
	if err := in.Date.Validate(); err != nil {
		return err
	}
	if in.CategoryID <= 0 {
		return &ValidationError{Field: "category_id", Message: "category is required"}
	}
	if len(in.Note) > 255 {
		return &ValidationError{Field: "note", Message: "note too long (max 255 characters)"}
	}
	return nil
}

// Input returns the mutable fields of t.
func (t Transaction) Input() TransactionInput {
	return TransactionInput{
		Kind:       t.Kind,
		Amount:     t.Amount,
		Note:       t.Note,
		Date:       t.Date,
		CategoryID: t.CategoryID,
	}
}
