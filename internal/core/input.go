package core

import (
	"strconv"
	"strings"
)

// RawTransaction carries unparsed transaction fields as submitted by a form
// or an API client.
type RawTransaction struct {
	Kind       string
	Amount     string
	Note       string
	Date       string
	CategoryID string
}

// ParseTransaction turns raw fields into a validated TransactionInput.
// Kind, amount, date and category are required; note is optional.
func ParseTransaction(raw RawTransaction) (TransactionInput, error) {
	if strings.TrimSpace(raw.Kind) == "" ||
		strings.TrimSpace(raw.Amount) == "" ||
		strings.TrimSpace(raw.Date) == "" ||
		strings.TrimSpace(raw.CategoryID) == "" {
		return TransactionInput{}, ErrMissingFields
	}

	kind, err := ParseKind(raw.Kind)
	if err != nil {
		return TransactionInput{}, err
	}
	amount, err := ParseAmount(raw.Amount)
	if err != nil {
		return TransactionInput{}, err
	}
	date, err := ParseDate(raw.Date)
	if err != nil {
		return TransactionInput{}, err
	}
	categoryID, err := strconv.ParseInt(strings.TrimSpace(raw.CategoryID), 10, 64)
	if err != nil || categoryID <= 0 {
		return TransactionInput{}, ErrUnknownCategory
	}

	in := TransactionInput{
		Kind:       kind,
		Amount:     amount,
		Note:       strings.TrimSpace(raw.Note),
		Date:       date,
		CategoryID: categoryID,
	}
	if err := in.Validate(); err != nil {
		return TransactionInput{}, err
	}
	return in, nil
}
